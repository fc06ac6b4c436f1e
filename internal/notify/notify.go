// Package notify delivers watcher events to their destinations.
package notify

import (
	"context"
	"errors"

	"github.com/oxwatch/balwatch/internal/core/domain"
)

// Sink defines the interface for delivering watcher events.
type Sink interface {
	// Emit sends a single event
	Emit(ctx context.Context, event domain.Event) error

	// Close closes the sink connection
	Close() error
}

// Multi fans every event out to all sinks. A sink failure never blocks
// the others.
type Multi struct {
	sinks []Sink
}

func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) Emit(ctx context.Context, event domain.Event) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
