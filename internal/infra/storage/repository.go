// Package storage defines the persistence interfaces for the watcher's
// crash-recoverable state. The file subpackage persists each store as one
// JSON document with atomic whole-file replace; the memory subpackage
// backs tests without filesystem I/O.
package storage

import "github.com/oxwatch/balwatch/internal/core/domain"

// SnapshotRepository owns the last-known-balance map. Get/Put operate on
// in-memory state; Flush makes it durable. A Flush failure leaves the
// in-memory state authoritative and dirty, to be retried on the next
// cycle.
type SnapshotRepository interface {
	Get(key string) (domain.Snapshot, bool)
	Put(key string, snap domain.Snapshot)
	All() map[string]domain.Snapshot
	Flush() error
}

// AlertStateRepository owns the per-entity alert throttle state.
type AlertStateRepository interface {
	Get(key string) (domain.AlertState, bool)
	Put(key string, state domain.AlertState)
	Flush() error
}

// BaselineRepository owns the frozen start-of-day snapshot copy used for
// daily diffs. An empty Date means no baseline has been frozen yet.
type BaselineRepository interface {
	Baseline() domain.Baseline
	Freeze(baseline domain.Baseline)
	Flush() error
}

// Recipient is an opaque notification recipient, registered by the
// external command layer and read here at startup.
type Recipient struct {
	ChatID   int64  `json:"chat_id"`
	Username string `json:"username,omitempty"`
}

// RecipientRepository reads the durable recipient list. The core treats
// the list as append-mostly; Reload picks up registrations made by the
// external command layer at runtime.
type RecipientRepository interface {
	List() []Recipient
	Reload() error
}
