// Package collect orchestrates one polling round over every configured
// network and entity.
package collect

import (
	"context"
	"log/slog"
	"time"

	"github.com/oxwatch/balwatch/internal/core/domain"
	"github.com/oxwatch/balwatch/internal/infra/storage"
	"github.com/oxwatch/balwatch/internal/monitor/alert"
	"github.com/oxwatch/balwatch/internal/monitor/metrics"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Reader reads balances for one network. Implemented by evm.Reader; tests
// inject fakes.
type Reader interface {
	Native(ctx context.Context, address string) (decimal.Decimal, error)
	Token(ctx context.Context, contract, holder string) (decimal.Decimal, error)
}

// Network bundles one network's entities with its reader and the read
// parallelism bound (the network's active transport count).
type Network struct {
	Name        string
	Entities    []domain.Entity
	Reader      Reader
	Parallelism int
}

// Cycle runs collection rounds. Snapshot and alert state are injected so
// the core runs against in-memory stores in tests.
type Cycle struct {
	networks  []Network
	snapshots storage.SnapshotRepository
	alerts    storage.AlertStateRepository
	engine    *alert.Engine
	now       func() time.Time
	log       *slog.Logger
}

// New creates a collection cycle runner.
func New(networks []Network, snapshots storage.SnapshotRepository, alerts storage.AlertStateRepository) *Cycle {
	return &Cycle{
		networks:  networks,
		snapshots: snapshots,
		alerts:    alerts,
		engine:    alert.NewEngine(alerts),
		now:       time.Now,
		log:       slog.Default(),
	}
}

// NewWithClock creates a cycle runner with an injected clock for tests.
func NewWithClock(networks []Network, snapshots storage.SnapshotRepository, alerts storage.AlertStateRepository, now func() time.Time) *Cycle {
	c := New(networks, snapshots, alerts)
	c.engine = alert.NewEngineWithClock(alerts, now)
	c.now = now
	return c
}

// Run performs one collection round and returns the notification events
// it produced. Every entity is attempted exactly once; an entity failure
// yields a read-failure event and never aborts the rest of the cycle.
func (c *Cycle) Run(ctx context.Context) []domain.Event {
	var events []domain.Event
	for i := range c.networks {
		events = append(events, c.runNetwork(ctx, &c.networks[i])...)
	}

	if err := c.snapshots.Flush(); err != nil {
		metrics.FlushFailuresTotal.WithLabelValues("snapshots").Inc()
		c.log.Warn("failed to flush snapshots, will retry next cycle", "error", err)
	}
	if err := c.alerts.Flush(); err != nil {
		metrics.FlushFailuresTotal.WithLabelValues("alerts").Inc()
		c.log.Warn("failed to flush alert state, will retry next cycle", "error", err)
	}

	metrics.CyclesTotal.Inc()
	for _, ev := range events {
		metrics.EventsEmittedTotal.WithLabelValues(string(ev.Type)).Inc()
	}
	return events
}

type readResult struct {
	balance decimal.Decimal
	err     error
}

// runNetwork reads all of one network's entities with bounded parallelism,
// then evaluates them sequentially in configuration order so events and
// persisted updates are deterministic per network.
func (c *Cycle) runNetwork(ctx context.Context, n *Network) []domain.Event {
	results := make([]readResult, len(n.Entities))

	g, gctx := errgroup.WithContext(ctx)
	limit := n.Parallelism
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, e := range n.Entities {
		i, e := i, e
		g.Go(func() error {
			var balance decimal.Decimal
			var err error
			if e.IsToken() {
				balance, err = n.Reader.Token(gctx, e.Contract, e.Address)
			} else {
				balance, err = n.Reader.Native(gctx, e.Address)
			}
			results[i] = readResult{balance: balance, err: err}
			return nil // entity failures stay per-entity
		})
	}
	g.Wait()

	events := make([]domain.Event, 0, len(n.Entities))
	for i, e := range n.Entities {
		events = append(events, c.evaluate(e, results[i])...)
	}
	return events
}

// evaluate applies one entity's read result: change diff, snapshot
// update, and the low-balance throttle machine.
func (c *Cycle) evaluate(e domain.Entity, r readResult) []domain.Event {
	now := c.now()

	if r.err != nil {
		c.log.Warn("balance read failed",
			"network", e.Network, "alias", e.Alias, "error", r.err)
		return []domain.Event{{
			Type:   domain.EventReadFailed,
			Entity: e,
			At:     now,
			Err:    &domain.ReadError{Entity: e, Err: r.err},
		}}
	}

	var events []domain.Event
	key := e.Key()

	var prev *domain.Snapshot
	if snap, ok := c.snapshots.Get(key); ok {
		prev = &snap
	}

	change := domain.DiffSnapshot(prev, r.balance)
	switch change.Kind {
	case domain.Increased, domain.Decreased:
		events = append(events, domain.Event{
			Type:   domain.EventBalanceChanged,
			Entity: e,
			At:     now,
			Old:    prev.Balance,
			New:    r.balance,
		})
	}

	c.snapshots.Put(key, domain.Snapshot{Balance: r.balance, LastUpdated: now})

	bal, _ := r.balance.Float64()
	metrics.Balance.WithLabelValues(e.Network, e.Alias, e.Address).Set(bal)

	if e.Threshold != nil {
		d := c.engine.Evaluate(key, r.balance, *e.Threshold)
		switch {
		case d.Fire:
			metrics.AlertsFiredTotal.WithLabelValues(e.Network).Inc()
			events = append(events, domain.Event{
				Type:        domain.EventLowBalance,
				Entity:      e,
				At:          now,
				Balance:     r.balance,
				Threshold:   *e.Threshold,
				AlertNumber: d.AlertNumber,
			})
		case d.Recovered:
			events = append(events, domain.Event{
				Type:    domain.EventRecovered,
				Entity:  e,
				At:      now,
				Balance: r.balance,
			})
		}
	}

	return events
}
