// Package memory provides in-memory repository implementations so the
// collection core can be exercised without filesystem I/O.
package memory

import (
	"sync"

	"github.com/oxwatch/balwatch/internal/core/domain"
	"github.com/oxwatch/balwatch/internal/infra/storage"
)

type SnapshotRepo struct {
	mu    sync.RWMutex
	snaps map[string]domain.Snapshot
}

func NewSnapshotRepo() *SnapshotRepo {
	return &SnapshotRepo{snaps: make(map[string]domain.Snapshot)}
}

func (r *SnapshotRepo) Get(key string) (domain.Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, ok := r.snaps[key]
	return snap, ok
}

func (r *SnapshotRepo) Put(key string, snap domain.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps[key] = snap
}

func (r *SnapshotRepo) All() map[string]domain.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]domain.Snapshot, len(r.snaps))
	for k, v := range r.snaps {
		out[k] = v
	}
	return out
}

func (r *SnapshotRepo) Flush() error { return nil }

type AlertRepo struct {
	mu     sync.RWMutex
	states map[string]domain.AlertState
}

func NewAlertRepo() *AlertRepo {
	return &AlertRepo{states: make(map[string]domain.AlertState)}
}

func (r *AlertRepo) Get(key string) (domain.AlertState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.states[key]
	return state, ok
}

func (r *AlertRepo) Put(key string, state domain.AlertState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[key] = state
}

func (r *AlertRepo) Flush() error { return nil }

type BaselineRepo struct {
	mu       sync.RWMutex
	baseline domain.Baseline
}

func NewBaselineRepo() *BaselineRepo {
	return &BaselineRepo{baseline: domain.Baseline{Snapshots: make(map[string]domain.Snapshot)}}
}

func (r *BaselineRepo) Baseline() domain.Baseline {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := domain.Baseline{
		Date:      r.baseline.Date,
		Snapshots: make(map[string]domain.Snapshot, len(r.baseline.Snapshots)),
	}
	for k, v := range r.baseline.Snapshots {
		out.Snapshots[k] = v
	}
	return out
}

func (r *BaselineRepo) Freeze(baseline domain.Baseline) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.baseline = baseline
}

func (r *BaselineRepo) Flush() error { return nil }

type RecipientRepo struct {
	mu         sync.RWMutex
	recipients []storage.Recipient
}

func NewRecipientRepo(recipients ...storage.Recipient) *RecipientRepo {
	return &RecipientRepo{recipients: recipients}
}

func (r *RecipientRepo) List() []storage.Recipient {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]storage.Recipient, len(r.recipients))
	copy(out, r.recipients)
	return out
}

func (r *RecipientRepo) Reload() error { return nil }
