// Package file persists watcher state as JSON documents with atomic
// whole-file replace.
package file

import (
	"sync"

	"github.com/oxwatch/balwatch/internal/core/domain"
	"github.com/oxwatch/balwatch/internal/infra/storage"
)

// SnapshotStore is the file-backed SnapshotRepository.
type SnapshotStore struct {
	path string

	mu    sync.RWMutex
	snaps map[string]domain.Snapshot
	dirty bool
}

// OpenSnapshotStore loads the snapshot file. A missing file yields an
// empty store; a corrupt file is an error.
func OpenSnapshotStore(path string) (*SnapshotStore, error) {
	s := &SnapshotStore{
		path:  path,
		snaps: make(map[string]domain.Snapshot),
	}
	if err := readDocument(path, &s.snaps); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SnapshotStore) Get(key string) (domain.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[key]
	return snap, ok
}

func (s *SnapshotStore) Put(key string, snap domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[key] = snap
	s.dirty = true
}

func (s *SnapshotStore) All() map[string]domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.Snapshot, len(s.snaps))
	for k, v := range s.snaps {
		out[k] = v
	}
	return out
}

// Flush writes the whole map atomically. On failure the store stays dirty
// and the next Flush retries.
func (s *SnapshotStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	if err := writeAtomic(s.path, s.snaps); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// AlertStore is the file-backed AlertStateRepository.
type AlertStore struct {
	path string

	mu     sync.RWMutex
	states map[string]domain.AlertState
	dirty  bool
}

// OpenAlertStore loads the alert state file, empty when missing.
func OpenAlertStore(path string) (*AlertStore, error) {
	s := &AlertStore{
		path:   path,
		states: make(map[string]domain.AlertState),
	}
	if err := readDocument(path, &s.states); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *AlertStore) Get(key string) (domain.AlertState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[key]
	return state, ok
}

func (s *AlertStore) Put(key string, state domain.AlertState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[key] = state
	s.dirty = true
}

func (s *AlertStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	if err := writeAtomic(s.path, s.states); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// BaselineStore is the file-backed BaselineRepository.
type BaselineStore struct {
	path string

	mu       sync.RWMutex
	baseline domain.Baseline
	dirty    bool
}

// OpenBaselineStore loads the daily baseline file, empty when missing.
func OpenBaselineStore(path string) (*BaselineStore, error) {
	s := &BaselineStore{path: path}
	if err := readDocument(path, &s.baseline); err != nil {
		return nil, err
	}
	if s.baseline.Snapshots == nil {
		s.baseline.Snapshots = make(map[string]domain.Snapshot)
	}
	return s, nil
}

func (s *BaselineStore) Baseline() domain.Baseline {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := domain.Baseline{
		Date:      s.baseline.Date,
		Snapshots: make(map[string]domain.Snapshot, len(s.baseline.Snapshots)),
	}
	for k, v := range s.baseline.Snapshots {
		out.Snapshots[k] = v
	}
	return out
}

func (s *BaselineStore) Freeze(baseline domain.Baseline) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseline = baseline
	s.dirty = true
}

func (s *BaselineStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	if err := writeAtomic(s.path, s.baseline); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// RecipientStore reads the registered-recipient file maintained by the
// external command layer.
type RecipientStore struct {
	path string

	mu         sync.RWMutex
	recipients []storage.Recipient
}

// OpenRecipientStore loads the recipient file, empty when missing.
func OpenRecipientStore(path string) (*RecipientStore, error) {
	s := &RecipientStore{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *RecipientStore) List() []storage.Recipient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]storage.Recipient, len(s.recipients))
	copy(out, s.recipients)
	return out
}

// Reload re-reads the file so registrations made at runtime are picked up
// before the next send.
func (s *RecipientStore) Reload() error {
	var recipients []storage.Recipient
	if err := readDocument(s.path, &recipients); err != nil {
		return err
	}
	s.mu.Lock()
	s.recipients = recipients
	s.mu.Unlock()
	return nil
}
