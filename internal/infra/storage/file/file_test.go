package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/oxwatch/balwatch/internal/core/domain"
	"github.com/shopspring/decimal"
)

func TestSnapshotStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.json")

	s, err := OpenSnapshotStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	want := domain.Snapshot{
		Balance:     decimal.RequireFromString("1234.567890123456789"),
		LastUpdated: now,
	}
	s.Put("mainnet:0xabc", want)
	if err := s.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	reopened, err := OpenSnapshotStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, ok := reopened.Get("mainnet:0xabc")
	if !ok {
		t.Fatal("snapshot missing after reopen")
	}
	if !got.Balance.Equal(want.Balance) {
		t.Errorf("balance = %s, want %s", got.Balance, want.Balance)
	}
	if !got.LastUpdated.Equal(want.LastUpdated) {
		t.Errorf("last_updated = %v, want %v", got.LastUpdated, want.LastUpdated)
	}
}

func TestSnapshotStore_MissingFileIsEmpty(t *testing.T) {
	s, err := OpenSnapshotStore(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if len(s.All()) != 0 {
		t.Errorf("expected empty store, got %d entries", len(s.All()))
	}
}

func TestSnapshotStore_CorruptFileIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenSnapshotStore(path); err == nil {
		t.Fatal("expected error for corrupt state file")
	}
}

// A crash between a Put and its Flush must leave only fully-written
// entries in the file: reopening sees the last flushed state, never a
// half-written one.
func TestSnapshotStore_CrashBetweenPuts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.json")

	s, err := OpenSnapshotStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.Put("a", domain.Snapshot{Balance: decimal.NewFromInt(1)})
	if err := s.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	s.Put("b", domain.Snapshot{Balance: decimal.NewFromInt(2)})
	// No flush: simulated crash.

	reopened, err := OpenSnapshotStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, ok := reopened.Get("a"); !ok {
		t.Error("flushed entry lost")
	}
	if _, ok := reopened.Get("b"); ok {
		t.Error("unflushed entry appeared in file")
	}
}

func TestSnapshotStore_FlushFailureKeepsDirty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "snapshots.json")

	s := &SnapshotStore{path: path, snaps: make(map[string]domain.Snapshot)}
	s.Put("a", domain.Snapshot{Balance: decimal.NewFromInt(1)})

	// Parent directory missing: flush fails, memory stays authoritative.
	if err := s.Flush(); err == nil {
		t.Fatal("expected flush error")
	}
	if _, ok := s.Get("a"); !ok {
		t.Fatal("in-memory state lost after failed flush")
	}

	// Once the directory exists the retry succeeds.
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("retry flush: %v", err)
	}
}

func TestAlertStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.json")

	s, err := OpenAlertStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	at := time.Now().UTC().Truncate(time.Second)
	s.Put("mainnet:0xabc", domain.AlertState{
		ConsecutiveAlertCount: 3,
		LastAlertTime:         &at,
		BelowThreshold:        true,
	})
	if err := s.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	reopened, err := OpenAlertStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, ok := reopened.Get("mainnet:0xabc")
	if !ok {
		t.Fatal("state missing after reopen")
	}
	if got.ConsecutiveAlertCount != 3 || !got.BelowThreshold {
		t.Errorf("state = %+v", got)
	}
	if got.LastAlertTime == nil || !got.LastAlertTime.Equal(at) {
		t.Errorf("last_alert_time = %v, want %v", got.LastAlertTime, at)
	}
}

func TestBaselineStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.json")

	s, err := OpenBaselineStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.Baseline().Date != "" {
		t.Fatal("fresh baseline should have empty date")
	}

	s.Freeze(domain.Baseline{
		Date: "2026-08-29",
		Snapshots: map[string]domain.Snapshot{
			"mainnet:0xabc": {Balance: decimal.NewFromInt(10)},
		},
	})
	if err := s.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	reopened, err := OpenBaselineStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	b := reopened.Baseline()
	if b.Date != "2026-08-29" {
		t.Errorf("date = %q", b.Date)
	}
	if !b.Snapshots["mainnet:0xabc"].Balance.Equal(decimal.NewFromInt(10)) {
		t.Errorf("snapshot = %+v", b.Snapshots)
	}
}

func TestRecipientStore_ReadAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipients.json")
	if err := os.WriteFile(path, []byte(`[{"chat_id": 42, "username": "ops"}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := OpenRecipientStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := s.List(); len(got) != 1 || got[0].ChatID != 42 {
		t.Fatalf("recipients = %+v", got)
	}

	// External command layer appends a registration; Reload picks it up.
	if err := os.WriteFile(path, []byte(`[{"chat_id": 42}, {"chat_id": 7}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := s.List(); len(got) != 2 {
		t.Fatalf("recipients after reload = %+v", got)
	}
}
