package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is the last successfully observed balance for an entity.
// At most one snapshot exists per entity key; it is overwritten whole on
// every successful read.
type Snapshot struct {
	Balance     decimal.Decimal `json:"balance"`
	LastUpdated time.Time       `json:"last_updated"`
}

// AlertState tracks the low-balance alert machine for one entity.
// Invariant: ConsecutiveAlertCount is zero whenever BelowThreshold is false.
type AlertState struct {
	ConsecutiveAlertCount int        `json:"consecutive_alert_count"`
	LastAlertTime         *time.Time `json:"last_alert_time,omitempty"`
	BelowThreshold        bool       `json:"currently_below_threshold"`
}

// Baseline is the frozen start-of-day snapshot copy used for daily diff
// reports. Date doubles as the last-fired marker for the daily scheduler.
type Baseline struct {
	Date      string              `json:"date"` // YYYY-MM-DD in the report timezone
	Snapshots map[string]Snapshot `json:"snapshots"`
}

// ChangeKind classifies a balance movement against the previous snapshot.
type ChangeKind int

const (
	NoPriorData ChangeKind = iota
	Unchanged
	Increased
	Decreased
)

// Change pairs a ChangeKind with the absolute delta (zero unless the kind
// is Increased or Decreased).
type Change struct {
	Kind  ChangeKind
	Delta decimal.Decimal
}

// DiffSnapshot compares a freshly read balance against the previous
// snapshot, if any.
func DiffSnapshot(prev *Snapshot, balance decimal.Decimal) Change {
	if prev == nil {
		return Change{Kind: NoPriorData}
	}
	switch balance.Cmp(prev.Balance) {
	case 0:
		return Change{Kind: Unchanged}
	case 1:
		return Change{Kind: Increased, Delta: balance.Sub(prev.Balance)}
	default:
		return Change{Kind: Decreased, Delta: prev.Balance.Sub(balance)}
	}
}
