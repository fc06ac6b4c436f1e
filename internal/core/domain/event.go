package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType identifies a notification event variant. The set is closed:
// consumers can switch exhaustively on it.
type EventType string

const (
	EventBalanceChanged EventType = "balance_changed"
	EventLowBalance     EventType = "low_balance"
	EventRecovered      EventType = "recovered"
	EventReadFailed     EventType = "read_failed"
	EventDailyDiff      EventType = "daily_diff"
)

// Event is a notification event produced by a collection cycle or the
// daily report. Only the fields relevant to the Type are populated.
type Event struct {
	Type   EventType
	Entity Entity
	At     time.Time

	// EventBalanceChanged
	Old decimal.Decimal
	New decimal.Decimal

	// EventLowBalance, EventRecovered
	Balance     decimal.Decimal
	Threshold   decimal.Decimal
	AlertNumber int

	// EventReadFailed
	Err error

	// EventDailyDiff
	Deltas []DailyDelta
}

// DailyDelta is one entity's movement between the frozen start-of-day
// baseline and the current snapshot.
type DailyDelta struct {
	Entity  Entity
	Start   decimal.Decimal
	Current decimal.Decimal
	Delta   decimal.Decimal
}

// PercentChange returns the relative movement from old to new in percent,
// or zero when old is zero.
func PercentChange(old, new decimal.Decimal) float64 {
	if old.IsZero() {
		return 0
	}
	diff, _ := new.Sub(old).Div(old).Float64()
	return diff * 100
}
