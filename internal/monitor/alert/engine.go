// Package alert decides whether a low-balance alert fires now, using a
// persisted per-entity state machine with an escalating cooldown schedule.
package alert

import (
	"time"

	"github.com/oxwatch/balwatch/internal/core/domain"
	"github.com/oxwatch/balwatch/internal/infra/storage"
	"github.com/shopspring/decimal"
)

// schedule is the minimum elapsed time since the previous alert, indexed
// by the consecutive alert count at decision time. The last row saturates.
var schedule = []time.Duration{
	0,                // first alert fires immediately
	10 * time.Minute, // after 1 alert
	1 * time.Hour,    // after 2
	5 * time.Hour,    // after 3
	20 * time.Hour,   // after 4 or more
}

// Decision is the outcome of one evaluation.
type Decision struct {
	// Fire is set when a low-balance alert should be emitted now.
	Fire bool

	// AlertNumber is the 1-based consecutive alert count, valid when Fire
	// is set. Saturates with the schedule.
	AlertNumber int

	// Recovered is set for the one-time transition back above threshold.
	Recovered bool
}

// Engine evaluates the throttle state machine against a state repository.
type Engine struct {
	states storage.AlertStateRepository
	now    func() time.Time
}

// NewEngine creates an engine over the given state repository.
func NewEngine(states storage.AlertStateRepository) *Engine {
	return &Engine{states: states, now: time.Now}
}

// NewEngineWithClock creates an engine with an injected clock for tests.
func NewEngineWithClock(states storage.AlertStateRepository, now func() time.Time) *Engine {
	return &Engine{states: states, now: now}
}

// Evaluate updates the entity's alert state for the observed balance and
// returns what, if anything, should be emitted. Callers must only invoke
// it for entities with a configured threshold.
func (e *Engine) Evaluate(key string, balance, threshold decimal.Decimal) Decision {
	now := e.now()
	state, _ := e.states.Get(key)

	if balance.GreaterThanOrEqual(threshold) {
		if !state.BelowThreshold {
			return Decision{}
		}
		// One-time recovery: reset the machine so the next drop fires
		// immediately again.
		e.states.Put(key, domain.AlertState{})
		return Decision{Recovered: true}
	}

	if !state.BelowThreshold {
		// New drop episode: fire immediately.
		e.states.Put(key, domain.AlertState{
			ConsecutiveAlertCount: 1,
			LastAlertTime:         &now,
			BelowThreshold:        true,
		})
		return Decision{Fire: true, AlertNumber: 1}
	}

	required := schedule[min(state.ConsecutiveAlertCount, len(schedule)-1)]
	if state.LastAlertTime != nil && now.Sub(*state.LastAlertTime) < required {
		return Decision{}
	}

	count := min(state.ConsecutiveAlertCount+1, len(schedule)-1)
	e.states.Put(key, domain.AlertState{
		ConsecutiveAlertCount: count,
		LastAlertTime:         &now,
		BelowThreshold:        true,
	})
	return Decision{Fire: true, AlertNumber: count}
}
