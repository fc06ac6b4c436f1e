// Package report computes the once-daily balance diff against a frozen
// start-of-day baseline.
package report

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/oxwatch/balwatch/internal/core/domain"
	"github.com/oxwatch/balwatch/internal/infra/storage"
)

// Tracker fires the daily diff report at a configured wall-clock time,
// exactly once per calendar day, tolerant of the process being down at
// the exact trigger time. The baseline's Date field is the last-fired
// marker and survives restarts.
type Tracker struct {
	hour, minute int
	loc          *time.Location
	baseline     storage.BaselineRepository
	entities     map[string]domain.Entity // key -> entity, for report labels
	log          *slog.Logger
}

// NewTracker parses the "HH:MM" report time in the given timezone (empty
// means local time).
func NewTracker(at string, timezone string, baseline storage.BaselineRepository, entities []domain.Entity) (*Tracker, error) {
	parts := strings.SplitN(at, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("report time %q is not HH:MM", at)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return nil, fmt.Errorf("report time %q: bad hour", at)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("report time %q: bad minute", at)
	}

	loc := time.Local
	if timezone != "" {
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
		}
	}

	byKey := make(map[string]domain.Entity, len(entities))
	for _, e := range entities {
		byKey[e.Key()] = e
	}

	return &Tracker{
		hour:     hour,
		minute:   minute,
		loc:      loc,
		baseline: baseline,
		entities: byKey,
		log:      slog.Default(),
	}, nil
}

// MaybeFire checks whether the report is due and, if so, produces the
// daily diff event and freezes the current snapshots as the next
// baseline. It returns nil when nothing is due.
func (t *Tracker) MaybeFire(now time.Time, current map[string]domain.Snapshot) *domain.Event {
	local := now.In(t.loc)
	today := local.Format("2006-01-02")

	due := time.Date(local.Year(), local.Month(), local.Day(), t.hour, t.minute, 0, 0, t.loc)
	if local.Before(due) {
		return nil
	}

	prev := t.baseline.Baseline()
	if prev.Date == today {
		return nil // already fired today
	}

	t.freeze(today, current)

	if prev.Date == "" {
		// First run ever: nothing to diff against, just freeze.
		t.log.Info("daily baseline initialized", "date", today)
		return nil
	}

	deltas := t.computeDeltas(prev.Snapshots, current)
	return &domain.Event{
		Type:   domain.EventDailyDiff,
		At:     now,
		Deltas: deltas,
	}
}

func (t *Tracker) freeze(date string, current map[string]domain.Snapshot) {
	frozen := make(map[string]domain.Snapshot, len(current))
	for k, v := range current {
		frozen[k] = v
	}
	t.baseline.Freeze(domain.Baseline{Date: date, Snapshots: frozen})
	if err := t.baseline.Flush(); err != nil {
		// Memory stays authoritative; the write is retried next flush.
		t.log.Warn("failed to persist daily baseline", "error", err)
	}
}

// computeDeltas pairs baseline and current snapshots per entity key, in
// sorted key order for deterministic output. Entities without a baseline
// entry diff against zero.
func (t *Tracker) computeDeltas(baseline, current map[string]domain.Snapshot) []domain.DailyDelta {
	keys := make([]string, 0, len(current))
	for k := range current {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	deltas := make([]domain.DailyDelta, 0, len(keys))
	for _, k := range keys {
		entity, ok := t.entities[k]
		if !ok {
			continue // stale key from a removed config entry
		}
		cur := current[k]
		start := baseline[k] // zero value when new since baseline
		deltas = append(deltas, domain.DailyDelta{
			Entity:  entity,
			Start:   start.Balance,
			Current: cur.Balance,
			Delta:   cur.Balance.Sub(start.Balance),
		})
	}
	return deltas
}
