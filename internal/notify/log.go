package notify

import (
	"context"
	"log/slog"

	"github.com/oxwatch/balwatch/internal/core/domain"
)

// LogSink writes every event to the structured log. It is always in the
// delivery chain so events remain observable without Telegram.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) *LogSink {
	if log == nil {
		log = slog.Default()
	}
	return &LogSink{log: log}
}

func (s *LogSink) Emit(_ context.Context, event domain.Event) error {
	e := event.Entity
	base := []any{
		"network", e.Network,
		"alias", e.Alias,
		"address", domain.ShortAddress(e.Address),
	}

	switch event.Type {
	case domain.EventBalanceChanged:
		s.log.Info("balance changed", append(base,
			"asset", e.Asset(),
			"old", event.Old.String(),
			"new", event.New.String(),
		)...)
	case domain.EventLowBalance:
		s.log.Warn("balance below threshold", append(base,
			"asset", e.Asset(),
			"balance", event.Balance.String(),
			"threshold", event.Threshold.String(),
			"alert_number", event.AlertNumber,
		)...)
	case domain.EventRecovered:
		s.log.Info("balance recovered", append(base,
			"asset", e.Asset(),
			"balance", event.Balance.String(),
		)...)
	case domain.EventReadFailed:
		s.log.Warn("balance read failed", append(base, "error", event.Err)...)
	case domain.EventDailyDiff:
		s.log.Info("daily balance report", "entries", len(event.Deltas))
	}
	return nil
}

func (s *LogSink) Close() error { return nil }
