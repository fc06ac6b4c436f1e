// Package control wires configuration into the running watcher and owns
// its lifecycle.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/oxwatch/balwatch/internal/core/config"
	"github.com/oxwatch/balwatch/internal/core/domain"
	"github.com/oxwatch/balwatch/internal/infra/chain/evm"
	"github.com/oxwatch/balwatch/internal/infra/rpc"
	"github.com/oxwatch/balwatch/internal/infra/storage/file"
	"github.com/oxwatch/balwatch/internal/monitor/collect"
	"github.com/oxwatch/balwatch/internal/monitor/health"
	"github.com/oxwatch/balwatch/internal/monitor/report"
	"github.com/oxwatch/balwatch/internal/notify"
)

const (
	snapshotsFile  = "snapshots.json"
	alertsFile     = "alerts.json"
	baselineFile   = "baseline.json"
	recipientsFile = "recipients.json"
)

// Watcher is the main application struct that manages the polling lifecycle.
type Watcher struct {
	cfg          *config.AppConfig
	cycle        *collect.Cycle
	tracker      *report.Tracker
	sink         notify.Sink
	pools        map[string]*rpc.Pool
	snapshots    *file.SnapshotStore
	alerts       *file.AlertStore
	baseline     *file.BaselineStore
	healthServer *health.Server
	log          *slog.Logger
	stop         chan struct{}
	done         chan struct{}
}

// NewWatcher creates a Watcher instance with all dependencies initialized.
// Opening the persisted state fails hard on corrupt files so a damaged
// data directory is surfaced before the first poll.
func NewWatcher(cfg *config.AppConfig) (*Watcher, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	snapshots, err := file.OpenSnapshotStore(filepath.Join(cfg.DataDir, snapshotsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	alerts, err := file.OpenAlertStore(filepath.Join(cfg.DataDir, alertsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open alert store: %w", err)
	}
	baseline, err := file.OpenBaselineStore(filepath.Join(cfg.DataDir, baselineFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open baseline store: %w", err)
	}

	pools := make(map[string]*rpc.Pool, len(cfg.Networks))
	networks := make([]collect.Network, 0, len(cfg.Networks))
	var allEntities []domain.Entity

	for _, nc := range cfg.Networks {
		pool := rpc.NewPool(nc.Name, nc.RPCNodes, rpc.Options{
			ActiveCount:       cfg.ActiveTransportCount,
			RecoverySuccesses: cfg.RecoverySuccesses,
			ProbeEvery:        10,
			Timeout:           cfg.RPCTimeout(),
		})
		pools[nc.Name] = pool

		entities := nc.Entities()
		allEntities = append(allEntities, entities...)

		networks = append(networks, collect.Network{
			Name:        nc.Name,
			Entities:    entities,
			Reader:      evm.NewReader(pool),
			Parallelism: cfg.ActiveTransportCount,
		})
	}

	cycle := collect.New(networks, snapshots, alerts)

	var tracker *report.Tracker
	if cfg.DailyReport.Enabled {
		tracker, err = report.NewTracker(cfg.DailyReport.Time, cfg.DailyReport.Timezone, baseline, allEntities)
		if err != nil {
			return nil, fmt.Errorf("invalid daily report config: %w", err)
		}
	}

	sinks := []notify.Sink{notify.NewLogSink(slog.Default())}
	if cfg.Telegram != nil && cfg.Telegram.BotToken != "" {
		recipients, err := file.OpenRecipientStore(filepath.Join(cfg.DataDir, recipientsFile))
		if err != nil {
			return nil, fmt.Errorf("failed to open recipient store: %w", err)
		}
		sinks = append(sinks, notify.NewTelegramSink(cfg.Telegram.BotToken, recipients, notify.TelegramOptions{
			ShowFullAddress: cfg.Telegram.ShowFullAddress,
			Timeout:         cfg.RPCTimeout(),
		}))
	}

	w := &Watcher{
		cfg:          cfg,
		cycle:        cycle,
		tracker:      tracker,
		sink:         notify.NewMulti(sinks...),
		pools:        pools,
		snapshots:    snapshots,
		alerts:       alerts,
		baseline:     baseline,
		healthServer: health.NewServer(pools, cfg.Server.Port),
		log:          slog.Default(),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	w.logStartupSummary(allEntities)
	return w, nil
}

// Start starts the health server and the polling loop. The first cycle
// runs immediately; subsequent cycles run on the configured interval and
// never overlap.
func (w *Watcher) Start(ctx context.Context) error {
	go func() {
		if err := w.healthServer.Start(); err != nil {
			w.log.Error("Health server failed", "error", err)
		}
	}()

	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.cfg.Interval())
	defer ticker.Stop()

	w.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

// runOnce performs one collection cycle, forwards its events, then gives
// the daily report a chance to fire off the fresh snapshots.
func (w *Watcher) runOnce(ctx context.Context) {
	start := time.Now()
	events := w.cycle.Run(ctx)
	w.log.Debug("collection cycle finished",
		"events", len(events), "elapsed", time.Since(start))

	for _, ev := range events {
		if !w.forwardable(ev.Type) {
			continue
		}
		if err := w.sink.Emit(ctx, ev); err != nil {
			w.log.Warn("failed to deliver event", "type", ev.Type, "error", err)
		}
	}

	if w.tracker == nil {
		return
	}
	if ev := w.tracker.MaybeFire(time.Now(), w.snapshots.All()); ev != nil {
		if err := w.sink.Emit(ctx, *ev); err != nil {
			w.log.Warn("failed to deliver daily report", "error", err)
		}
	}
	if err := w.baseline.Flush(); err != nil {
		w.log.Warn("failed to flush baseline, will retry next cycle", "error", err)
	}
}

// forwardable applies the per-category alert toggles. Read failures and
// recoveries always pass; the log sink decides how loudly to surface them.
func (w *Watcher) forwardable(t domain.EventType) bool {
	switch t {
	case domain.EventBalanceChanged:
		return w.cfg.Alerts.BalanceChangeEnabled()
	case domain.EventLowBalance:
		return w.cfg.Alerts.LowBalanceEnabled()
	default:
		return true
	}
}

// Stop stops the polling loop, flushes state one last time and shuts the
// health server down.
func (w *Watcher) Stop(ctx context.Context) error {
	w.log.Info("Stopping Watcher...")
	close(w.stop)

	select {
	case <-w.done:
	case <-ctx.Done():
	}

	for name, store := range map[string]interface{ Flush() error }{
		"snapshots": w.snapshots,
		"alerts":    w.alerts,
		"baseline":  w.baseline,
	} {
		if err := store.Flush(); err != nil {
			w.log.Warn("final flush failed", "file", name, "error", err)
		}
	}

	if err := w.sink.Close(); err != nil {
		w.log.Warn("failed to close notification sinks", "error", err)
	}
	return w.healthServer.Stop(ctx)
}

func (w *Watcher) logStartupSummary(entities []domain.Entity) {
	w.log.Info("Watcher configured",
		"networks", len(w.cfg.Networks),
		"entities", len(entities),
		"interval", w.cfg.Interval(),
		"data_dir", w.cfg.DataDir,
		"daily_report", w.cfg.DailyReport.Enabled,
		"telegram", w.cfg.Telegram != nil && w.cfg.Telegram.BotToken != "",
	)
	for _, nc := range w.cfg.Networks {
		w.log.Info("Watching network",
			"network", nc.Name,
			"chain_id", nc.ChainID,
			"rpc_nodes", len(nc.RPCNodes),
			"addresses", len(nc.Addresses),
			"tokens", len(nc.Tokens),
		)
	}
}
