package control

import (
	"path/filepath"
	"testing"

	"github.com/oxwatch/balwatch/internal/core/config"
	"github.com/oxwatch/balwatch/internal/core/domain"
)

func boolPtr(b bool) *bool { return &b }

func TestForwardable_AlertToggles(t *testing.T) {
	tests := []struct {
		name      string
		alerts    config.AlertSettings
		eventType domain.EventType
		want      bool
	}{
		{"changes on by default", config.AlertSettings{}, domain.EventBalanceChanged, true},
		{"low balance on by default", config.AlertSettings{}, domain.EventLowBalance, true},
		{"changes disabled", config.AlertSettings{BalanceChange: boolPtr(false)}, domain.EventBalanceChanged, false},
		{"low balance disabled", config.AlertSettings{LowBalance: boolPtr(false)}, domain.EventLowBalance, false},
		{"recovery always passes", config.AlertSettings{LowBalance: boolPtr(false)}, domain.EventRecovered, true},
		{"read failures always pass", config.AlertSettings{BalanceChange: boolPtr(false)}, domain.EventReadFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &Watcher{cfg: &config.AppConfig{Alerts: tt.alerts}}
			if got := w.forwardable(tt.eventType); got != tt.want {
				t.Errorf("forwardable(%s) = %v, want %v", tt.eventType, got, tt.want)
			}
		})
	}
}

func TestNewWatcher_CreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	cfg := &config.AppConfig{
		DataDir:      dir,
		IntervalSecs: 60,
		Networks: []config.NetworkConfig{{
			Name:     "mainnet",
			ChainID:  1,
			RPCNodes: []string{"https://rpc.example.invalid"},
			Addresses: []config.AddressConfig{{
				Alias:   "ops",
				Address: "0x1234567890abcdef1234567890abcdef12345678",
			}},
		}},
	}

	w, err := NewWatcher(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if w.tracker != nil {
		t.Error("daily report should be off unless enabled")
	}
	if len(w.pools) != 1 {
		t.Errorf("pools = %d, want 1", len(w.pools))
	}
}

func TestNewWatcher_RejectsBadReportTime(t *testing.T) {
	cfg := &config.AppConfig{
		DataDir:      t.TempDir(),
		IntervalSecs: 60,
		DailyReport:  config.DailyReport{Enabled: true, Time: "25:99"},
	}
	if _, err := NewWatcher(cfg); err == nil {
		t.Fatal("expected error for invalid report time")
	}
}
