package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v2"
)

var timeRe = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.IntervalSecs == 0 {
		cfg.IntervalSecs = 60
	}
	if cfg.ActiveTransportCount == 0 {
		cfg.ActiveTransportCount = 3
	}
	if cfg.RPCTimeoutSecs == 0 {
		cfg.RPCTimeoutSecs = 10
	}
	if cfg.RecoverySuccesses == 0 {
		cfg.RecoverySuccesses = 1
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.DailyReport.Time == "" {
		cfg.DailyReport.Time = "09:00"
	}
}

func validate(cfg *AppConfig) error {
	if len(cfg.Networks) == 0 {
		return fmt.Errorf("networks list cannot be empty")
	}

	for _, network := range cfg.Networks {
		if network.Name == "" {
			return fmt.Errorf("network name cannot be empty")
		}
		if len(network.RPCNodes) == 0 {
			return fmt.Errorf("rpc_nodes list cannot be empty for network %q", network.Name)
		}
		if len(network.Addresses) == 0 {
			return fmt.Errorf("addresses list cannot be empty for network %q", network.Name)
		}
		for _, addr := range network.Addresses {
			if !isHexAddress(addr.Address) {
				return fmt.Errorf("invalid address %q for network %q", addr.Address, network.Name)
			}
		}
		for _, token := range network.Tokens {
			if !isHexAddress(token.Contract) {
				return fmt.Errorf("invalid token contract %q for network %q", token.Contract, network.Name)
			}
		}
	}

	if cfg.Telegram != nil && cfg.Telegram.BotToken == "" {
		return fmt.Errorf("telegram bot_token cannot be empty")
	}

	if cfg.DailyReport.Enabled && !timeRe.MatchString(cfg.DailyReport.Time) {
		return fmt.Errorf("daily_report time %q is not HH:MM", cfg.DailyReport.Time)
	}

	return nil
}

func isHexAddress(s string) bool {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return false
	}
	if len(s) != 42 {
		return false
	}
	for _, c := range s[2:] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
