package config

import "time"

// AppConfig represents the top-level configuration.
type AppConfig struct {
	DataDir              string          `yaml:"data_dir"`
	IntervalSecs         int             `yaml:"interval_secs"`
	ActiveTransportCount int             `yaml:"active_transport_count"`
	RPCTimeoutSecs       int             `yaml:"rpc_timeout_secs"`
	RecoverySuccesses    int             `yaml:"recovery_successes"`
	Networks             []NetworkConfig `yaml:"networks"`
	DailyReport          DailyReport     `yaml:"daily_report"`
	Telegram             *TelegramConfig `yaml:"telegram"`
	Server               ServerConfig    `yaml:"server"`
	Logging              LoggingConfig   `yaml:"logging"`
	Alerts               AlertSettings   `yaml:"alerts"`
}

// ServerConfig holds HTTP health/metrics server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// AlertSettings toggles notification categories.
type AlertSettings struct {
	BalanceChange *bool `yaml:"balance_change"` // default true
	LowBalance    *bool `yaml:"low_balance"`    // default true
}

// BalanceChangeEnabled reports whether balance-change events are forwarded
// to sinks.
func (a AlertSettings) BalanceChangeEnabled() bool {
	return a.BalanceChange == nil || *a.BalanceChange
}

// LowBalanceEnabled reports whether low-balance events are forwarded to
// sinks.
func (a AlertSettings) LowBalanceEnabled() bool {
	return a.LowBalance == nil || *a.LowBalance
}

// NetworkConfig holds settings for one blockchain network.
type NetworkConfig struct {
	Name      string          `yaml:"name"`
	ChainID   uint64          `yaml:"chain_id"`
	RPCNodes  []string        `yaml:"rpc_nodes"`
	Addresses []AddressConfig `yaml:"addresses"`
	Tokens    []TokenConfig   `yaml:"tokens"`
}

// AddressConfig is a monitored native-coin address.
type AddressConfig struct {
	Alias   string `yaml:"alias"`
	Address string `yaml:"address"`
	// MinBalanceETH enables low-balance alerts below this native balance.
	MinBalanceETH *float64 `yaml:"min_balance_eth"`
}

// TokenConfig is a monitored token: the contract is read against each of
// the network's configured addresses.
type TokenConfig struct {
	Alias    string `yaml:"alias"`
	Contract string `yaml:"contract"`
	// MinBalance enables low-balance alerts below this token balance.
	MinBalance *float64 `yaml:"min_balance"`
}

// DailyReport configures the once-a-day diff report.
type DailyReport struct {
	Enabled  bool   `yaml:"enabled"`
	Time     string `yaml:"time"`     // "HH:MM", 24-hour
	Timezone string `yaml:"timezone"` // IANA name, empty = local
}

// TelegramConfig configures the Telegram notification sink. The bot
// command surface lives outside this service; only sending is wired here.
type TelegramConfig struct {
	BotToken        string `yaml:"bot_token"`
	ShowFullAddress bool   `yaml:"show_full_address"`
}

// Interval returns the polling interval.
func (c *AppConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSecs) * time.Second
}

// RPCTimeout returns the per-endpoint request timeout.
func (c *AppConfig) RPCTimeout() time.Duration {
	return time.Duration(c.RPCTimeoutSecs) * time.Second
}
