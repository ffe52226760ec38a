// Package config defines all configuration for the Treasury book engine.
// Config is loaded from a YAML file (default: configs/config.yaml) with
// environment variables overriding individual fields under the TBE_ prefix.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level configuration. Maps directly to the YAML file structure.
type Config struct {
	Feeds     FeedsConfig     `mapstructure:"feeds"`
	Risk      RiskConfig      `mapstructure:"risk"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// FeedsConfig locates the input CSV feeds and output sinks, and sets how
// many records are pulled from each input feed.
type FeedsConfig struct {
	InputDir        string `mapstructure:"input_dir"`
	OutputDir       string `mapstructure:"output_dir"`
	TradeCount      int    `mapstructure:"trade_count"`
	PriceCount      int    `mapstructure:"price_count"`
	MarketDataCount int    `mapstructure:"market_data_count"`
	InquiryCount    int    `mapstructure:"inquiry_count"`
}

// RiskConfig points at the externalized PV01 seed table and sector
// membership table, avoiding any hardcoded, map-iteration-order-dependent
// assignment.
type RiskConfig struct {
	PV01TablePath string `mapstructure:"pv01_table_path"`
	SectorsPath   string `mapstructure:"sectors_path"`
}

// DashboardConfig controls the read-only monitoring HTTP/WebSocket server.
type DashboardConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	Addr             string        `mapstructure:"addr"`
	ThrottleInterval time.Duration `mapstructure:"throttle_interval"`
}

// LoggingConfig selects slog's handler and minimum level.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads config from a YAML file with TBE_-prefixed env var overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("TBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("feeds.input_dir", "Input")
	v.SetDefault("feeds.output_dir", "Output")
	v.SetDefault("feeds.trade_count", 18)
	v.SetDefault("feeds.price_count", 36)
	v.SetDefault("feeds.market_data_count", 36)
	v.SetDefault("feeds.inquiry_count", 36)
	v.SetDefault("risk.pv01_table_path", "configs/pv01.yaml")
	v.SetDefault("risk.sectors_path", "configs/sectors.yaml")
	v.SetDefault("dashboard.enabled", true)
	v.SetDefault("dashboard.addr", ":8080")
	v.SetDefault("dashboard.throttle_interval", 300*time.Millisecond)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks all required fields and value ranges.
func (c *Config) Validate() error {
	if c.Feeds.InputDir == "" {
		return fmt.Errorf("feeds.input_dir is required")
	}
	if c.Feeds.OutputDir == "" {
		return fmt.Errorf("feeds.output_dir is required")
	}
	if c.Feeds.TradeCount < 0 || c.Feeds.PriceCount < 0 || c.Feeds.MarketDataCount < 0 || c.Feeds.InquiryCount < 0 {
		return fmt.Errorf("feeds.*_count must be >= 0")
	}
	if c.Risk.PV01TablePath == "" {
		return fmt.Errorf("risk.pv01_table_path is required")
	}
	if c.Risk.SectorsPath == "" {
		return fmt.Errorf("risk.sectors_path is required")
	}
	if c.Dashboard.Enabled && c.Dashboard.Addr == "" {
		return fmt.Errorf("dashboard.addr is required when dashboard.enabled is true")
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text")
	}
	return nil
}
