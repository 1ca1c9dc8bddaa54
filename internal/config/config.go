package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Synth    SynthConfig    `mapstructure:"synth"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// MonitorConfig holds detector thresholds
type MonitorConfig struct {
	MaxStalenessSeconds     int     `mapstructure:"max_staleness_seconds"`
	ThinLiquidityQuantile   float64 `mapstructure:"thin_liquidity_quantile"`
	ThinLiquidityMinHistory int     `mapstructure:"thin_liquidity_min_history"`
	FlashSpikeThresholdPct  float64 `mapstructure:"flash_spike_threshold_pct"`
	HistoryLimit            int     `mapstructure:"history_limit"` // 0 = unbounded
}

// SynthConfig drives the synthetic series used by the detect command
type SynthConfig struct {
	Points        int           `mapstructure:"points"`
	Seed          int64         `mapstructure:"seed"`
	BasePrice     float64       `mapstructure:"base_price"`
	Step          time.Duration `mapstructure:"step"`
	FlashMultiple float64       `mapstructure:"flash_multiple"`
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// StorageConfig holds the record sink configuration
type StorageConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
	MaxRuns int    `mapstructure:"max_runs"`
}

// MetricsConfig holds Prometheus exposition configuration
type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ListenAddr string `mapstructure:"listen_addr"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// Load reads configuration from file and environment variables.
// An empty path uses defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Enable environment variable override
	v.SetEnvPrefix("VENUE_ORACLE")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Monitor defaults
	v.SetDefault("monitor.max_staleness_seconds", 40)
	v.SetDefault("monitor.thin_liquidity_quantile", 0.2)
	v.SetDefault("monitor.thin_liquidity_min_history", 10)
	v.SetDefault("monitor.flash_spike_threshold_pct", 4.0)
	v.SetDefault("monitor.history_limit", 0)

	// Synth defaults
	v.SetDefault("synth.points", 60)
	v.SetDefault("synth.seed", 1)
	v.SetDefault("synth.base_price", 2000.0)
	v.SetDefault("synth.step", "10s")
	v.SetDefault("synth.flash_multiple", 1.12)

	// Telegram defaults
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	// Storage defaults
	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.db_path", "./data/venueoracle.db")
	v.SetDefault("storage.max_runs", 50)

	// Metrics defaults
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen_addr", ":9108")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 3)
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate Monitor config
	if c.Monitor.MaxStalenessSeconds < 1 {
		return fmt.Errorf("monitor.max_staleness_seconds must be at least 1")
	}
	if c.Monitor.ThinLiquidityQuantile <= 0.0 || c.Monitor.ThinLiquidityQuantile >= 1.0 {
		return fmt.Errorf("monitor.thin_liquidity_quantile must be between 0.0 and 1.0 (exclusive)")
	}
	if c.Monitor.ThinLiquidityMinHistory < 1 {
		return fmt.Errorf("monitor.thin_liquidity_min_history must be at least 1")
	}
	if c.Monitor.FlashSpikeThresholdPct <= 0 {
		return fmt.Errorf("monitor.flash_spike_threshold_pct must be positive")
	}
	if c.Monitor.HistoryLimit < 0 {
		return fmt.Errorf("monitor.history_limit must not be negative")
	}
	if c.Monitor.HistoryLimit > 0 && c.Monitor.HistoryLimit < c.Monitor.ThinLiquidityMinHistory {
		return fmt.Errorf("monitor.history_limit must be 0 or at least thin_liquidity_min_history")
	}

	// Validate Synth config
	if c.Synth.Points < 3 {
		return fmt.Errorf("synth.points must be at least 3")
	}
	if c.Synth.Seed < 0 {
		return fmt.Errorf("synth.seed must not be negative")
	}
	if c.Synth.BasePrice <= 0 {
		return fmt.Errorf("synth.base_price must be positive")
	}
	if c.Synth.Step < time.Second {
		return fmt.Errorf("synth.step must be at least 1 second")
	}
	if c.Synth.FlashMultiple <= 0 {
		return fmt.Errorf("synth.flash_multiple must be positive")
	}

	// Validate Telegram config
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	// Validate Storage config
	if c.Storage.Enabled {
		if c.Storage.DBPath == "" {
			return fmt.Errorf("storage.db_path is required when storage is enabled")
		}
		if c.Storage.MaxRuns < 1 {
			return fmt.Errorf("storage.max_runs must be at least 1")
		}
	}

	// Validate Metrics config
	if c.Metrics.Enabled && c.Metrics.ListenAddr == "" {
		return fmt.Errorf("metrics.listen_addr is required when metrics are enabled")
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

// MaxStaleness returns the staleness window as a duration
func (m MonitorConfig) MaxStaleness() time.Duration {
	return time.Duration(m.MaxStalenessSeconds) * time.Second
}

var envKeyReplacer = strings.NewReplacer(".", "_")
