package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"lcr-engine/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Logging    logging.Config   `mapstructure:"logging"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Compliance ComplianceConfig `mapstructure:"compliance"`
	Outflow    OutflowConfig    `mapstructure:"outflow"`
	Alerting   AlertingConfig   `mapstructure:"alerting"`
	Export     ExportConfig     `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// SchedulerConfig governs recomputation cadence.
type SchedulerConfig struct {
	Interval        time.Duration `mapstructure:"interval"`
	AlignToBucket   bool          `mapstructure:"align_to_bucket"`
	AdvisoryLockKey int64         `mapstructure:"advisory_lock_key"`
	StartupDelay    time.Duration `mapstructure:"startup_delay"`
}

// ComplianceConfig carries the classification and alert boundaries in
// ratio percentage points. Defaults are the regulatory values; they are
// configurable for what-if runs, not for production relaxation.
type ComplianceConfig struct {
	MinimumRatio     float64 `mapstructure:"minimum_ratio"`
	WarningFloor     float64 `mapstructure:"warning_floor"`
	WatchCeiling     float64 `mapstructure:"watch_ceiling"`
	VolHighDelta     float64 `mapstructure:"vol_high_delta"`
	VolMediumDelta   float64 `mapstructure:"vol_medium_delta"`
}

// OutflowConfig parameterises the per-account run-off adjustments.
type OutflowConfig struct {
	ProductDiscount     float64 `mapstructure:"product_discount"`
	ProductThreshold    int     `mapstructure:"product_threshold"`
	DirectDebitDiscount float64 `mapstructure:"direct_debit_discount"`
	TenurePenalty       float64 `mapstructure:"tenure_penalty"`
	TenureThresholdDays int     `mapstructure:"tenure_threshold_days"`
	RateFloor           float64 `mapstructure:"rate_floor"`
	RateCap             float64 `mapstructure:"rate_cap"`
}

// AlertingConfig defines alert routing.
type AlertingConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Channels []string       `mapstructure:"channels"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig describes the Telegram delivery channel.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LCRENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "lcrengine")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("scheduler.interval", "1h")
	v.SetDefault("scheduler.align_to_bucket", true)
	v.SetDefault("scheduler.advisory_lock_key", int64(0x4c435245))
	v.SetDefault("scheduler.startup_delay", "0s")

	v.SetDefault("compliance.minimum_ratio", 100.0)
	v.SetDefault("compliance.warning_floor", 95.0)
	v.SetDefault("compliance.watch_ceiling", 105.0)
	v.SetDefault("compliance.vol_high_delta", 10.0)
	v.SetDefault("compliance.vol_medium_delta", 5.0)

	v.SetDefault("outflow.product_discount", 0.02)
	v.SetDefault("outflow.product_threshold", 3)
	v.SetDefault("outflow.direct_debit_discount", 0.01)
	v.SetDefault("outflow.tenure_penalty", 0.05)
	v.SetDefault("outflow.tenure_threshold_days", 540)
	v.SetDefault("outflow.rate_floor", 0.03)
	v.SetDefault("outflow.rate_cap", 1.0)

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.channels", []string{"telegram"})
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("export.max_data_points", 100000)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.migrations_path", "migrations")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be greater than zero")
	}
	if c.Compliance.WarningFloor >= c.Compliance.MinimumRatio {
		return fmt.Errorf("compliance.warning_floor must be below compliance.minimum_ratio")
	}
	if c.Compliance.WatchCeiling < c.Compliance.MinimumRatio {
		return fmt.Errorf("compliance.watch_ceiling cannot be below compliance.minimum_ratio")
	}
	if c.Compliance.VolMediumDelta <= 0 || c.Compliance.VolHighDelta <= c.Compliance.VolMediumDelta {
		return fmt.Errorf("compliance volatility deltas must satisfy 0 < medium < high")
	}
	if c.Outflow.RateFloor < 0 || c.Outflow.RateCap <= c.Outflow.RateFloor {
		return fmt.Errorf("outflow rate clamp must satisfy 0 <= floor < cap")
	}
	if c.Outflow.TenureThresholdDays <= 0 {
		return fmt.Errorf("outflow.tenure_threshold_days must be greater than zero")
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token is required when telegram is enabled")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id is required when telegram is enabled")
		}
	}
	return nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}
