// Package config provides configuration loading, validation, and management
// for avitobridge. Values come from defaults, an optional YAML file, an
// optional .env file and AVITOBRIDGE_* environment variables, in that order
// of increasing precedence.
package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Avito     AvitoConfig     `mapstructure:"avito"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
	File  string `mapstructure:"file"`
}

// AvitoConfig holds the source messenger API credentials and fetch limits.
type AvitoConfig struct {
	BaseURL      string        `mapstructure:"base_url"      validate:"required,url"`
	Token        string        `mapstructure:"token"         validate:"required"`
	UserID       string        `mapstructure:"user_id"       validate:"required,numeric"`
	ChatLimit    int           `mapstructure:"chat_limit"    validate:"min=1,max=100"`
	MessageLimit int           `mapstructure:"message_limit" validate:"min=1,max=100"`
	Timeout      time.Duration `mapstructure:"timeout"       validate:"min=1s,max=5m"`
}

// TelegramConfig holds the forwarding target. Token and ChannelID are only
// required when forwarding is enabled.
type TelegramConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Token     string `mapstructure:"token"      validate:"required_if=Enabled true"`
	ChannelID string `mapstructure:"channel_id" validate:"required_if=Enabled true"`
	SkipEmpty bool   `mapstructure:"skip_empty"`
}

// DatabaseConfig holds the optional run history store settings.
type DatabaseConfig struct {
	Path      string        `mapstructure:"path"`
	Retention time.Duration `mapstructure:"retention" validate:"min=1h"`
}

// SchedulerConfig holds cron expressions (with seconds field) for watch mode.
type SchedulerConfig struct {
	RelaySchedule       string `mapstructure:"relay_schedule"       validate:"required"`
	MaintenanceSchedule string `mapstructure:"maintenance_schedule" validate:"required"`
}

// MetricsConfig holds the listen address of the metrics server.
type MetricsConfig struct {
	Addr string `mapstructure:"addr" validate:"omitempty,hostname_port"`
}

// HistoryEnabled reports whether run reports should be persisted.
func (c *Config) HistoryEnabled() bool {
	return c.Database.Path != ""
}
