package config

import "time"

// Default values for configuration
const (
	// Log defaults
	DefaultLogLevel = "info"
	DefaultLogJSON  = false

	// Avito defaults
	DefaultAvitoBaseURL      = "https://api.avito.ru"
	DefaultAvitoChatLimit    = 5
	DefaultAvitoMessageLimit = 15
	DefaultAvitoTimeout      = 30 * time.Second

	// Telegram defaults
	DefaultTelegramEnabled   = true
	DefaultTelegramSkipEmpty = false

	// Database defaults (empty path disables run history)
	DefaultDBPath      = ""
	DefaultDBRetention = 30 * 24 * time.Hour

	// Scheduler defaults
	DefaultRelaySchedule       = "0 */5 * * * *" // every five minutes, seconds field enabled
	DefaultMaintenanceSchedule = "0 0 4 * * *"   // daily at 04:00

	// Metrics defaults (empty address disables the server)
	DefaultMetricsAddr = ""

	// EnvPrefix is prepended to every environment variable, e.g. AVITOBRIDGE_AVITO_TOKEN.
	EnvPrefix = "AVITOBRIDGE"
)

func defaults() map[string]any {
	return map[string]any{
		"logger.level": DefaultLogLevel,
		"logger.json":  DefaultLogJSON,
		"logger.file":  "",

		"avito.base_url":      DefaultAvitoBaseURL,
		"avito.token":         "",
		"avito.user_id":       "",
		"avito.chat_limit":    DefaultAvitoChatLimit,
		"avito.message_limit": DefaultAvitoMessageLimit,
		"avito.timeout":       DefaultAvitoTimeout,

		"telegram.enabled":    DefaultTelegramEnabled,
		"telegram.token":      "",
		"telegram.channel_id": "",
		"telegram.skip_empty": DefaultTelegramSkipEmpty,

		"database.path":      DefaultDBPath,
		"database.retention": DefaultDBRetention,

		"scheduler.relay_schedule":       DefaultRelaySchedule,
		"scheduler.maintenance_schedule": DefaultMaintenanceSchedule,

		"metrics.addr": DefaultMetricsAddr,
	}
}
