// Package telegram forwards relay summaries to a Telegram channel through
// the Bot API.
package telegram

import (
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"

	"github.com/edgard/avitobridge/internal/logger"
)

// NewTelegramBot creates a new Telegram bot instance using the go-telegram/bot library.
// The bot is only used to send messages; no update listener is started.
func NewTelegramBot(token string, log *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "telegram_bot")

	b, err := bot.New(token, opts...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.Info("Telegram bot instance created successfully", "token_prefix", logger.Redact(token))
	return b, nil
}
