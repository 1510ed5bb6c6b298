package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tgbot "github.com/go-telegram/bot"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/edgard/avitobridge/internal/app/tasks"
	"github.com/edgard/avitobridge/internal/avito"
	"github.com/edgard/avitobridge/internal/config"
	"github.com/edgard/avitobridge/internal/database"
	"github.com/edgard/avitobridge/internal/logger"
	"github.com/edgard/avitobridge/internal/metrics"
	"github.com/edgard/avitobridge/internal/relay"
	"github.com/edgard/avitobridge/internal/telegram"
)

// components holds everything a command needs after setup.
type components struct {
	cfg   *config.Config
	log   *slog.Logger
	db    *sqlx.DB
	store database.Store
	relay *relay.Relay
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(configPath, config.DefaultEnvFile())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON, cfg.Logger.File)
	log.Debug("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)
	return cfg, log, nil
}

// openStore opens the run history when a database path is configured.
func openStore(cfg *config.Config, log *slog.Logger) (*sqlx.DB, database.Store, error) {
	if !cfg.HistoryEnabled() {
		return nil, nil, nil
	}
	db, err := database.NewDB(cfg.Database.Path, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open run history %s: %w", cfg.Database.Path, err)
	}
	return db, database.NewStore(db, log), nil
}

func setup(ctx context.Context) (*components, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	metrics.MustRegister(prometheus.DefaultRegisterer)

	c := &components{cfg: cfg, log: log}

	c.db, c.store, err = openStore(cfg, log)
	if err != nil {
		return nil, err
	}
	if c.store != nil {
		if err := c.store.Ping(ctx); err != nil {
			c.close()
			return nil, fmt.Errorf("run history unreachable: %w", err)
		}
	}

	source, err := avito.NewClient(avito.Config{
		BaseURL: cfg.Avito.BaseURL,
		Token:   cfg.Avito.Token,
		UserID:  cfg.Avito.UserID,
		Timeout: cfg.Avito.Timeout,
	}, nil, log)
	if err != nil {
		c.close()
		return nil, fmt.Errorf("failed to create avito client: %w", err)
	}

	var sink relay.Sink
	if cfg.Telegram.Enabled {
		// getMe is skipped so an unreachable Bot API only fails the sends.
		tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, tgbot.WithSkipGetMe())
		if err != nil {
			c.close()
			return nil, err
		}
		tgSink, err := telegram.NewSink(tg, cfg.Telegram.ChannelID, log)
		if err != nil {
			c.close()
			return nil, err
		}
		sink = tgSink
	} else {
		log.Info("Forwarding disabled, messages are only printed")
	}

	c.relay = relay.New(source, sink, os.Stdout, relay.Options{
		ChatLimit:    cfg.Avito.ChatLimit,
		MessageLimit: cfg.Avito.MessageLimit,
		SkipEmpty:    cfg.Telegram.SkipEmpty,
	}, log)

	log.Info("Components initialized",
		"user_id", cfg.Avito.UserID,
		"token", logger.Redact(cfg.Avito.Token),
		"chat_limit", cfg.Avito.ChatLimit,
		"message_limit", cfg.Avito.MessageLimit,
		"forwarding", sink != nil,
		"history", c.store != nil)
	return c, nil
}

func (c *components) taskDeps() tasks.TaskDeps {
	return tasks.TaskDeps{
		Logger: c.log,
		Relay:  c.relay,
		Store:  c.store,
		Config: c.cfg,
	}
}

func (c *components) relayTask() tasks.ScheduledTaskFunc {
	return tasks.NewRelayTask(c.taskDeps())
}

func (c *components) close() {
	database.CloseDB(c.db, c.log)
}
