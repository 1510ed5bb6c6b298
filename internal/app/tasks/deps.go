// Package tasks implements the scheduled tasks of watch mode.
package tasks

import (
	"context"
	"log/slog"

	"github.com/edgard/avitobridge/internal/config"
	"github.com/edgard/avitobridge/internal/database"
	"github.com/edgard/avitobridge/internal/relay"
)

// Runner executes one relay pass.
type Runner interface {
	Run(ctx context.Context) *relay.Report
}

// TaskDeps contains all dependencies required by scheduled tasks.
// Store is nil when run history is disabled.
type TaskDeps struct {
	Logger *slog.Logger
	Relay  Runner
	Store  database.Store
	Config *config.Config
}
