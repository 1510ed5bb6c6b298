// Package app runs watch mode: the task scheduler and the optional metrics
// server, until the context is canceled or one of them fails.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/edgard/avitobridge/internal/metrics"
)

// App manages the lifecycle of the watch mode components.
type App struct {
	logger    *slog.Logger
	scheduler *Scheduler
	metrics   *metrics.Server
}

// New creates an App. metricsServer may be nil.
func New(logger *slog.Logger, scheduler *Scheduler, metricsServer *metrics.Server) *App {
	return &App{
		logger:    logger.With("component", "orchestrator"),
		scheduler: scheduler,
		metrics:   metricsServer,
	}
}

// Run blocks until ctx is canceled or a component fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("Starting orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.scheduler.Start(gCtx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		a.logger.Info("Shutdown signal received, stopping scheduler...")

		if err := a.scheduler.Stop(); err != nil {
			a.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	if a.metrics != nil {
		g.Go(func() error {
			if err := a.metrics.Run(gCtx); err != nil {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error("Orchestrator stopped due to error", "error", err)
		return err
	}

	a.logger.Info("Orchestrator stopped gracefully")
	return nil
}
