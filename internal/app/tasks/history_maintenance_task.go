package tasks

import (
	"context"
	"fmt"
	"time"
)

// newHistoryMaintenanceTask prunes runs older than the configured retention
// and then compacts the database.
func newHistoryMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", TaskHistoryMaintenance)

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting history maintenance...")
		startTime := time.Now()

		cutoff := startTime.Add(-deps.Config.Database.Retention)
		deleted, err := deps.Store.PruneRuns(ctx, cutoff)
		if err != nil {
			log.ErrorContext(ctx, "Pruning run history failed", "error", err)
			return fmt.Errorf("prune runs: %w", err)
		}

		if err := deps.Store.RunSQLMaintenance(ctx); err != nil {
			log.ErrorContext(ctx, "SQL maintenance failed", "error", err, "duration", time.Since(startTime))
			return fmt.Errorf("sql maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "History maintenance completed", "runs_deleted", deleted, "duration", time.Since(startTime))
		return nil
	}
}
