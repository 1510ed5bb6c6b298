package tasks

import (
	"context"
	"fmt"

	"github.com/edgard/avitobridge/internal/relay"
)

// NewRelayTask creates the task that runs one relay pass and records its
// report when run history is enabled. Only a failure to save the report is
// returned as an error; per-chat failures live in the report.
func NewRelayTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", TaskRelay)

	return func(ctx context.Context) error {
		report := deps.Relay.Run(ctx)
		logReport(ctx, deps, report)

		if deps.Store == nil {
			return nil
		}

		// Save even if ctx was canceled mid-pass so the partial report is kept.
		if err := deps.Store.SaveReport(context.WithoutCancel(ctx), report); err != nil {
			log.ErrorContext(ctx, "Failed to save relay report", "run_id", report.RunID, "error", err)
			return fmt.Errorf("failed to save relay report: %w", err)
		}
		log.DebugContext(ctx, "Relay report saved", "run_id", report.RunID)
		return nil
	}
}

func logReport(ctx context.Context, deps TaskDeps, report *relay.Report) {
	log := deps.Logger.With("task", TaskRelay, "run_id", report.RunID)

	if report.ListErr != nil {
		log.WarnContext(ctx, "Relay pass could not list chats", "error", report.ListErr, "duration", report.Duration())
		return
	}
	log.InfoContext(ctx, "Relay pass summary",
		"chats_listed", report.ChatsListed,
		"chats_processed", len(report.Chats),
		"chats_failed", report.Failed(),
		"chats_forwarded", report.Forwarded(),
		"duration", report.Duration())
}
