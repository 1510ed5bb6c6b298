package tasks

import "context"

// Task names, also used as gocron job names.
const (
	TaskRelay              = "relay"
	TaskHistoryMaintenance = "history_maintenance"
)

// ScheduledTaskFunc defines the standard signature for all scheduled tasks.
// The context should be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks returns the tasks available for deps. The history
// maintenance task is only registered when a store is configured.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := make(map[string]ScheduledTaskFunc)

	tasks[TaskRelay] = NewRelayTask(deps)
	if deps.Store != nil {
		tasks[TaskHistoryMaintenance] = newHistoryMaintenanceTask(deps)
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
