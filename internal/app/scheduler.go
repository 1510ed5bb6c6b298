package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/edgard/avitobridge/internal/app/tasks"
	"github.com/edgard/avitobridge/internal/config"
)

// Scheduler runs registered tasks on cron schedules using gocron.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
	schedules map[string]string
	taskMap   map[string]tasks.ScheduledTaskFunc
	mu        sync.Mutex
	running   bool
}

// Schedules maps task names to their cron expressions from cfg.
func Schedules(cfg *config.SchedulerConfig) map[string]string {
	return map[string]string{
		tasks.TaskRelay:              cfg.RelaySchedule,
		tasks.TaskHistoryMaintenance: cfg.MaintenanceSchedule,
	}
}

// NewScheduler creates a scheduler for taskMap. Tasks without a schedule are skipped at Start.
func NewScheduler(logger *slog.Logger, schedules map[string]string, taskMap map[string]tasks.ScheduledTaskFunc) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "scheduler")

	s, err := gocron.NewScheduler(gocron.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		logger:    log,
		schedules: schedules,
		taskMap:   taskMap,
	}, nil
}

// Start schedules every registered task and starts ticking. Tasks receive
// ctx, so canceling it interrupts a running pass.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	names := make([]string, 0, len(s.taskMap))
	for name := range s.taskMap {
		names = append(names, name)
	}
	sort.Strings(names)

	scheduledCount := 0
	for _, taskName := range names {
		schedule := s.schedules[taskName]
		if schedule == "" {
			s.logger.Warn("Task has empty schedule, skipping", "task_name", taskName)
			continue
		}

		taskFunc := s.taskMap[taskName]
		_, err := s.scheduler.NewJob(
			gocron.CronJob(schedule, true),
			gocron.NewTask(
				func(name string) {
					s.logger.Info("Running scheduled task", "task_name", name)
					startTime := time.Now()
					if taskErr := taskFunc(ctx); taskErr != nil {
						s.logger.Error("Scheduled task failed", "task_name", name, "error", taskErr)
					}
					s.logger.Info("Finished scheduled task", "task_name", name, "duration", time.Since(startTime))
				},
				taskName,
			),
			gocron.WithName(taskName),
			// A slow pass must never overlap the next one.
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("failed to schedule task %s (%q): %w", taskName, schedule, err)
		}

		s.logger.Info("Scheduled task", "task_name", taskName, "schedule", schedule)
		scheduledCount++
	}

	s.scheduler.Start()
	s.running = true
	s.logger.Info("Scheduler started", "tasks_scheduled", scheduledCount)
	return nil
}

// JobNames returns the names of the scheduled jobs.
func (s *Scheduler) JobNames() []string {
	jobs := s.scheduler.Jobs()
	names := make([]string, 0, len(jobs))
	for _, j := range jobs {
		names = append(names, j.Name())
	}
	sort.Strings(names)
	return names
}

// Stop shuts the scheduler down, waiting for running jobs to complete.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	err := s.scheduler.Shutdown()
	if err != nil {
		s.logger.Error("Error during scheduler shutdown", "error", err)
	} else {
		s.logger.Info("Scheduler stopped gracefully")
	}

	s.running = false
	return err
}
