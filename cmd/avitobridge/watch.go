package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/edgard/avitobridge/internal/app"
	"github.com/edgard/avitobridge/internal/app/tasks"
	"github.com/edgard/avitobridge/internal/metrics"
)

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run relay passes on a schedule until interrupted",
		Long: `Runs a relay pass on scheduler.relay_schedule and, when run history is
enabled, prunes and compacts it on scheduler.maintenance_schedule. Serves
/metrics and /healthz when metrics.addr is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			c, err := setup(ctx)
			if err != nil {
				return err
			}
			defer c.close()

			sched, err := app.NewScheduler(c.log, app.Schedules(&c.cfg.Scheduler), tasks.RegisterAllTasks(c.taskDeps()))
			if err != nil {
				return err
			}

			var metricsServer *metrics.Server
			if c.cfg.Metrics.Addr != "" {
				metricsServer = metrics.NewServer(c.cfg.Metrics.Addr, prometheus.DefaultGatherer, c.log)
			}

			if err := app.New(c.log, sched, metricsServer).Run(ctx); err != nil {
				return fmt.Errorf("watch stopped: %w", err)
			}
			return nil
		},
	}
}
