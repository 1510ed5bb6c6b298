// Package main contains the entrypoint for avitobridge.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx, os.Args[1:])
	stop()
	os.Exit(exitCode)
}

// run executes the command line and returns the process exit code. Only
// setup failures produce a non-zero code; relay outcomes never do.
func run(ctx context.Context, args []string) int {
	root := newRootCmd()
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error("avitobridge failed", "error", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "avitobridge",
		Short: "Relay recent Avito messenger chats to a Telegram channel",
		Long: `avitobridge lists the most recent chats of an Avito account, prints their
details and latest text messages, and forwards a summary per chat to a
Telegram channel. Without a subcommand it performs a single pass.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOnce(cmd.Context())
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to an optional YAML config file")

	root.AddCommand(watchCmd())
	root.AddCommand(historyCmd())
	return root
}

func runOnce(ctx context.Context) error {
	c, err := setup(ctx)
	if err != nil {
		return err
	}
	defer c.close()

	// Errors here are store failures; the pass itself already completed.
	if err := c.relayTask()(ctx); err != nil {
		c.log.Error("Relay pass finished with errors", "error", err)
	}
	return nil
}
