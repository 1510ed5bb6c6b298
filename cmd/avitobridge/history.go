package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/edgard/avitobridge/internal/database"
)

func historyCmd() *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print recent relay runs from the run history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.HistoryEnabled() {
				return errors.New("run history is disabled: set database.path")
			}

			db, store, err := openStore(cfg, log)
			if err != nil {
				return err
			}
			defer database.CloseDB(db, log)

			out := cmd.OutOrStdout()
			if runID != "" {
				results, err := store.ChatResults(ctx, runID)
				if err != nil {
					return err
				}
				return printChatResults(out, results)
			}

			runs, err := store.RecentRuns(ctx, limit)
			if err != nil {
				return err
			}
			return printRuns(out, runs)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	cmd.Flags().StringVar(&runID, "run", "", "show per-chat results of one run")
	return cmd
}

func printRuns(w io.Writer, runs []database.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tDURATION\tLISTED\tFAILED\tFORWARDED\tLIST ERROR")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond),
			r.ChatsListed, r.ChatsFailed, r.ChatsForwarded,
			r.ListError)
	}
	return tw.Flush()
}

func printChatResults(w io.Writer, results []database.ChatResult) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No chat results for this run.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCHAT\tSTAGE\tTEXT\tFORWARDED\tCODE\tERROR")
	for _, r := range results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%t\t%s\t%s\n",
			r.Position+1, r.ChatID, r.Stage, r.TextMessages, r.Forwarded, r.ErrorCode, r.Error)
	}
	return tw.Flush()
}
