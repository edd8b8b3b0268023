package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"subconv/internal/history"
)

const defaultHistoryLimit = 20

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded batch runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd, ctx, func(store *history.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprintln(out, renderHistoryRuns(runs))
				return nil
			})
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "Number of runs to show (0 for all)")

	historyCmd.AddCommand(&cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the per-file results of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd, ctx, func(store *history.Store) error {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %s not found", args[0])
				}
				results, err := store.Results(cmd.Context(), run.ID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run:       %s\n", run.ID)
				fmt.Fprintf(out, "Directory: %s\n", run.Dir)
				fmt.Fprintf(out, "Formats:   %s -> %s\n", run.SourceExt, run.TargetExt)
				fmt.Fprintf(out, "Started:   %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
				fmt.Fprintf(out, "Duration:  %s\n", formatDuration(run.FinishedAt.Sub(run.StartedAt)))
				fmt.Fprintf(out, "Outcome:   %s (%s)\n", run.Outcome(), tallyLine(run.Succeeded, run.Failed, run.Skipped))
				if run.Aborted() {
					fmt.Fprintf(out, "Error:     %s\n", run.ErrorMessage)
				}
				if len(results) > 0 {
					fmt.Fprintln(out, renderHistoryResults(results))
				}
				return nil
			})
		},
	})

	return historyCmd
}

func withHistory(cmd *cobra.Command, ctx *commandContext, fn func(*history.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfg.HistoryPath()); errors.Is(err, fs.ErrNotExist) {
		if !cfg.History.Enabled {
			fmt.Fprintln(cmd.OutOrStdout(), "History is disabled; set [history] enabled = true to record runs")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
		}
		return nil
	}
	store, err := history.Open(cfg)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()
	return fn(store)
}
