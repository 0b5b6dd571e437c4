package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/styleguard/styleguard/internal/history"
	"github.com/styleguard/styleguard/internal/storage"
)

// createHistoryCommand creates the command that lists recent runs.
func createHistoryCommand() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent validation and correction runs",
		RunE:  runHistory,
	}

	historyCmd.Flags().Int("limit", 20, "Maximum number of runs to show")

	return historyCmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return fmt.Errorf("failed to get limit flag: %w", err)
	}

	dbPath, err := storage.New(afero.NewOsFs()).HistoryPath()
	if err != nil {
		return err
	}

	store, err := history.New(cmd.Context(), dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return nil
	}

	for _, run := range runs {
		fmt.Fprintf(out, "%s  %s  %s  %s  %d violations, %d applied, %d failed, %d skipped\n",
			run.CreatedAt.Format("2006-01-02 15:04"), run.JobID, run.Document, run.Status,
			run.Violations, run.Applied, run.Failed, run.Skipped)
	}

	return nil
}
