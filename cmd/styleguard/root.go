package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/styleguard/styleguard/internal/engine/pipeline"
	"github.com/styleguard/styleguard/internal/history"
	"github.com/styleguard/styleguard/internal/logging"
	"github.com/styleguard/styleguard/internal/rules"
	"github.com/styleguard/styleguard/internal/storage"
)

// createRootCommand creates the main root command that shows help by default.
func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "styleguard",
		Short: "Validate and correct document formatting against a style guide",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := cmd.Flags().GetString("log-level")
			if err != nil {
				return fmt.Errorf("failed to get log-level flag: %w", err)
			}
			return logging.Init(level)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringP("rules", "r", "styleguard-rules.json", "Path to rule source file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		createCheckCommand(),
		createFixCommand(),
		createRulesCommand(),
		createHistoryCommand(),
	)

	return rootCmd
}

// openStore loads the rule source named by the --rules flag.
func openStore(cmd *cobra.Command) (*rules.Store, error) {
	rulesPath, err := cmd.Flags().GetString("rules")
	if err != nil {
		return nil, fmt.Errorf("failed to get rules flag: %w", err)
	}

	store := rules.New(afero.NewOsFs(), rulesPath, rules.DefaultTTL)
	if err := store.Load(); err != nil {
		return nil, err
	}
	return store, nil
}

// newPipeline builds the processing pipeline, attaching run history on a
// best-effort basis.
func newPipeline(ctx context.Context, store *rules.Store) *pipeline.Pipeline {
	p := pipeline.New(afero.NewOsFs(), store)

	dbPath, err := storage.New(afero.NewOsFs()).HistoryPath()
	if err == nil {
		if h, herr := history.New(ctx, dbPath); herr == nil {
			return p.WithHistory(h)
		} else {
			log.Warn().Err(herr).Msg("run history unavailable")
		}
	}
	return p
}
