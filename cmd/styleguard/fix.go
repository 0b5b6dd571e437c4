package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/styleguard/styleguard/internal/engine/pipeline"
	"github.com/styleguard/styleguard/internal/report"
)

// createFixCommand creates the command that validates a document, applies
// corrections and saves the result.
func createFixCommand() *cobra.Command {
	fixCmd := &cobra.Command{
		Use:   "fix <document>",
		Short: "Validate a document and apply corrections",
		Args:  cobra.ExactArgs(1),
		RunE:  runFix,
	}

	fixCmd.Flags().StringP("output", "o", "", "Corrected document path (default <name>_corrected<ext>)")
	fixCmd.Flags().String("report", "", "Write the full JSON report to this path")
	fixCmd.Flags().Bool("normalize", false, "Normalize cover page structure before validating")

	return fixCmd
}

func runFix(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	inputPath := args[0]
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	if outputPath == "" {
		outputPath = pipeline.DefaultOutputPath(inputPath)
	}

	normalize, err := cmd.Flags().GetBool("normalize")
	if err != nil {
		return fmt.Errorf("failed to get normalize flag: %w", err)
	}

	p := newPipeline(cmd.Context(), store)
	r, err := p.Fix(cmd.Context(), inputPath, outputPath, normalize)
	if err != nil {
		return err
	}

	printSummary(cmd, r)
	printCorrections(cmd, r)
	fmt.Fprintf(cmd.OutOrStdout(), "Corrected document saved to %s\n", outputPath)

	reportPath, err := cmd.Flags().GetString("report")
	if err != nil {
		return fmt.Errorf("failed to get report flag: %w", err)
	}
	if reportPath != "" {
		if err := report.Write(afero.NewOsFs(), r, reportPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", reportPath)
	}

	return nil
}

func printCorrections(cmd *cobra.Command, r *report.Report) {
	out := cmd.OutOrStdout()

	if r.Normalization != nil {
		fmt.Fprintf(out, "Normalization: %d rows inserted, %d paragraphs formatted\n",
			r.Normalization.RowsInserted, r.Normalization.ParagraphsFormatted)
	}

	fmt.Fprintf(out, "Corrections: %s applied, %s failed, %d skipped\n",
		color.GreenString("%d", r.Summary.CorrectionsApplied),
		color.RedString("%d", r.Summary.CorrectionsFailed),
		r.Summary.CorrectionsSkipped)

	for _, f := range r.FailedCorrections {
		fmt.Fprintf(out, "  %s violation %d (%s): %s\n",
			color.RedString("failed"), f.ViolationID, f.RuleID, f.Reason)
	}
}
