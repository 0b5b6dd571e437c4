package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/styleguard/styleguard/internal/report"
)

// createCheckCommand creates the command that validates a document without
// modifying it.
func createCheckCommand() *cobra.Command {
	checkCmd := &cobra.Command{
		Use:   "check <document>",
		Short: "Validate a document against the style guide",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}

	checkCmd.Flags().String("report", "", "Write the full JSON report to this path")

	return checkCmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	p := newPipeline(cmd.Context(), store)
	r, err := p.Check(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	printSummary(cmd, r)

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

// printSummary prints the human-readable run summary shared by check and fix.
func printSummary(cmd *cobra.Command, r *report.Report) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Document: %s\n", r.DocumentName)
	fmt.Fprintf(out, "Rules checked: %d\n", r.Summary.RulesChecked)

	if r.Summary.TotalViolations == 0 {
		fmt.Fprintln(out, color.GreenString("No violations found"))
		return
	}

	fmt.Fprintf(out, "%s (%d high, %d medium, %d low)\n",
		color.YellowString("%d violations found", r.Summary.TotalViolations),
		r.Summary.HighSeverity, r.Summary.MediumSeverity, r.Summary.LowSeverity)

	for _, v := range r.Violations {
		severity := color.YellowString(string(v.Severity))
		if v.Severity == "high" {
			severity = color.RedString(string(v.Severity))
		}
		fmt.Fprintf(out, "  [%s] %s: %s\n", severity, v.RuleID, v.Message)
	}
}
