package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/styleguard/styleguard/internal/prompt"
	"github.com/styleguard/styleguard/internal/rules"
)

// createRulesCommand creates the rules management command tree.
func createRulesCommand() *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and manage style guide rules",
		RunE:  runRulesList,
	}

	rulesCmd.AddCommand(
		createRulesShowCommand(),
		createRulesEnableCommand(),
		createRulesDisableCommand(),
		createRulesToggleCommand(),
	)

	return rulesCmd
}

func runRulesList(cmd *cobra.Command, _ []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	all, err := store.All(false)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	counts := store.Counts()
	fmt.Fprintf(out, "Rule set version %s: %d rules (%d enabled, %d disabled)\n",
		store.Version(), counts.Total, counts.Enabled, counts.Disabled)

	for i, r := range all {
		state := color.GreenString("enabled")
		if !r.Enabled {
			state = color.RedString("disabled")
		}
		fmt.Fprintf(out, "%d. [%s] %s (%s, %s, priority %d)\n",
			i+1, state, r.ID, r.Category, r.Severity, r.Priority)
	}

	return nil
}

func createRulesShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <rule-id>",
		Short: "Show one rule in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}

			rule := store.ByID(args[0])
			if rule == nil {
				return fmt.Errorf("rule %q not found", args[0])
			}

			printRule(cmd, rule)
			return nil
		},
	}
}

func printRule(cmd *cobra.Command, r *rules.Rule) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "ID:          %s\n", r.ID)
	fmt.Fprintf(out, "Name:        %s\n", r.Name())
	fmt.Fprintf(out, "Category:    %s\n", r.Category)
	fmt.Fprintf(out, "Severity:    %s\n", r.Severity)
	fmt.Fprintf(out, "Priority:    %d\n", r.Priority)
	fmt.Fprintf(out, "Enabled:     %t\n", r.Enabled)
	fmt.Fprintf(out, "Location:    %s\n", describeLocation(r.Location))
	if r.CorrectionAction != nil {
		fmt.Fprintf(out, "Correction:  %s\n", r.CorrectionAction.Type)
	}
}

func describeLocation(loc rules.Location) string {
	if loc.Table != nil {
		parts := []string{fmt.Sprintf("table %d", *loc.Table)}
		if loc.Row != nil {
			parts = append(parts, fmt.Sprintf("row %d", *loc.Row))
		}
		if loc.Column != nil {
			parts = append(parts, fmt.Sprintf("column %d", *loc.Column))
		}
		if loc.RowFromTop != "" {
			parts = append(parts, fmt.Sprintf("rows %s", loc.RowFromTop))
		}
		return strings.Join(parts, ", ")
	}
	if loc.RowFromTop != "" {
		return fmt.Sprintf("paragraphs %s", loc.RowFromTop)
	}
	return "unspecified"
}

func createRulesEnableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "enable <rule-id>",
		Short: "Enable a rule and persist the change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setRuleEnabled(cmd, args[0], true)
		},
	}
}

func createRulesDisableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disable <rule-id>",
		Short: "Disable a rule and persist the change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setRuleEnabled(cmd, args[0], false)
		},
	}
}

func setRuleEnabled(cmd *cobra.Command, id string, enabled bool) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	changed := store.Enable(id)
	if !enabled {
		changed = store.Disable(id)
	}
	if !changed {
		return fmt.Errorf("rule %q not found", id)
	}

	if err := store.Save(); err != nil {
		return err
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Rule %s %s\n", id, state)
	return nil
}

func createRulesToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Interactively enable or disable rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := prompt.NewLinerPrompter()
			defer func() { _ = p.Close() }()
			return runRulesToggle(cmd, p)
		},
	}
}

// runRulesToggle walks every rule and asks whether to flip its state. Changes
// are saved once at the end.
func runRulesToggle(cmd *cobra.Command, p prompt.Prompter) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	all, err := store.All(false)
	if err != nil {
		return err
	}

	changed := false
	for _, r := range all {
		state := "enabled"
		if !r.Enabled {
			state = "disabled"
		}
		flip, err := prompt.Confirm(p, fmt.Sprintf("%s is %s. Toggle?", r.ID, state))
		if err != nil {
			return err
		}
		if !flip {
			continue
		}
		if r.Enabled {
			store.Disable(r.ID)
		} else {
			store.Enable(r.ID)
		}
		changed = true
	}

	if !changed {
		fmt.Fprintln(cmd.OutOrStdout(), "No changes")
		return nil
	}

	if err := store.Save(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Changes saved")
	return nil
}
