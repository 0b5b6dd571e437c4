package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/styleguard/styleguard/internal/logging"
	"github.com/styleguard/styleguard/internal/rules"
)

const testRuleSource = `{
  "version": "1.0",
  "rules": [
    {
      "rule_id": "COVER_COMPANY_NAME",
      "category": "cover_page",
      "description": "Company name centered",
      "severity": "high",
      "priority": 1,
      "location": {"row_from_top": 1},
      "validation": {"alignment": "center"},
      "correction_action": {"type": "apply_alignment", "properties": {"alignment": "center"}}
    },
    {
      "rule_id": "TABLE_ROW_HEIGHT",
      "category": "table_structure",
      "severity": "medium",
      "location": {"table": 0, "row_from_top": "all"},
      "validation": {"row_height": 0.37},
      "correction_action": {"type": "apply_table_row_height", "properties": {"row_height": 0.37}}
    }
  ]
}`

// newRulesCommand builds a command wired like a subcommand under the root,
// with the rules flag pointing at a throwaway copy of the test source.
func newRulesCommand(t *testing.T, runE func(*cobra.Command, []string) error) (*cobra.Command, *bytes.Buffer, string) {
	t.Helper()
	logging.InitTest()

	rulesPath := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(rulesPath, []byte(testRuleSource), 0o644))

	cmd := &cobra.Command{RunE: runE}
	cmd.Flags().String("rules", rulesPath, "")

	var out bytes.Buffer
	cmd.SetOut(&out)
	return cmd, &out, rulesPath
}

func TestRulesList(t *testing.T) {
	t.Parallel()

	cmd, out, _ := newRulesCommand(t, runRulesList)
	require.NoError(t, runRulesList(cmd, nil))

	output := out.String()
	require.Contains(t, output, "2 rules (2 enabled, 0 disabled)")
	require.Contains(t, output, "1. ")
	require.Contains(t, output, "COVER_COMPANY_NAME")
	require.Contains(t, output, "TABLE_ROW_HEIGHT")
	require.Contains(t, output, "priority 1")
}

func TestRulesDisablePersists(t *testing.T) {
	t.Parallel()

	cmd, out, rulesPath := newRulesCommand(t, nil)
	require.NoError(t, setRuleEnabled(cmd, "COVER_COMPANY_NAME", false))
	require.Contains(t, out.String(), "COVER_COMPANY_NAME disabled")

	store := rules.New(afero.NewOsFs(), rulesPath, rules.DefaultTTL)
	require.NoError(t, store.Load())
	require.False(t, store.ByID("COVER_COMPANY_NAME").Enabled)
}

func TestRulesEnableUnknown(t *testing.T) {
	t.Parallel()

	cmd, _, _ := newRulesCommand(t, nil)
	err := setRuleEnabled(cmd, "NO_SUCH_RULE", true)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
}

type scriptedPrompter struct {
	answers []string
}

func (p *scriptedPrompter) Input(string) (string, error) {
	if len(p.answers) == 0 {
		return "", nil
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

func (*scriptedPrompter) Close() error { return nil }

func TestRulesToggle(t *testing.T) {
	t.Parallel()

	cmd, out, rulesPath := newRulesCommand(t, nil)
	p := &scriptedPrompter{answers: []string{"y", "n"}}

	require.NoError(t, runRulesToggle(cmd, p))
	require.Contains(t, out.String(), "Changes saved")

	store := rules.New(afero.NewOsFs(), rulesPath, rules.DefaultTTL)
	require.NoError(t, store.Load())
	require.False(t, store.ByID("COVER_COMPANY_NAME").Enabled)
	require.True(t, store.ByID("TABLE_ROW_HEIGHT").Enabled)
}

func TestRulesToggleNoChanges(t *testing.T) {
	t.Parallel()

	cmd, out, _ := newRulesCommand(t, nil)
	p := &scriptedPrompter{answers: []string{"n", "n"}}

	require.NoError(t, runRulesToggle(cmd, p))
	require.Contains(t, out.String(), "No changes")
}

func TestDescribeLocation(t *testing.T) {
	t.Parallel()

	table := 0
	row := 2
	column := 1

	tests := []struct {
		name string
		loc  rules.Location
		want string
	}{
		{name: "paragraph selector", loc: rules.Location{RowFromTop: "1-3"}, want: "paragraphs 1-3"},
		{name: "table cell", loc: rules.Location{Table: &table, Row: &row, Column: &column}, want: "table 0, row 2, column 1"},
		{name: "table with selector", loc: rules.Location{Table: &table, RowFromTop: "all"}, want: "table 0, rows all"},
		{name: "empty", loc: rules.Location{}, want: "unspecified"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tt.want, describeLocation(tt.loc))
		})
	}
}

func TestRootCommandWiring(t *testing.T) {
	t.Parallel()

	root := createRootCommand()
	require.NotNil(t, root.PersistentFlags().Lookup("rules"))
	require.NotNil(t, root.PersistentFlags().Lookup("log-level"))

	names := make(map[string]bool)
	for _, sub := range root.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"check", "fix", "rules", "history"} {
		require.True(t, names[want], "missing subcommand %s", want)
	}
}
