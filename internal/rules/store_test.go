package rules

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/styleguard/styleguard/internal/logging"
)

const validSource = `{
  "version": "1.0",
  "metadata": {"author": "style team"},
  "categories": {
    "cover_page": {"description": "Cover page formatting"},
    "table_structure": {"description": "Table dimensions"}
  },
  "rules": [
    {
      "rule_id": "COVER_COMPANY_NAME",
      "category": "cover_page",
      "description": "Company name centered and bold",
      "severity": "high",
      "priority": 1,
      "location": {"row_from_top": 1},
      "validation": {"alignment": "center", "bold": true},
      "correction_action": {
        "type": "apply_formatting",
        "properties": {"alignment": "center", "bold": true}
      }
    },
    {
      "rule_id": "COVER_BLANK_ROW",
      "category": "cover_page",
      "severity": "low",
      "location": {"row_from_top": 2},
      "validation": {"is_blank": true},
      "correction_action": {"type": "ensure_blank_row", "properties": {}}
    },
    {
      "rule_id": "TABLE_ROW_HEIGHT",
      "category": "table_structure",
      "severity": "medium",
      "location": {"row_from_top": "all"},
      "validation": {"row_height": 0.37},
      "correction_action": {
        "type": "apply_table_row_height",
        "properties": {"row_height": 0.37}
      }
    }
  ]
}`

func newTestStore(t *testing.T, source string) *Store {
	t.Helper()
	logging.InitTest()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "rules.json", []byte(source), 0o644))
	return New(fs, "rules.json", DefaultTTL)
}

func TestLoadValidSource(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, validSource)
	require.NoError(t, store.Load())

	all, err := store.All(false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "1.0", store.Version())
	require.Equal(t, []string{"cover_page", "table_structure"}, store.CategoryNames())
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, validSource)
	require.NoError(t, store.Load())

	rule := store.ByID("COVER_BLANK_ROW")
	require.NotNil(t, rule)
	require.Equal(t, DefaultPriority, rule.Priority)
	require.True(t, rule.Enabled)

	explicit := store.ByID("COVER_COMPANY_NAME")
	require.NotNil(t, explicit)
	require.Equal(t, 1, explicit.Priority)
}

func TestLoadDefaultSeverity(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, `{
	  "version": "1.0",
	  "rules": [{
	    "rule_id": "R1",
	    "category": "cover_page",
	    "validation": {"bold": true},
	    "correction_action": {"type": "apply_formatting"}
	  }]
	}`)
	require.NoError(t, store.Load())
	require.Equal(t, SeverityMedium, store.ByID("R1").Severity)
}

func TestLoadMissingRequiredFields(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, `{
	  "version": "1.0",
	  "rules": [{"rule_id": "R1", "category": "cover_page"}]
	}`)

	err := store.Load()
	require.Error(t, err)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	require.NotEmpty(t, schemaErr.Fields)
}

func TestLoadMissingVersion(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, `{"rules": []}`)

	var schemaErr *SchemaError
	require.ErrorAs(t, store.Load(), &schemaErr)
}

func TestLoadDuplicateRuleID(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, `{
	  "version": "1.0",
	  "rules": [
	    {"rule_id": "R1", "category": "c", "validation": {}, "correction_action": {"type": "t"}},
	    {"rule_id": "R1", "category": "c", "validation": {}, "correction_action": {"type": "t"}}
	  ]
	}`)

	var schemaErr *SchemaError
	require.ErrorAs(t, store.Load(), &schemaErr)
	require.Contains(t, schemaErr.Error(), "duplicate rule id")
}

func TestLoadFailureKeepsPreviousRules(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "rules.json", []byte(validSource), 0o644))

	store := New(fs, "rules.json", DefaultTTL)
	require.NoError(t, store.Load())

	require.NoError(t, afero.WriteFile(fs, "rules.json", []byte(`{"rules": []}`), 0o644))
	require.Error(t, store.Load())

	all, err := store.All(false)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestLoadYAMLSource(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	yamlSource := `
version: "1.0"
rules:
  - rule_id: COVER_COMPANY_NAME
    category: cover_page
    severity: high
    location:
      row_from_top: 1
    validation:
      alignment: center
    correction_action:
      type: apply_alignment
      properties:
        alignment: center
`
	require.NoError(t, afero.WriteFile(fs, "rules.yaml", []byte(yamlSource), 0o644))

	store := New(fs, "rules.yaml", DefaultTTL)
	require.NoError(t, store.Load())

	rule := store.ByID("COVER_COMPANY_NAME")
	require.NotNil(t, rule)
	require.Equal(t, Selector("1"), rule.Location.RowFromTop)
	require.Equal(t, "center", rule.Validation.Alignment)
}

func TestCacheTTL(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, validSource)

	current := time.Now()
	store.now = func() time.Time { return current }

	require.NoError(t, store.Load())
	require.True(t, store.CacheValid())

	current = current.Add(30 * time.Minute)
	require.True(t, store.CacheValid())

	current = current.Add(31 * time.Minute)
	require.False(t, store.CacheValid())
}

func TestAllReloadsExpiredCache(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "rules.json", []byte(validSource), 0o644))

	store := New(fs, "rules.json", time.Hour)
	current := time.Now()
	store.now = func() time.Time { return current }

	require.NoError(t, store.Load())
	store.Disable("COVER_BLANK_ROW")

	current = current.Add(2 * time.Hour)
	all, err := store.All(false)
	require.NoError(t, err)
	require.Len(t, all, 3)

	// Reload reads from disk, so the unpersisted flag change is gone.
	require.True(t, store.ByID("COVER_BLANK_ROW").Enabled)
}

func TestByCategoryAndSeverity(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, validSource)
	require.NoError(t, store.Load())

	require.Len(t, store.ByCategory("cover_page"), 2)
	require.Len(t, store.ByCategory("table_structure"), 1)
	require.Empty(t, store.ByCategory("unknown"))

	require.Len(t, store.BySeverity(SeverityHigh), 1)
	require.Len(t, store.BySeverity(SeverityLow), 1)
}

func TestEnableDisable(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, validSource)
	require.NoError(t, store.Load())

	require.True(t, store.Disable("COVER_BLANK_ROW"))
	require.Len(t, store.Enabled(), 2)

	require.True(t, store.Enable("COVER_BLANK_ROW"))
	require.Len(t, store.Enabled(), 3)

	require.False(t, store.Disable("NO_SUCH_RULE"))
}

func TestCounts(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, validSource)
	require.NoError(t, store.Load())
	store.Disable("TABLE_ROW_HEIGHT")

	counts := store.Counts()
	require.Equal(t, 3, counts.Total)
	require.Equal(t, 2, counts.Enabled)
	require.Equal(t, 1, counts.Disabled)
	require.Equal(t, 1, counts.High)
	require.Equal(t, 1, counts.Medium)
	require.Equal(t, 1, counts.Low)
	require.Equal(t, 2, counts.Categories)
}

func TestSavePersistsEnabledChanges(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "rules.json", []byte(validSource), 0o644))

	store := New(fs, "rules.json", DefaultTTL)
	require.NoError(t, store.Load())
	require.True(t, store.Disable("COVER_BLANK_ROW"))
	require.NoError(t, store.Save())

	reloaded := New(fs, "rules.json", DefaultTTL)
	require.NoError(t, reloaded.Load())
	require.False(t, reloaded.ByID("COVER_BLANK_ROW").Enabled)
	require.Equal(t, "1.0", reloaded.Version())
}

func TestRuleName(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, validSource)
	require.NoError(t, store.Load())

	require.Equal(t, "Company name centered and bold", store.ByID("COVER_COMPANY_NAME").Name())
	require.Equal(t, "COVER_BLANK_ROW", store.ByID("COVER_BLANK_ROW").Name())
}

func TestSelectorUnmarshalJSON(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, validSource)
	require.NoError(t, store.Load())

	// Numeric selectors normalize to their string form.
	require.Equal(t, Selector("1"), store.ByID("COVER_COMPANY_NAME").Location.RowFromTop)
	require.Equal(t, Selector("all"), store.ByID("TABLE_ROW_HEIGHT").Location.RowFromTop)
}
