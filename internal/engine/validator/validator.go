// Package validator checks a document tree against the enabled rules and
// emits violations with well-defined default and absence semantics.
package validator

import (
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/styleguard/styleguard/internal/docx"
	"github.com/styleguard/styleguard/internal/engine/locator"
	"github.com/styleguard/styleguard/internal/rules"
)

// Tolerances for table measurements, in centimeters.
const (
	RowHeightTolerance   = 0.05
	ColumnWidthTolerance = 0.1
)

// Defaults applied when a table rule omits its expected measurement.
const (
	defaultRowHeightCM   = 0.37
	defaultColumnWidthCM = 2.3
)

// valueColumnCount is how many trailing columns a width rule inspects; the
// rightmost columns are assumed to hold values.
const valueColumnCount = 3

// Table rules carry heuristics specific to one rule id rather than a generic
// schema, so the table dispatcher keys on these.
const (
	RuleTableRowHeight    = "TABLE_ROW_HEIGHT"
	RuleValueColumnWidth  = "TABLE_VALUE_COLUMN_WIDTH"
	RuleCurrentPeriodBold = "BALANCE_SHEET_CURRENT_PERIOD_BOLD"
)

// ComparisonPolicy controls how absent formatting compares against expected
// values. The default treats an absent bold flag as false, which over-reports
// against bold:false expectations and is intentionally debatable; strict
// tri-state never matches absent against anything.
type ComparisonPolicy struct {
	BoldAbsentIsFalse bool
}

// DefaultPolicy returns the comparison policy the original rule sets were
// written against.
func DefaultPolicy() ComparisonPolicy {
	return ComparisonPolicy{BoldAbsentIsFalse: true}
}

// Validator evaluates enabled rules against a document. Violation ids are
// assigned from a counter reset at the start of each Validate call.
type Validator struct {
	store      *rules.Store
	policy     ComparisonPolicy
	violations []*Violation
	counter    int
}

// New creates a validator over the given store using the default comparison
// policy.
func New(store *rules.Store) *Validator {
	return &Validator{store: store, policy: DefaultPolicy()}
}

// NewWithPolicy creates a validator with an explicit comparison policy.
func NewWithPolicy(store *rules.Store, policy ComparisonPolicy) *Validator {
	return &Validator{store: store, policy: policy}
}

// Validate runs every enabled rule against the document and returns the
// violations found. A failure inside one rule is logged and isolated; it
// never aborts the pass.
func (v *Validator) Validate(doc *docx.Document) ([]*Violation, error) {
	v.violations = nil
	v.counter = 0

	if _, err := v.store.All(false); err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	enabled := v.store.Enabled()
	log.Info().Int("rules", len(enabled)).Msg("validation started")

	for _, rule := range enabled {
		v.evaluateRule(doc, rule)
	}

	log.Info().Int("violations", len(v.violations)).Msg("validation complete")
	return v.violations, nil
}

// evaluateRule dispatches one rule by category, recovering from any panic so
// a malformed or incompatible rule cannot take down the whole pass.
func (v *Validator) evaluateRule(doc *docx.Document, rule *rules.Rule) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("rule_id", rule.ID).Any("panic", r).Msg("rule evaluation failed")
		}
	}()

	switch rule.Category {
	case "cover_page":
		v.checkParagraphRule(doc, rule)
	case "table_structure", "table_formatting":
		v.checkTableRule(doc, rule)
	default:
		log.Debug().Str("rule_id", rule.ID).Str("category", rule.Category).Msg("skipping unknown category")
	}
}

// checkParagraphRule resolves the rule's selector and checks each paragraph.
func (v *Validator) checkParagraphRule(doc *docx.Document, rule *rules.Rule) {
	indices, err := locator.Resolve(rule.Location.RowFromTop, len(doc.Paragraphs))
	if err != nil {
		log.Warn().Str("rule_id", rule.ID).Err(err).Msg("skipping rule with unresolvable location")
		return
	}

	for _, i := range indices {
		v.checkParagraph(doc.Paragraphs[i], i, rule)
	}
}

// propertyDiff is one mismatched key, kept in check order so generated
// messages are deterministic.
type propertyDiff struct {
	key      string
	expected any
	actual   any
}

// checkParagraph runs every declared sub-check against one paragraph and
// records at most one violation aggregating all mismatches.
func (v *Validator) checkParagraph(para *docx.Paragraph, index int, rule *rules.Rule) {
	val := rule.Validation
	expected := make(map[string]any)
	actual := make(map[string]any)
	var diffs []propertyDiff

	if val.IsBlank != nil {
		actualBlank := para.IsBlank()
		expected["is_blank"] = *val.IsBlank
		actual["is_blank"] = actualBlank

		// A paragraph expected blank and actually blank is exempt from
		// font and alignment scrutiny.
		if *val.IsBlank && actualBlank {
			return
		}
		if *val.IsBlank != actualBlank {
			diffs = append(diffs, propertyDiff{"is_blank", *val.IsBlank, actualBlank})
		}
	}

	if val.Alignment != "" {
		expectedAlign := docx.ParseAlignment(val.Alignment)
		actualAlign := para.Alignment.Normalize()
		expected["alignment"] = string(expectedAlign)
		actual["alignment"] = string(actualAlign)
		if expectedAlign != actualAlign {
			diffs = append(diffs, propertyDiff{"alignment", string(expectedAlign), string(actualAlign)})
		}
	}

	if val.Bold != nil {
		actualBold := paragraphBold(para)
		expected["bold"] = *val.Bold
		if actualBold == nil {
			actual["bold"] = nil
		} else {
			actual["bold"] = *actualBold
		}
		if v.boldMismatch(*val.Bold, actualBold) {
			diffs = append(diffs, propertyDiff{"bold", *val.Bold, actual["bold"]})
		}
	}

	// Font checks apply to the first run only and flag explicit mismatches
	// only; a paragraph with no runs is exempt from them entirely.
	if len(para.Runs) > 0 {
		run := para.Runs[0]
		if val.FontName != "" {
			expected["font_name"] = val.FontName
			if run.FontName == "" {
				actual["font_name"] = "default"
			} else {
				actual["font_name"] = run.FontName
				if run.FontName != val.FontName {
					diffs = append(diffs, propertyDiff{"font_name", val.FontName, run.FontName})
				}
			}
		}
		if val.FontSize != nil {
			expected["font_size"] = *val.FontSize
			if run.FontSize == nil {
				actual["font_size"] = nil
			} else {
				actual["font_size"] = *run.FontSize
				if *run.FontSize != *val.FontSize {
					diffs = append(diffs, propertyDiff{"font_size", *val.FontSize, *run.FontSize})
				}
			}
		}
	} else {
		if val.FontName != "" {
			expected["font_name"] = val.FontName
			actual["font_name"] = nil
		}
		if val.FontSize != nil {
			expected["font_size"] = *val.FontSize
			actual["font_size"] = nil
		}
	}

	if len(diffs) == 0 {
		return
	}

	v.add(rule, Location{Paragraph: intPtr(index), Row: intPtr(index + 1)},
		expected, actual, diffMessage(index, diffs))
}

// boldMismatch applies the comparison policy to the tri-state actual value.
func (v *Validator) boldMismatch(expected bool, actual *bool) bool {
	if actual == nil {
		if v.policy.BoldAbsentIsFalse {
			return expected
		}
		return false
	}
	return *actual != expected
}

// paragraphBold returns the first run's bold flag, or nil when the paragraph
// has no runs or the run never declared one.
func paragraphBold(para *docx.Paragraph) *bool {
	if len(para.Runs) == 0 {
		return nil
	}
	return para.Runs[0].Bold
}

// checkTableRule dispatches by rule id; each table rule carries its own
// heuristic rather than sharing a generic schema.
func (v *Validator) checkTableRule(doc *docx.Document, rule *rules.Rule) {
	if len(doc.Tables) == 0 {
		return
	}

	switch rule.ID {
	case RuleTableRowHeight:
		v.checkRowHeights(doc, rule)
	case RuleValueColumnWidth:
		v.checkColumnWidths(doc, rule)
	case RuleCurrentPeriodBold:
		v.checkCurrentPeriodBold(doc, rule)
	default:
		log.Debug().Str("rule_id", rule.ID).Msg("skipping unknown table rule")
	}
}

func (v *Validator) checkRowHeights(doc *docx.Document, rule *rules.Rule) {
	expectedCM := defaultRowHeightCM
	if rule.Validation.RowHeight != nil {
		expectedCM = *rule.Validation.RowHeight
	}

	for ti, table := range doc.Tables {
		for ri, row := range table.Rows {
			if !row.Height.IsSet() {
				continue
			}
			actualCM := row.Height.Centimeters()
			if math.Abs(actualCM-expectedCM) <= RowHeightTolerance {
				continue
			}
			v.add(rule, Location{Table: intPtr(ti), Row: intPtr(ri)},
				map[string]any{"row_height_cm": expectedCM},
				map[string]any{"row_height_cm": round2(actualCM)},
				fmt.Sprintf("Table %d Row %d: height %.2fcm (expected %gcm)", ti, ri, actualCM, expectedCM))
		}
	}
}

func (v *Validator) checkColumnWidths(doc *docx.Document, rule *rules.Rule) {
	expectedCM := defaultColumnWidthCM
	if rule.Validation.ColumnWidth != nil {
		expectedCM = *rule.Validation.ColumnWidth
	}

	for ti, table := range doc.Tables {
		numCols := len(table.Columns)
		start := numCols - valueColumnCount
		if start < 0 {
			start = 0
		}
		for ci := start; ci < numCols; ci++ {
			col := table.Columns[ci]
			if !col.Width.IsSet() {
				continue
			}
			actualCM := col.Width.Centimeters()
			if math.Abs(actualCM-expectedCM) <= ColumnWidthTolerance {
				continue
			}
			v.add(rule, Location{Table: intPtr(ti), Column: intPtr(ci)},
				map[string]any{"column_width_cm": expectedCM},
				map[string]any{"column_width_cm": round2(actualCM)},
				fmt.Sprintf("Table %d Column %d: width %.2fcm (expected %gcm)", ti, ci, actualCM, expectedCM))
		}
	}
}

// checkCurrentPeriodBold flags non-bold value runs in the last cell of every
// non-header row. One violation per row is sufficient.
func (v *Validator) checkCurrentPeriodBold(doc *docx.Document, rule *rules.Rule) {
	for ti, table := range doc.Tables {
		for ri := 1; ri < len(table.Rows); ri++ {
			row := table.Rows[ri]
			if len(row.Cells) == 0 {
				continue
			}
			lastCell := row.Cells[len(row.Cells)-1]
			v.flagNonBoldValueRun(lastCell, rule, ti, ri, len(row.Cells)-1)
		}
	}
}

func (v *Validator) flagNonBoldValueRun(cell *docx.Cell, rule *rules.Rule, table, row, column int) {
	for _, para := range cell.Paragraphs {
		for _, run := range para.Runs {
			if !containsValueText(run.Text) {
				continue
			}
			if run.Bold != nil && *run.Bold {
				continue
			}
			v.add(rule, Location{Table: intPtr(table), Row: intPtr(row), Column: intPtr(column)},
				map[string]any{"bold": true},
				map[string]any{"bold": false},
				fmt.Sprintf("Table %d Row %d: current period values should be bold", table, row))
			return
		}
	}
}

// containsValueText reports whether the text looks like a monetary value:
// any digit or currency symbol qualifies.
func containsValueText(text string) bool {
	return strings.ContainsFunc(text, func(r rune) bool {
		return (r >= '0' && r <= '9') || r == '$'
	})
}

// add records one violation with the next monotonically increasing id.
func (v *Validator) add(rule *rules.Rule, loc Location, expected, actual map[string]any, message string) {
	v.counter++
	v.violations = append(v.violations, &Violation{
		ViolationID:      v.counter,
		RuleID:           rule.ID,
		RuleName:         rule.Name(),
		Severity:         rule.Severity,
		Location:         loc,
		Expected:         expected,
		Actual:           actual,
		Message:          message,
		CorrectionStatus: StatusPending,
	})
	log.Debug().Int("violation_id", v.counter).Str("rule_id", rule.ID).Msg("violation recorded")
}

func diffMessage(index int, diffs []propertyDiff) string {
	parts := make([]string, 0, len(diffs))
	for _, d := range diffs {
		parts = append(parts, fmt.Sprintf("%s: expected '%v', got '%v'", d.key, d.expected, d.actual))
	}
	return fmt.Sprintf("Row %d: %s", index+1, strings.Join(parts, "; "))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// BySeverity filters the last pass's violations by severity.
func (v *Validator) BySeverity(severity rules.Severity) []*Violation {
	var out []*Violation
	for _, viol := range v.violations {
		if viol.Severity == severity {
			out = append(out, viol)
		}
	}
	return out
}

// ByCategory filters the last pass's violations by their rule's category.
func (v *Validator) ByCategory(category string) []*Violation {
	ids := make(map[string]bool)
	for _, r := range v.store.ByCategory(category) {
		ids[r.ID] = true
	}
	var out []*Violation
	for _, viol := range v.violations {
		if ids[viol.RuleID] {
			out = append(out, viol)
		}
	}
	return out
}

// Summary totals the last pass's violations by severity and category.
type Summary struct {
	ByCategory map[string]int `json:"by_category"`
	Total      int            `json:"total_violations"`
	High       int            `json:"high_severity"`
	Medium     int            `json:"medium_severity"`
	Low        int            `json:"low_severity"`
}

// Summarize builds a Summary for the last pass.
func (v *Validator) Summarize() Summary {
	s := Summary{Total: len(v.violations), ByCategory: make(map[string]int)}
	for _, viol := range v.violations {
		switch viol.Severity {
		case rules.SeverityHigh:
			s.High++
		case rules.SeverityMedium:
			s.Medium++
		case rules.SeverityLow:
			s.Low++
		}
		if rule := v.store.ByID(viol.RuleID); rule != nil {
			s.ByCategory[rule.Category]++
		}
	}
	return s
}
