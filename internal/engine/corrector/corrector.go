// Package corrector applies corrections to a document: either rule-driven,
// consuming the validator's violations in priority order, or structurally via
// the template normalizer. Each correction attempt is isolated; one failure
// never aborts the batch.
package corrector

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/styleguard/styleguard/internal/docx"
	"github.com/styleguard/styleguard/internal/engine/locator"
	"github.com/styleguard/styleguard/internal/engine/validator"
	"github.com/styleguard/styleguard/internal/rules"
)

// ActionType is the closed set of correction actions. An unrecognized type
// is a handled case (skipped), never a failure.
type ActionType string

const (
	ActionApplyFormatting          ActionType = "apply_formatting"
	ActionApplyAlignment           ActionType = "apply_alignment"
	ActionCoverPageCompanyFormat   ActionType = "apply_cover_page_company_formatting"
	ActionEnsureBlankRow           ActionType = "ensure_blank_row"
	ActionApplyTableRowHeight      ActionType = "apply_table_row_height"
	ActionApplyColumnWidth         ActionType = "apply_column_width"
	ActionApplyBoldToCurrentPeriod ActionType = "apply_bold_to_current_period"
)

// Result records the outcome of one correction attempt, 1:1 with a violation
// on the rule-driven path.
type Result struct {
	Timestamp    time.Time                  `json:"timestamp"`
	ErrorDetails *string                    `json:"error_details"`
	RuleID       string                     `json:"rule_id"`
	Message      string                     `json:"message"`
	Status       validator.CorrectionStatus `json:"status"`
	ViolationID  int                        `json:"violation_id"`
}

// Corrector applies rule-driven corrections and persists the mutated
// document exactly once per Correct call.
type Corrector struct {
	fs    afero.Fs
	store *rules.Store
}

// New creates a corrector backed by the given rule store.
func New(fs afero.Fs, store *rules.Store) *Corrector {
	return &Corrector{fs: fs, store: store}
}

// Correct applies one correction per violation in non-decreasing rule
// priority (stable on ties, preserving discovery order), then saves the
// document to outputPath. Per-violation failures yield failed results and
// the batch continues; only a save failure is fatal.
func (c *Corrector) Correct(doc *docx.Document, violations []*validator.Violation, outputPath string) ([]*Result, error) {
	log.Info().Int("violations", len(violations)).Msg("applying corrections")

	ordered := make([]*validator.Violation, len(violations))
	copy(ordered, violations)
	sort.SliceStable(ordered, func(i, j int) bool {
		return c.priorityOf(ordered[i].RuleID) < c.priorityOf(ordered[j].RuleID)
	})

	results := make([]*Result, 0, len(ordered))
	for _, violation := range ordered {
		result := c.applyOne(doc, violation)
		violation.CorrectionStatus = result.Status
		ts := result.Timestamp
		violation.CorrectionTimestamp = &ts
		results = append(results, result)
	}

	if err := docx.Save(c.fs, doc, outputPath); err != nil {
		return nil, fmt.Errorf("failed to persist corrected document: %w", err)
	}

	stats := Tally(results)
	log.Info().
		Int("applied", stats.Applied).
		Int("failed", stats.Failed).
		Int("skipped", stats.Skipped).
		Str("output", outputPath).
		Msg("corrections complete")
	return results, nil
}

// priorityOf resolves a rule's correction priority, defaulting when the rule
// is unknown or undeclared.
func (c *Corrector) priorityOf(ruleID string) int {
	if rule := c.store.ByID(ruleID); rule != nil {
		return rule.Priority
	}
	return rules.DefaultPriority
}

// applyOne dispatches a single violation's correction action.
func (c *Corrector) applyOne(doc *docx.Document, violation *validator.Violation) *Result {
	result := &Result{
		ViolationID: violation.ViolationID,
		RuleID:      violation.RuleID,
		Timestamp:   time.Now(),
	}

	rule := c.store.ByID(violation.RuleID)
	if rule == nil {
		result.Status = validator.StatusFailed
		result.Message = "rule not found"
		return result
	}

	action := rule.CorrectionAction
	var err error
	switch ActionType(action.Type) {
	case ActionApplyFormatting, ActionCoverPageCompanyFormat:
		err = applyFormatting(doc, violation, &action.Properties)
	case ActionApplyAlignment:
		err = applyAlignment(doc, violation, &action.Properties)
	case ActionEnsureBlankRow:
		err = ensureBlankRow(doc, violation, &action.Properties)
	case ActionApplyTableRowHeight:
		err = applyTableRowHeight(doc, violation, &action.Properties)
	case ActionApplyColumnWidth:
		err = applyColumnWidth(doc, violation, &action.Properties)
	case ActionApplyBoldToCurrentPeriod:
		err = applyBoldToCurrentPeriod(doc, violation)
	default:
		result.Status = validator.StatusSkipped
		result.Message = fmt.Sprintf("unknown action type: %s", action.Type)
		return result
	}

	if err != nil {
		log.Error().Str("rule_id", violation.RuleID).Err(err).Msg("correction failed")
		details := err.Error()
		result.Status = validator.StatusFailed
		result.Message = fmt.Sprintf("failed to apply %s", action.Type)
		result.ErrorDetails = &details
		return result
	}

	result.Status = validator.StatusApplied
	result.Message = fmt.Sprintf("applied %s", action.Type)
	return result
}

// paragraphAt resolves a violation's paragraph coordinate, with bounds
// re-checked: resolution-time coordinates may have gone stale.
func paragraphAt(doc *docx.Document, violation *validator.Violation) (*docx.Paragraph, error) {
	if violation.Location.Paragraph == nil {
		return nil, fmt.Errorf("%w: violation carries no paragraph index", locator.ErrOutOfBounds)
	}
	i := *violation.Location.Paragraph
	if err := locator.CheckIndex(i, len(doc.Paragraphs)); err != nil {
		return nil, fmt.Errorf("%w: paragraph %d of %d", err, i, len(doc.Paragraphs))
	}
	return doc.Paragraphs[i], nil
}

// applyFormatting sets alignment and run formatting from the action's
// property map. Only declared properties are touched.
func applyFormatting(doc *docx.Document, violation *validator.Violation, props *rules.ActionProperties) error {
	para, err := paragraphAt(doc, violation)
	if err != nil {
		return err
	}

	if props.Alignment != "" {
		para.Alignment = docx.ParseAlignment(props.Alignment)
	}
	for _, run := range para.Runs {
		formatRun(run, props)
	}
	return nil
}

func formatRun(run *docx.Run, props *rules.ActionProperties) {
	if props.FontName != "" {
		run.FontName = props.FontName
	}
	if props.FontSize != nil {
		size := *props.FontSize
		run.FontSize = &size
	}
	if props.Bold != nil {
		bold := *props.Bold
		run.Bold = &bold
	}
	if props.Italic != nil {
		italic := *props.Italic
		run.Italic = &italic
	}
}

func applyAlignment(doc *docx.Document, violation *validator.Violation, props *rules.ActionProperties) error {
	para, err := paragraphAt(doc, violation)
	if err != nil {
		return err
	}
	if props.Alignment != "" {
		para.Alignment = docx.ParseAlignment(props.Alignment)
	}
	return nil
}

// ensureBlankRow clears the target paragraph and leaves one empty run
// carrying the action's declared font, so later typing inherits it.
func ensureBlankRow(doc *docx.Document, violation *validator.Violation, props *rules.ActionProperties) error {
	para, err := paragraphAt(doc, violation)
	if err != nil {
		return err
	}

	para.Clear()
	run := para.AddRun("")
	if props.FontName != "" {
		run.FontName = props.FontName
	}
	if props.FontSize != nil {
		size := *props.FontSize
		run.FontSize = &size
	}
	return nil
}

func tableAt(doc *docx.Document, violation *validator.Violation) (*docx.Table, error) {
	if violation.Location.Table == nil {
		return nil, fmt.Errorf("%w: violation carries no table index", locator.ErrOutOfBounds)
	}
	i := *violation.Location.Table
	if err := locator.CheckIndex(i, len(doc.Tables)); err != nil {
		return nil, fmt.Errorf("%w: table %d of %d", err, i, len(doc.Tables))
	}
	return doc.Tables[i], nil
}

// applyTableRowHeight converts the declared centimeter height to the
// document's native unit and sets it on the resolved row.
func applyTableRowHeight(doc *docx.Document, violation *validator.Violation, props *rules.ActionProperties) error {
	table, err := tableAt(doc, violation)
	if err != nil {
		return err
	}
	if violation.Location.Row == nil {
		return fmt.Errorf("%w: violation carries no row index", locator.ErrOutOfBounds)
	}
	ri := *violation.Location.Row
	if err := locator.CheckIndex(ri, len(table.Rows)); err != nil {
		return fmt.Errorf("%w: row %d of %d", err, ri, len(table.Rows))
	}

	if props.RowHeight != nil {
		table.Rows[ri].Height = docx.Centimeters(*props.RowHeight)
	}
	return nil
}

// applyColumnWidth sets the converted width on the resolved column and on
// every cell in that column for consistency.
func applyColumnWidth(doc *docx.Document, violation *validator.Violation, props *rules.ActionProperties) error {
	table, err := tableAt(doc, violation)
	if err != nil {
		return err
	}
	if violation.Location.Column == nil {
		return fmt.Errorf("%w: violation carries no column index", locator.ErrOutOfBounds)
	}
	ci := *violation.Location.Column
	if err := locator.CheckIndex(ci, len(table.Columns)); err != nil {
		return fmt.Errorf("%w: column %d of %d", err, ci, len(table.Columns))
	}

	if props.ColumnWidth == nil {
		return nil
	}
	width := docx.Centimeters(*props.ColumnWidth)
	table.Columns[ci].Width = width
	for _, row := range table.Rows {
		if ci < len(row.Cells) {
			row.Cells[ci].Width = width
		}
	}
	return nil
}

// applyBoldToCurrentPeriod forces bold on every run in every paragraph of
// the resolved cell.
func applyBoldToCurrentPeriod(doc *docx.Document, violation *validator.Violation) error {
	table, err := tableAt(doc, violation)
	if err != nil {
		return err
	}
	if violation.Location.Row == nil || violation.Location.Column == nil {
		return fmt.Errorf("%w: violation carries incomplete cell coordinates", locator.ErrOutOfBounds)
	}
	ri, ci := *violation.Location.Row, *violation.Location.Column
	if err := locator.CheckIndex(ri, len(table.Rows)); err != nil {
		return fmt.Errorf("%w: row %d of %d", err, ri, len(table.Rows))
	}
	row := table.Rows[ri]
	if err := locator.CheckIndex(ci, len(row.Cells)); err != nil {
		return fmt.Errorf("%w: column %d of %d", err, ci, len(row.Cells))
	}

	bold := true
	for _, para := range row.Cells[ci].Paragraphs {
		for _, run := range para.Runs {
			b := bold
			run.Bold = &b
		}
	}
	return nil
}

// Stats totals correction results by status.
type Stats struct {
	Total   int `json:"total"`
	Applied int `json:"applied"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Tally computes Stats over a batch of results.
func Tally(results []*Result) Stats {
	s := Stats{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case validator.StatusApplied:
			s.Applied++
		case validator.StatusFailed:
			s.Failed++
		case validator.StatusSkipped:
			s.Skipped++
		}
	}
	return s
}
