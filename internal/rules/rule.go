// Package rules loads, validates and indexes the declarative style guide
// rules that drive document validation and correction.
package rules

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Severity classifies how serious a rule violation is.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// DefaultPriority is assigned to rules that do not declare one. Lower
// priorities are corrected first.
const DefaultPriority = 999

// Selector is a rule's raw paragraph selector: a 1-based index, an inclusive
// range "start-end", or the sentinel "all". Resolution happens in the
// locator; here it is carried verbatim.
type Selector string

// UnmarshalJSON accepts both numeric and string forms.
func (s *Selector) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*s = Selector(strconv.Itoa(n))
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("selector must be a number or string: %w", err)
	}
	*s = Selector(str)
	return nil
}

// UnmarshalYAML accepts scalar selectors in either form.
func (s *Selector) UnmarshalYAML(value *yaml.Node) error {
	*s = Selector(value.Value)
	return nil
}

// Location is a rule's declarative selector before resolution: either a
// paragraph selector or structured table coordinates.
type Location struct {
	Table      *int     `json:"table,omitempty" yaml:"table,omitempty"`
	Row        *int     `json:"row,omitempty" yaml:"row,omitempty"`
	Column     *int     `json:"column,omitempty" yaml:"column,omitempty"`
	RowFromTop Selector `json:"row_from_top,omitempty" yaml:"row_from_top,omitempty"`
}

// Validation is the expected-property map checked against resolved elements.
// Nil pointers mean the rule does not check that property.
type Validation struct {
	Bold        *bool    `json:"bold,omitempty" yaml:"bold,omitempty"`
	IsBlank     *bool    `json:"is_blank,omitempty" yaml:"is_blank,omitempty"`
	FontSize    *float64 `json:"font_size,omitempty" yaml:"font_size,omitempty"`
	RowHeight   *float64 `json:"row_height,omitempty" yaml:"row_height,omitempty"`
	ColumnWidth *float64 `json:"column_width,omitempty" yaml:"column_width,omitempty"`
	Alignment   string   `json:"alignment,omitempty" yaml:"alignment,omitempty"`
	FontName    string   `json:"font_name,omitempty" yaml:"font_name,omitempty"`
}

// ActionProperties are the values a correction action writes into the
// document. Only properties present in the map are touched.
type ActionProperties struct {
	Bold        *bool    `json:"bold,omitempty" yaml:"bold,omitempty"`
	Italic      *bool    `json:"italic,omitempty" yaml:"italic,omitempty"`
	FontSize    *float64 `json:"font_size,omitempty" yaml:"font_size,omitempty"`
	RowHeight   *float64 `json:"row_height,omitempty" yaml:"row_height,omitempty"`
	ColumnWidth *float64 `json:"column_width,omitempty" yaml:"column_width,omitempty"`
	Alignment   string   `json:"alignment,omitempty" yaml:"alignment,omitempty"`
	FontName    string   `json:"font_name,omitempty" yaml:"font_name,omitempty"`
}

// CorrectionAction names the fix for a rule's violations. Type values are
// interpreted by the corrector; an unrecognized type is skipped there, not
// rejected here.
type CorrectionAction struct {
	Type       string           `json:"type" yaml:"type"`
	Properties ActionProperties `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Rule is one declarative unit: where to look, what to expect, how to fix.
// Immutable after load except Enabled.
type Rule struct {
	Validation       *Validation       `json:"validation" yaml:"validation"`
	CorrectionAction *CorrectionAction `json:"correction_action" yaml:"correction_action"`
	ID               string            `json:"rule_id" yaml:"rule_id"`
	Category         string            `json:"category" yaml:"category"`
	Description      string            `json:"description,omitempty" yaml:"description,omitempty"`
	Severity         Severity          `json:"severity,omitempty" yaml:"severity,omitempty"`
	Location         Location          `json:"location" yaml:"location"`
	Priority         int               `json:"priority" yaml:"priority"`
	Enabled          bool              `json:"enabled" yaml:"enabled"`
}

// Name returns the rule's human-readable name for reporting: the description
// when present, otherwise the id.
func (r *Rule) Name() string {
	if r.Description != "" {
		return r.Description
	}
	return r.ID
}

// ruleDoc is the wire form of a rule. Pointer fields distinguish absent
// values so defaults can be applied by the constructor.
type ruleDoc struct {
	Priority         *int              `json:"priority" yaml:"priority"`
	Enabled          *bool             `json:"enabled" yaml:"enabled"`
	Validation       *Validation       `json:"validation" yaml:"validation"`
	CorrectionAction *CorrectionAction `json:"correction_action" yaml:"correction_action"`
	ID               string            `json:"rule_id" yaml:"rule_id"`
	Category         string            `json:"category" yaml:"category"`
	Description      string            `json:"description" yaml:"description"`
	Severity         string            `json:"severity" yaml:"severity"`
	Location         Location          `json:"location" yaml:"location"`
}

// newRule validates a decoded rule and applies defaults. Returned field
// errors are relative to rules[index].
func newRule(doc *ruleDoc, index int) (*Rule, []FieldError) {
	var errs []FieldError
	field := func(name string) string {
		return fmt.Sprintf("rules[%d].%s", index, name)
	}

	if doc.ID == "" {
		errs = append(errs, FieldError{Field: field("rule_id"), Message: "is required"})
	}
	if doc.Category == "" {
		errs = append(errs, FieldError{Field: field("category"), Message: "is required"})
	}
	if doc.Validation == nil {
		errs = append(errs, FieldError{Field: field("validation"), Message: "is required"})
	}
	if doc.CorrectionAction == nil {
		errs = append(errs, FieldError{Field: field("correction_action"), Message: "is required"})
	}

	severity := SeverityMedium
	if doc.Severity != "" {
		switch Severity(strings.ToLower(doc.Severity)) {
		case SeverityHigh, SeverityMedium, SeverityLow:
			severity = Severity(strings.ToLower(doc.Severity))
		default:
			errs = append(errs, FieldError{
				Field:   field("severity"),
				Message: fmt.Sprintf("must be one of high, medium, low; got %q", doc.Severity),
			})
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	rule := &Rule{
		ID:               doc.ID,
		Category:         doc.Category,
		Description:      doc.Description,
		Severity:         severity,
		Priority:         DefaultPriority,
		Enabled:          true,
		Location:         doc.Location,
		Validation:       doc.Validation,
		CorrectionAction: doc.CorrectionAction,
	}
	if doc.Priority != nil {
		rule.Priority = *doc.Priority
	}
	if doc.Enabled != nil {
		rule.Enabled = *doc.Enabled
	}

	return rule, nil
}

// FieldError is one problem at a specific field of the rule source.
type FieldError struct {
	Field   string
	Message string
}

// SchemaError reports a malformed rule source. It is fatal: no partial rule
// set is installed when it is returned.
type SchemaError struct {
	Source string
	Fields []FieldError
}

func (e *SchemaError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "invalid rule source %s:", e.Source)
	for _, fe := range e.Fields {
		fmt.Fprintf(&sb, "\n  %s: %s", fe.Field, fe.Message)
	}
	return sb.String()
}
