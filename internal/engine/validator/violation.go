package validator

import (
	"time"

	"github.com/styleguard/styleguard/internal/rules"
)

// CorrectionStatus tracks what the corrector did with a violation.
type CorrectionStatus string

const (
	StatusPending CorrectionStatus = "pending"
	StatusApplied CorrectionStatus = "applied"
	StatusFailed  CorrectionStatus = "failed"
	StatusSkipped CorrectionStatus = "skipped"
)

// Location is a violation's resolved concrete coordinates. Paragraph is the
// 0-based paragraph index; Row doubles as the 1-based display row for
// paragraph violations and as the 0-based row index for table violations.
type Location struct {
	Paragraph *int `json:"paragraph,omitempty"`
	Table     *int `json:"table,omitempty"`
	Row       *int `json:"row,omitempty"`
	Column    *int `json:"column,omitempty"`
}

// Violation is one detected mismatch between expected and actual properties
// at a resolved document location. Created by the validator; only the
// corrector mutates CorrectionStatus and CorrectionTimestamp.
type Violation struct {
	CorrectionTimestamp *time.Time       `json:"correction_timestamp"`
	Expected            map[string]any   `json:"expected"`
	Actual              map[string]any   `json:"actual"`
	RuleID              string           `json:"rule_id"`
	RuleName            string           `json:"rule_name"`
	Message             string           `json:"message"`
	Severity            rules.Severity   `json:"severity"`
	CorrectionStatus    CorrectionStatus `json:"correction_status"`
	Location            Location         `json:"location"`
	ViolationID         int              `json:"violation_id"`
}

func intPtr(i int) *int { return &i }
