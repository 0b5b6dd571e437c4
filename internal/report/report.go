// Package report assembles and serializes the JSON report produced after a
// validation or correction run.
package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/styleguard/styleguard/internal/engine/corrector"
	"github.com/styleguard/styleguard/internal/engine/validator"
)

// Run statuses surfaced in reports. Partial success is a first-class
// outcome: a run with failed corrections still produced a saved document.
const (
	StatusValidationComplete = "validation_complete"
	StatusCompleted          = "completed"
	StatusPartial            = "partial"
)

// Summary is the headline numbers block.
type Summary struct {
	TotalViolations    int     `json:"total_violations"`
	HighSeverity       int     `json:"high_severity,omitempty"`
	MediumSeverity     int     `json:"medium_severity,omitempty"`
	LowSeverity        int     `json:"low_severity,omitempty"`
	CorrectionsApplied int     `json:"corrections_applied"`
	CorrectionsFailed  int     `json:"corrections_failed"`
	CorrectionsSkipped int     `json:"corrections_skipped"`
	RulesChecked       int     `json:"rules_checked"`
	DurationSeconds    float64 `json:"processing_duration_seconds"`
}

// CategoryTally counts violations and correction outcomes for one category
// or severity bucket.
type CategoryTally struct {
	Violations         int `json:"violations"`
	CorrectionsApplied int `json:"corrections_applied"`
	CorrectionsFailed  int `json:"corrections_failed"`
}

// CorrectionsSummary groups tallies by category and severity.
type CorrectionsSummary struct {
	ByCategory map[string]CategoryTally `json:"by_category"`
	BySeverity map[string]CategoryTally `json:"by_severity"`
}

// FailedCorrection is one entry in the manual-review manifest.
type FailedCorrection struct {
	ViolationID int    `json:"violation_id"`
	RuleID      string `json:"rule_id"`
	Reason      string `json:"reason"`
}

// DocumentInfo names the input and output files.
type DocumentInfo struct {
	OriginalFile      string `json:"original_file"`
	OriginalFilePath  string `json:"original_file_path"`
	CorrectedFile     string `json:"corrected_file,omitempty"`
	CorrectedFilePath string `json:"corrected_file_path,omitempty"`
}

// ExecutionMetadata records which rule set drove the run.
type ExecutionMetadata struct {
	RulesVersion string `json:"rules_version"`
	TotalRules   int    `json:"total_rules"`
	EnabledRules int    `json:"enabled_rules"`
}

// Report is the full JSON document handed to callers and written to disk.
type Report struct {
	Timestamp            time.Time              `json:"processing_timestamp"`
	ViolationsByCategory map[string]int         `json:"violations_by_category,omitempty"`
	CorrectionsSummary   *CorrectionsSummary    `json:"corrections_summary,omitempty"`
	ExecutionMetadata    *ExecutionMetadata     `json:"execution_metadata,omitempty"`
	Normalization        *corrector.Outcome     `json:"normalization,omitempty"`
	JobID                string                 `json:"job_id"`
	DocumentName         string                 `json:"document_name"`
	Status               string                 `json:"status"`
	Violations           []*validator.Violation `json:"violations"`
	FailedCorrections    []FailedCorrection     `json:"failed_corrections,omitempty"`
	Recommendations      []string               `json:"recommendations,omitempty"`
	NextSteps            []string               `json:"next_steps,omitempty"`
	DocumentInfo         DocumentInfo           `json:"document_info"`
	Summary              Summary                `json:"summary"`
}

// Write serializes the report as indented JSON to path.
func Write(fs afero.Fs, r *Report, path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save report %s: %w", path, err)
	}
	return nil
}
