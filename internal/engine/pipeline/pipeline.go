// Package pipeline sequences validation and correction over one document and
// assembles the run report. It carries no algorithmic content of its own.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/styleguard/styleguard/internal/docx"
	"github.com/styleguard/styleguard/internal/engine/corrector"
	"github.com/styleguard/styleguard/internal/engine/validator"
	"github.com/styleguard/styleguard/internal/history"
	"github.com/styleguard/styleguard/internal/report"
	"github.com/styleguard/styleguard/internal/rules"
)

// Pipeline wires the rule store, validator and corrector together. The
// in-memory document is exclusively owned by one Check or Fix call; callers
// must not share a pipeline across concurrent invocations.
type Pipeline struct {
	fs         afero.Fs
	store      *rules.Store
	validator  *validator.Validator
	corrector  *corrector.Corrector
	normalizer *corrector.TemplateNormalizer
	history    *history.Store
}

// New creates a pipeline over the given filesystem and rule store.
func New(fs afero.Fs, store *rules.Store) *Pipeline {
	return &Pipeline{
		fs:         fs,
		store:      store,
		validator:  validator.New(store),
		corrector:  corrector.New(fs, store),
		normalizer: corrector.NewTemplateNormalizer(fs),
	}
}

// WithHistory attaches a run-history store; every Check and Fix is recorded.
func (p *Pipeline) WithHistory(h *history.Store) *Pipeline {
	p.history = h
	return p
}

// WithPolicy replaces the validator's comparison policy.
func (p *Pipeline) WithPolicy(policy validator.ComparisonPolicy) *Pipeline {
	p.validator = validator.NewWithPolicy(p.store, policy)
	return p
}

// DefaultOutputPath derives the corrected-document path from the input:
// "report.json" becomes "report_corrected.json".
func DefaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	stem := strings.TrimSuffix(input, ext)
	return stem + "_corrected" + ext
}

// Check validates the document and returns a validation-only report.
func (p *Pipeline) Check(ctx context.Context, documentPath string) (*report.Report, error) {
	start := time.Now()

	doc, err := docx.Open(p.fs, documentPath)
	if err != nil {
		return nil, err
	}

	violations, err := p.validator.Validate(doc)
	if err != nil {
		return nil, err
	}
	summary := p.validator.Summarize()

	r := &report.Report{
		JobID:        newJobID(),
		DocumentName: filepath.Base(documentPath),
		Timestamp:    time.Now(),
		Status:       report.StatusValidationComplete,
		Summary: report.Summary{
			TotalViolations: summary.Total,
			HighSeverity:    summary.High,
			MediumSeverity:  summary.Medium,
			LowSeverity:     summary.Low,
			RulesChecked:    len(p.store.Enabled()),
			DurationSeconds: round2(time.Since(start).Seconds()),
		},
		Violations:           violations,
		ViolationsByCategory: summary.ByCategory,
		DocumentInfo: report.DocumentInfo{
			OriginalFile:     filepath.Base(documentPath),
			OriginalFilePath: documentPath,
		},
	}

	p.record(ctx, r)
	return r, nil
}

// Fix validates, optionally normalizes the template structure, applies
// corrections and saves the result to outputPath, then returns the complete
// report. Normalization runs before validation so correction coordinates
// stay valid after its structural insert.
func (p *Pipeline) Fix(ctx context.Context, inputPath, outputPath string, normalize bool) (*report.Report, error) {
	start := time.Now()

	doc, err := docx.Open(p.fs, inputPath)
	if err != nil {
		return nil, err
	}

	var normalization *corrector.Outcome
	if normalize {
		outcome := p.normalizer.Normalize(doc)
		normalization = &outcome
	}

	violations, err := p.validator.Validate(doc)
	if err != nil {
		return nil, err
	}
	summary := p.validator.Summarize()

	results, err := p.corrector.Correct(doc, violations, outputPath)
	if err != nil {
		return nil, err
	}
	stats := corrector.Tally(results)

	failed := failedCorrections(results)
	status := report.StatusCompleted
	if len(failed) > 0 {
		status = report.StatusPartial
	}

	r := &report.Report{
		JobID:        newJobID(),
		DocumentName: filepath.Base(inputPath),
		Timestamp:    time.Now(),
		Status:       status,
		Summary: report.Summary{
			TotalViolations:    summary.Total,
			HighSeverity:       summary.High,
			MediumSeverity:     summary.Medium,
			LowSeverity:        summary.Low,
			CorrectionsApplied: stats.Applied,
			CorrectionsFailed:  stats.Failed,
			CorrectionsSkipped: stats.Skipped,
			RulesChecked:       len(p.store.Enabled()),
			DurationSeconds:    round2(time.Since(start).Seconds()),
		},
		Violations:           violations,
		ViolationsByCategory: summary.ByCategory,
		CorrectionsSummary:   p.correctionsSummary(violations),
		FailedCorrections:    failed,
		Normalization:        normalization,
		DocumentInfo: report.DocumentInfo{
			OriginalFile:      filepath.Base(inputPath),
			OriginalFilePath:  inputPath,
			CorrectedFile:     filepath.Base(outputPath),
			CorrectedFilePath: outputPath,
		},
		ExecutionMetadata: &report.ExecutionMetadata{
			RulesVersion: p.store.Version(),
			TotalRules:   p.store.Counts().Total,
			EnabledRules: len(p.store.Enabled()),
		},
		Recommendations: recommendations(failed),
		NextSteps:       nextSteps(outputPath, failed),
	}

	p.record(ctx, r)
	return r, nil
}

// Normalize runs the structural template pass alone and saves the result.
func (p *Pipeline) Normalize(inputPath, outputPath string) (corrector.Outcome, error) {
	doc, err := docx.Open(p.fs, inputPath)
	if err != nil {
		return corrector.Outcome{}, err
	}
	return p.normalizer.Run(doc, outputPath)
}

// correctionsSummary tallies correction outcomes per category and severity,
// derived from each violation's post-correction status.
func (p *Pipeline) correctionsSummary(violations []*validator.Violation) *report.CorrectionsSummary {
	summary := &report.CorrectionsSummary{
		ByCategory: make(map[string]report.CategoryTally),
		BySeverity: make(map[string]report.CategoryTally),
	}

	for _, name := range p.store.CategoryNames() {
		summary.ByCategory[name] = report.CategoryTally{}
	}
	for _, severity := range []rules.Severity{rules.SeverityHigh, rules.SeverityMedium, rules.SeverityLow} {
		summary.BySeverity[string(severity)] = report.CategoryTally{}
	}

	for _, v := range violations {
		rule := p.store.ByID(v.RuleID)
		if rule != nil {
			tally := summary.ByCategory[rule.Category]
			bump(&tally, v.CorrectionStatus)
			summary.ByCategory[rule.Category] = tally
		}
		tally := summary.BySeverity[string(v.Severity)]
		bump(&tally, v.CorrectionStatus)
		summary.BySeverity[string(v.Severity)] = tally
	}

	return summary
}

func bump(t *report.CategoryTally, status validator.CorrectionStatus) {
	t.Violations++
	switch status {
	case validator.StatusApplied:
		t.CorrectionsApplied++
	case validator.StatusFailed:
		t.CorrectionsFailed++
	}
}

func failedCorrections(results []*corrector.Result) []report.FailedCorrection {
	var out []report.FailedCorrection
	for _, r := range results {
		if r.Status != validator.StatusFailed {
			continue
		}
		reason := "Unknown error"
		if r.ErrorDetails != nil {
			reason = *r.ErrorDetails
		}
		out = append(out, report.FailedCorrection{
			ViolationID: r.ViolationID,
			RuleID:      r.RuleID,
			Reason:      reason,
		})
	}
	return out
}

func recommendations(failed []report.FailedCorrection) []string {
	if len(failed) == 0 {
		return nil
	}
	return []string{
		fmt.Sprintf("Review %d failed corrections manually", len(failed)),
		"Check if failed corrections require manual intervention",
	}
}

func nextSteps(outputPath string, failed []report.FailedCorrection) []string {
	steps := []string{fmt.Sprintf("Review corrected document: %s", outputPath)}
	if len(failed) > 0 {
		steps = append(steps, fmt.Sprintf("Manually fix %d failed corrections", len(failed)))
	}
	return steps
}

// record writes the run into the history store when one is attached.
func (p *Pipeline) record(ctx context.Context, r *report.Report) {
	if p.history == nil {
		return
	}
	err := p.history.Record(ctx, history.Run{
		JobID:      r.JobID,
		Document:   r.DocumentName,
		Status:     r.Status,
		Violations: r.Summary.TotalViolations,
		Applied:    r.Summary.CorrectionsApplied,
		Failed:     r.Summary.CorrectionsFailed,
		Skipped:    r.Summary.CorrectionsSkipped,
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to record run history")
	}
}

// newJobID returns a short unique job id for one run.
func newJobID() string {
	return uuid.NewString()[:8]
}

func round2(v float64) float64 {
	return float64(int(v*100)) / 100
}
