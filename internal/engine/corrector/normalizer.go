package corrector

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/styleguard/styleguard/internal/docx"
)

// PositionalFormat is the formatting a template assigns to one paragraph
// position. Nil and empty fields leave the property untouched.
type PositionalFormat struct {
	Bold      *bool
	FontSize  *float64
	Alignment docx.Alignment
	FontName  string
}

// TemplateNormalizer is the structural correction strategy: it repairs an
// assumed fixed document layout by heuristic text matching and positional
// formatting, independent of any discoverable rule. Kept separate from the
// rule-driven dispatch on purpose.
type TemplateNormalizer struct {
	fs             afero.Fs
	TitleMarker    string
	PeriodMarker   string
	LeadingFormats []PositionalFormat
}

// Default markers identifying the cover page's title and period paragraphs.
const (
	DefaultTitleMarker  = "financial statements"
	DefaultPeriodMarker = "years ended"
)

// NewTemplateNormalizer creates a normalizer with the standard cover page
// template.
func NewTemplateNormalizer(fs afero.Fs) *TemplateNormalizer {
	return &TemplateNormalizer{
		fs:             fs,
		TitleMarker:    DefaultTitleMarker,
		PeriodMarker:   DefaultPeriodMarker,
		LeadingFormats: defaultCoverTemplate(),
	}
}

// defaultCoverTemplate is the fixed formatting for the leading cover page
// paragraphs: company name, spacer, statement title, period lines.
func defaultCoverTemplate() []PositionalFormat {
	size := func(pt float64) *float64 { return &pt }
	bold := true
	return []PositionalFormat{
		{Alignment: docx.AlignCenter, FontName: "Arial", FontSize: size(14), Bold: &bold},
		{Alignment: docx.AlignCenter, FontName: "Arial", FontSize: size(11)},
		{Alignment: docx.AlignCenter, FontName: "Arial", FontSize: size(12), Bold: &bold},
		{Alignment: docx.AlignCenter, FontName: "Arial", FontSize: size(11)},
		{Alignment: docx.AlignCenter, FontName: "Arial", FontSize: size(11)},
		{Alignment: docx.AlignCenter, FontName: "Arial", FontSize: size(11)},
	}
}

// Outcome summarizes one normalization pass. RowsInserted counts structural
// paragraph insertions, separately from formatting.
type Outcome struct {
	RowsInserted        int `json:"rows_inserted"`
	ParagraphsFormatted int `json:"paragraphs_formatted"`
}

// Run normalizes the document and saves it to outputPath exactly once.
func (n *TemplateNormalizer) Run(doc *docx.Document, outputPath string) (Outcome, error) {
	outcome := n.Normalize(doc)
	if err := docx.Save(n.fs, doc, outputPath); err != nil {
		return Outcome{}, fmt.Errorf("failed to persist normalized document: %w", err)
	}
	log.Info().
		Int("rows_inserted", outcome.RowsInserted).
		Int("paragraphs_formatted", outcome.ParagraphsFormatted).
		Str("output", outputPath).
		Msg("template normalization complete")
	return outcome, nil
}

// Normalize mutates the document in place: it inserts exactly one blank
// paragraph between the title and period paragraphs when they are adjacent,
// then applies the positional template to the leading window.
func (n *TemplateNormalizer) Normalize(doc *docx.Document) Outcome {
	var outcome Outcome

	titleIdx := n.findMarker(doc, n.TitleMarker)
	periodIdx := n.findMarker(doc, n.PeriodMarker)
	if titleIdx >= 0 && periodIdx == titleIdx+1 {
		doc.InsertParagraph(periodIdx, &docx.Paragraph{})
		outcome.RowsInserted = 1
		log.Debug().Int("index", periodIdx).Msg("inserted blank paragraph between title and period")
	}

	for i, format := range n.LeadingFormats {
		if i >= len(doc.Paragraphs) {
			break
		}
		applyPositionalFormat(doc.Paragraphs[i], &format)
		outcome.ParagraphsFormatted++
	}

	return outcome
}

// findMarker returns the index of the first paragraph whose text contains
// the marker, case-insensitive, or -1.
func (*TemplateNormalizer) findMarker(doc *docx.Document, marker string) int {
	if marker == "" {
		return -1
	}
	needle := strings.ToLower(marker)
	for i, para := range doc.Paragraphs {
		if strings.Contains(strings.ToLower(para.Text()), needle) {
			return i
		}
	}
	return -1
}

func applyPositionalFormat(para *docx.Paragraph, format *PositionalFormat) {
	if format.Alignment != docx.AlignUnset {
		para.Alignment = format.Alignment
	}
	for _, run := range para.Runs {
		if format.FontName != "" {
			run.FontName = format.FontName
		}
		if format.FontSize != nil {
			size := *format.FontSize
			run.FontSize = &size
		}
		if format.Bold != nil {
			b := *format.Bold
			run.Bold = &b
		}
	}
}
