// Package docx provides the in-memory document tree the validation and
// correction engine operates on: ordered paragraphs of formatted runs plus
// tables of rows, columns and cells. Runs are the atomic units of text
// formatting; paragraph text is derived from them.
package docx

import "strings"

// Alignment is a paragraph's horizontal alignment. The zero value means the
// document never set one, which renderers treat as left.
type Alignment string

const (
	AlignUnset   Alignment = ""
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "justify"
)

// Normalize maps an unset or unrecognized alignment to left.
func (a Alignment) Normalize() Alignment {
	switch a {
	case AlignLeft, AlignCenter, AlignRight, AlignJustify:
		return a
	default:
		return AlignLeft
	}
}

// ParseAlignment converts a rule-declared alignment string to an Alignment.
// Unknown values normalize to left, matching renderer behavior.
func ParseAlignment(s string) Alignment {
	return Alignment(strings.ToLower(strings.TrimSpace(s))).Normalize()
}

// Run is a contiguous span of text with consistent formatting. Bold and
// Italic are tri-state: nil means the run never declared the property.
type Run struct {
	Bold     *bool    `json:"bold,omitempty"`
	Italic   *bool    `json:"italic,omitempty"`
	FontSize *float64 `json:"font_size,omitempty"`
	Text     string   `json:"text"`
	FontName string   `json:"font_name,omitempty"`
}

// Paragraph is an ordered list of runs with a shared alignment.
type Paragraph struct {
	Alignment Alignment `json:"alignment,omitempty"`
	Runs      []*Run    `json:"runs,omitempty"`
}

// Text returns the concatenated text of all runs.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// IsBlank reports whether the paragraph has no visible text.
func (p *Paragraph) IsBlank() bool {
	return strings.TrimSpace(p.Text()) == ""
}

// Clear removes all runs, leaving an empty paragraph.
func (p *Paragraph) Clear() {
	p.Runs = nil
}

// AddRun appends a new run with the given text and returns it.
func (p *Paragraph) AddRun(text string) *Run {
	r := &Run{Text: text}
	p.Runs = append(p.Runs, r)
	return r
}

// Cell holds ordered paragraphs inside a table row. Width mirrors the owning
// column's width; corrections keep the two consistent.
type Cell struct {
	Width      EMU          `json:"width,omitempty"`
	Paragraphs []*Paragraph `json:"paragraphs,omitempty"`
}

// Text returns the cell's paragraphs joined by newlines.
func (c *Cell) Text() string {
	parts := make([]string, 0, len(c.Paragraphs))
	for _, p := range c.Paragraphs {
		parts = append(parts, p.Text())
	}
	return strings.Join(parts, "\n")
}

// Row is an ordered list of cells with an optional explicit height.
type Row struct {
	Height EMU     `json:"height,omitempty"`
	Cells  []*Cell `json:"cells,omitempty"`
}

// Column carries the declared width shared by a table column.
type Column struct {
	Width EMU `json:"width,omitempty"`
}

// Table is an ordered grid of rows and columns.
type Table struct {
	Rows    []*Row    `json:"rows,omitempty"`
	Columns []*Column `json:"columns,omitempty"`
}

// Document is the root of the tree: ordered paragraphs and tables.
type Document struct {
	Paragraphs []*Paragraph `json:"paragraphs,omitempty"`
	Tables     []*Table     `json:"tables,omitempty"`
}

// InsertParagraph inserts p before index i. An index at or beyond the end
// appends.
func (d *Document) InsertParagraph(i int, p *Paragraph) {
	if i < 0 {
		i = 0
	}
	if i >= len(d.Paragraphs) {
		d.Paragraphs = append(d.Paragraphs, p)
		return
	}
	d.Paragraphs = append(d.Paragraphs[:i], append([]*Paragraph{p}, d.Paragraphs[i:]...)...)
}
