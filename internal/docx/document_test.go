package docx

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestAlignmentNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Alignment
		want Alignment
	}{
		{name: "unset becomes left", in: AlignUnset, want: AlignLeft},
		{name: "left stays left", in: AlignLeft, want: AlignLeft},
		{name: "center stays center", in: AlignCenter, want: AlignCenter},
		{name: "unknown becomes left", in: Alignment("both"), want: AlignLeft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestParseAlignment(t *testing.T) {
	t.Parallel()

	require.Equal(t, AlignCenter, ParseAlignment("  Center "))
	require.Equal(t, AlignLeft, ParseAlignment("weird"))
	require.Equal(t, AlignJustify, ParseAlignment("JUSTIFY"))
}

func TestParagraphText(t *testing.T) {
	t.Parallel()

	p := &Paragraph{}
	p.AddRun("Acme ")
	p.AddRun("Corp")
	require.Equal(t, "Acme Corp", p.Text())
}

func TestParagraphIsBlank(t *testing.T) {
	t.Parallel()

	p := &Paragraph{}
	require.True(t, p.IsBlank())

	p.AddRun("   ")
	require.True(t, p.IsBlank())

	p.AddRun("x")
	require.False(t, p.IsBlank())

	p.Clear()
	require.True(t, p.IsBlank())
}

func TestInsertParagraph(t *testing.T) {
	t.Parallel()

	doc := &Document{Paragraphs: []*Paragraph{
		{Runs: []*Run{{Text: "first"}}},
		{Runs: []*Run{{Text: "second"}}},
	}}

	doc.InsertParagraph(1, &Paragraph{})
	require.Len(t, doc.Paragraphs, 3)
	require.True(t, doc.Paragraphs[1].IsBlank())
	require.Equal(t, "second", doc.Paragraphs[2].Text())

	doc.InsertParagraph(99, &Paragraph{Runs: []*Run{{Text: "last"}}})
	require.Equal(t, "last", doc.Paragraphs[len(doc.Paragraphs)-1].Text())
}

func TestOpenSaveRoundTrip(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	bold := true
	doc := &Document{
		Paragraphs: []*Paragraph{
			{Alignment: AlignCenter, Runs: []*Run{{Text: "Acme Corp", Bold: &bold, FontName: "Arial"}}},
		},
		Tables: []*Table{
			{
				Rows:    []*Row{{Height: Centimeters(0.37), Cells: []*Cell{{Paragraphs: []*Paragraph{{Runs: []*Run{{Text: "100"}}}}}}}},
				Columns: []*Column{{Width: Centimeters(2.3)}},
			},
		},
	}

	require.NoError(t, Save(fs, doc, "doc.json"))

	loaded, err := Open(fs, "doc.json")
	require.NoError(t, err)
	require.Equal(t, "Acme Corp", loaded.Paragraphs[0].Text())
	require.Equal(t, AlignCenter, loaded.Paragraphs[0].Alignment)
	require.Equal(t, doc.Tables[0].Rows[0].Height, loaded.Tables[0].Rows[0].Height)
}

func TestOpenMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Open(afero.NewMemMapFs(), "missing.json")
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing.json")
}

func TestOpenInvalidJSON(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "bad.json", []byte("{not json"), 0o644))

	_, err := Open(fs, "bad.json")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to parse")
}
