package docx

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
)

// Open reads a document tree from path. The on-disk representation is the
// JSON encoding of the tree; parsing a native binary format is the job of an
// external reader that produces the same shape.
func Open(fs afero.Fs, path string) (*Document, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document %s: %w", path, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document %s: %w", path, err)
	}

	return &doc, nil
}

// Save writes the document tree to path, replacing any existing file.
func Save(fs afero.Fs, doc *Document, path string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save document %s: %w", path, err)
	}

	return nil
}
