// Package locator turns a rule's declarative selector into concrete,
// bounds-checked element indices.
package locator

import (
	"errors"
	"strconv"
	"strings"

	"github.com/styleguard/styleguard/internal/rules"
)

var (
	// ErrInvalidSelector marks a selector that cannot be parsed.
	ErrInvalidSelector = errors.New("invalid location selector")
	// ErrOutOfBounds marks a resolved coordinate beyond document extents.
	ErrOutOfBounds = errors.New("location out of bounds")
)

// ScanWindow bounds the "all" selector: a pragmatic cap on how many leading
// paragraphs a scan-everything rule touches, not a document-size guarantee.
const ScanWindow = 30

// Resolve maps a paragraph selector to 0-based indices within a document of
// the given length. Selectors are 1-based; ranges and "all" clip to actual
// extents, and indices beyond them are silently omitted so one oversized
// rule cannot fail an otherwise-valid pass. An empty selector resolves to
// nothing.
func Resolve(sel rules.Selector, length int) ([]int, error) {
	raw := strings.TrimSpace(string(sel))
	if raw == "" {
		return nil, nil
	}

	if n, err := strconv.Atoi(raw); err == nil {
		if n < 1 || n > length {
			return nil, nil
		}
		return []int{n - 1}, nil
	}

	if strings.Contains(strings.ToLower(raw), "all") {
		return window(min(ScanWindow, length)), nil
	}

	if start, end, ok := parseRange(raw); ok {
		end = min(end, length)
		if start < 1 || start > end {
			return nil, nil
		}
		out := make([]int, 0, end-start+1)
		for i := start - 1; i < end; i++ {
			out = append(out, i)
		}
		return out, nil
	}

	return nil, ErrInvalidSelector
}

// parseRange parses an inclusive "start-end" selector.
func parseRange(raw string) (start, end int, ok bool) {
	parts := strings.SplitN(raw, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	var err error
	if start, err = strconv.Atoi(strings.TrimSpace(parts[0])); err != nil {
		return 0, 0, false
	}
	if end, err = strconv.Atoi(strings.TrimSpace(parts[1])); err != nil {
		return 0, 0, false
	}
	return start, end, true
}

func window(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// CheckIndex validates a 0-based index against a length. Table coordinates
// pass through resolution unclipped, so users re-check bounds with this
// before dereferencing.
func CheckIndex(i, length int) error {
	if i < 0 || i >= length {
		return ErrOutOfBounds
	}
	return nil
}
