package rules

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultTTL is how long a loaded rule set stays fresh before All reloads it.
const DefaultTTL = time.Hour

// sourceDoc is the wire form of a complete rule source.
type sourceDoc struct {
	Metadata   map[string]any            `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Categories map[string]map[string]any `json:"categories,omitempty" yaml:"categories,omitempty"`
	Version    string                    `json:"version" yaml:"version"`
	Rules      []*ruleDoc                `json:"rules" yaml:"rules"`
}

// snapshot is one immutable load result. The store swaps whole snapshots so
// readers never observe a partially-updated index.
type snapshot struct {
	loadedAt   time.Time
	metadata   map[string]any
	categories map[string]map[string]any
	byCategory map[string][]*Rule
	byID       map[string]*Rule
	version    string
	rules      []*Rule
}

// Store owns one rule source and its in-memory cache. It assumes a single
// owner; concurrent reload-then-read needs external synchronization.
type Store struct {
	fs    afero.Fs
	now   func() time.Time
	cache *snapshot
	path  string
	ttl   time.Duration
}

// New creates a store for the rule source at path. Nothing is loaded until
// Load or All is called.
func New(fs afero.Fs, path string, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{fs: fs, path: path, ttl: ttl, now: time.Now}
}

// Load reads, validates and indexes the rule source. On any *SchemaError or
// read failure the previous rule set stays installed untouched.
func (s *Store) Load() error {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return fmt.Errorf("failed to read rule source %s: %w", s.path, err)
	}

	var doc sourceDoc
	ext := strings.ToLower(filepath.Ext(s.path))
	if ext == ".yaml" || ext == ".yml" {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return &SchemaError{Source: s.path, Fields: []FieldError{{Field: "(root)", Message: err.Error()}}}
		}
	} else {
		fieldErrs, err := validateJSONSource(data)
		if err != nil {
			return &SchemaError{Source: s.path, Fields: []FieldError{{Field: "(root)", Message: err.Error()}}}
		}
		if len(fieldErrs) > 0 {
			return &SchemaError{Source: s.path, Fields: fieldErrs}
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return &SchemaError{Source: s.path, Fields: []FieldError{{Field: "(root)", Message: err.Error()}}}
		}
	}

	snap, schemaErr := s.buildSnapshot(&doc)
	if schemaErr != nil {
		return schemaErr
	}

	s.cache = snap
	log.Info().
		Str("source", s.path).
		Int("rules", len(snap.rules)).
		Int("categories", len(snap.byCategory)).
		Msg("rule source loaded")
	return nil
}

// buildSnapshot validates every rule and builds the indexes. All problems
// are collected into one SchemaError rather than failing on the first.
func (s *Store) buildSnapshot(doc *sourceDoc) (*snapshot, *SchemaError) {
	var fieldErrs []FieldError
	if doc.Version == "" {
		fieldErrs = append(fieldErrs, FieldError{Field: "version", Message: "is required"})
	}
	if len(doc.Rules) == 0 {
		fieldErrs = append(fieldErrs, FieldError{Field: "rules", Message: "is required and cannot be empty"})
	}

	snap := &snapshot{
		version:    doc.Version,
		metadata:   doc.Metadata,
		categories: doc.Categories,
		rules:      make([]*Rule, 0, len(doc.Rules)),
		byCategory: make(map[string][]*Rule),
		byID:       make(map[string]*Rule, len(doc.Rules)),
	}

	for i, rd := range doc.Rules {
		rule, errs := newRule(rd, i)
		if len(errs) > 0 {
			fieldErrs = append(fieldErrs, errs...)
			continue
		}
		if _, dup := snap.byID[rule.ID]; dup {
			fieldErrs = append(fieldErrs, FieldError{
				Field:   fmt.Sprintf("rules[%d].rule_id", i),
				Message: fmt.Sprintf("duplicate rule id %q", rule.ID),
			})
			continue
		}
		snap.rules = append(snap.rules, rule)
		snap.byID[rule.ID] = rule
		snap.byCategory[rule.Category] = append(snap.byCategory[rule.Category], rule)
	}

	if len(fieldErrs) > 0 {
		return nil, &SchemaError{Source: s.path, Fields: fieldErrs}
	}

	snap.loadedAt = s.now()
	return snap, nil
}

// CacheValid reports whether the loaded rule set is still within its TTL.
func (s *Store) CacheValid() bool {
	if s.cache == nil {
		return false
	}
	return s.now().Sub(s.cache.loadedAt) < s.ttl
}

// All returns every rule, reloading first when forced or when the cache has
// expired.
func (s *Store) All(forceReload bool) ([]*Rule, error) {
	if forceReload || !s.CacheValid() {
		if err := s.Load(); err != nil {
			// Keep serving the stale set if one exists.
			if s.cache == nil {
				return nil, err
			}
			log.Warn().Err(err).Msg("rule reload failed, serving cached rules")
		}
	}
	return s.cache.rules, nil
}

// ByCategory returns the rules in one category, in load order.
func (s *Store) ByCategory(category string) []*Rule {
	if s.cache == nil {
		return nil
	}
	return s.cache.byCategory[category]
}

// BySeverity returns the rules with the given severity.
func (s *Store) BySeverity(severity Severity) []*Rule {
	if s.cache == nil {
		return nil
	}
	var out []*Rule
	for _, r := range s.cache.rules {
		if r.Severity == severity {
			out = append(out, r)
		}
	}
	return out
}

// Enabled returns only the enabled rules.
func (s *Store) Enabled() []*Rule {
	if s.cache == nil {
		return nil
	}
	var out []*Rule
	for _, r := range s.cache.rules {
		if r.Enabled {
			out = append(out, r)
		}
	}
	return out
}

// ByID returns the rule with the given id, or nil.
func (s *Store) ByID(id string) *Rule {
	if s.cache == nil {
		return nil
	}
	return s.cache.byID[id]
}

// Enable turns a rule on. Returns false when the id is unknown.
func (s *Store) Enable(id string) bool {
	return s.setEnabled(id, true)
}

// Disable turns a rule off. Returns false when the id is unknown.
func (s *Store) Disable(id string) bool {
	return s.setEnabled(id, false)
}

func (s *Store) setEnabled(id string, enabled bool) bool {
	rule := s.ByID(id)
	if rule == nil {
		return false
	}
	rule.Enabled = enabled
	return true
}

// CategoryNames returns the sorted names of every category that has rules.
func (s *Store) CategoryNames() []string {
	if s.cache == nil {
		return nil
	}
	names := make([]string, 0, len(s.cache.byCategory))
	for name := range s.cache.byCategory {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Categories returns the category definitions from the source.
func (s *Store) Categories() map[string]map[string]any {
	if s.cache == nil {
		return nil
	}
	return s.cache.categories
}

// Metadata returns the source's metadata block.
func (s *Store) Metadata() map[string]any {
	if s.cache == nil {
		return nil
	}
	return s.cache.metadata
}

// Version returns the source's declared version.
func (s *Store) Version() string {
	if s.cache == nil {
		return ""
	}
	return s.cache.version
}

// Counts summarizes the loaded rule set.
type Counts struct {
	Total      int `json:"total"`
	Enabled    int `json:"enabled"`
	Disabled   int `json:"disabled"`
	High       int `json:"high_severity"`
	Medium     int `json:"medium_severity"`
	Low        int `json:"low_severity"`
	Categories int `json:"categories"`
}

// Counts returns totals by enabled state, severity and category count.
func (s *Store) Counts() Counts {
	if s.cache == nil {
		return Counts{}
	}
	c := Counts{Total: len(s.cache.rules), Categories: len(s.cache.byCategory)}
	for _, r := range s.cache.rules {
		if r.Enabled {
			c.Enabled++
		} else {
			c.Disabled++
		}
		switch r.Severity {
		case SeverityHigh:
			c.High++
		case SeverityMedium:
			c.Medium++
		case SeverityLow:
			c.Low++
		}
	}
	return c
}

// Save writes the current rule set back to the source file, preserving
// enabled-flag changes. JSON sources stay JSON, YAML sources stay YAML.
func (s *Store) Save() error {
	if s.cache == nil {
		return fmt.Errorf("no rules loaded from %s", s.path)
	}

	doc := sourceDoc{
		Version:    s.cache.version,
		Metadata:   s.cache.metadata,
		Categories: s.cache.categories,
		Rules:      make([]*ruleDoc, 0, len(s.cache.rules)),
	}
	for _, r := range s.cache.rules {
		priority := r.Priority
		enabled := r.Enabled
		doc.Rules = append(doc.Rules, &ruleDoc{
			ID:               r.ID,
			Category:         r.Category,
			Description:      r.Description,
			Severity:         string(r.Severity),
			Priority:         &priority,
			Enabled:          &enabled,
			Location:         r.Location,
			Validation:       r.Validation,
			CorrectionAction: r.CorrectionAction,
		})
	}

	var (
		data []byte
		err  error
	)
	ext := strings.ToLower(filepath.Ext(s.path))
	if ext == ".yaml" || ext == ".yml" {
		data, err = yaml.Marshal(&doc)
	} else {
		data, err = json.MarshalIndent(&doc, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode rule source: %w", err)
	}

	if err := afero.WriteFile(s.fs, s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save rule source %s: %w", s.path, err)
	}
	return nil
}
