// Package catalog holds the curated knowledge base of known data-factory
// pipeline failure patterns.
//
// The catalog is a single canonical table loaded once at process start.
// Two access paths are built from it: a compiled regex index used by the
// pattern matcher and a vector index used by the semantic matcher. Both
// share the same entries, so the two knowledge sources cannot drift.
package catalog

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Catalog is the in-memory error knowledge base. Read-only after New;
// safe for concurrent use without locking.
type Catalog struct {
	entries  []Entry
	compiled []*regexp.Regexp // parallel to entries; nil where the pattern failed to compile
	byID     map[string]*Entry
}

// New builds a catalog from the given entries. Entries whose pattern
// does not compile are kept for lookup and semantic search but excluded
// from regex matching; the authoring error is logged, never fatal.
func New(entries []Entry, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Catalog{
		entries:  entries,
		compiled: make([]*regexp.Regexp, len(entries)),
		byID:     make(map[string]*Entry, len(entries)),
	}

	for i := range c.entries {
		e := &c.entries[i]
		if _, dup := c.byID[e.ID]; dup {
			logger.Warn("duplicate catalog entry id, keeping first", zap.String("id", e.ID))
			continue
		}
		c.byID[e.ID] = e

		if e.Pattern == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + e.Pattern)
		if err != nil {
			logger.Warn("invalid catalog pattern, skipping",
				zap.String("id", e.ID),
				zap.String("pattern", e.Pattern),
				zap.Error(err),
			)
			continue
		}
		c.compiled[i] = re
	}

	logger.Info("error catalog loaded", zap.Int("entries", len(c.entries)))
	return c
}

// Default returns a catalog built from the bundled entries.
func Default(logger *zap.Logger) *Catalog {
	return New(Entries(), logger)
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// All returns every entry. Callers must not mutate the result.
func (c *Catalog) All() []Entry { return c.entries }

// ByID returns the entry with the given id, or nil.
func (c *Catalog) ByID(id string) *Entry { return c.byID[id] }

// ByCategory returns all entries in the given category.
func (c *Catalog) ByCategory(cat Category) []*Entry {
	var out []*Entry
	for i := range c.entries {
		if c.entries[i].Category == cat {
			out = append(out, &c.entries[i])
		}
	}
	return out
}

// Categories returns the distinct categories present, in first-seen order.
func (c *Catalog) Categories() []Category {
	seen := make(map[Category]bool)
	var out []Category
	for i := range c.entries {
		if cat := c.entries[i].Category; !seen[cat] {
			seen[cat] = true
			out = append(out, cat)
		}
	}
	return out
}

// Search returns entries whose title, description or causes contain the
// query, case-insensitively. Used by the CLI and dashboard kb views.
func (c *Catalog) Search(query string) []*Entry {
	q := strings.ToLower(query)
	var out []*Entry
	for i := range c.entries {
		e := &c.entries[i]
		haystack := strings.ToLower(e.Title + " " + e.Description + " " + strings.Join(e.Causes, " "))
		if strings.Contains(haystack, q) {
			out = append(out, e)
		}
	}
	return out
}

// pattern returns the compiled regex for entry i, or nil if the pattern
// was empty or invalid.
func (c *Catalog) pattern(i int) *regexp.Regexp { return c.compiled[i] }

// Scan applies fn to each entry with a usable compiled pattern, in
// catalog order. fn receives the entry and its compiled regex.
func (c *Catalog) Scan(fn func(e *Entry, re *regexp.Regexp)) {
	for i := range c.entries {
		if re := c.compiled[i]; re != nil {
			fn(&c.entries[i], re)
		}
	}
}
