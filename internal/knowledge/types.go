// Package knowledge matches pipeline error messages against the curated
// catalog. Two matchers share the one catalog table: PatternMatcher
// scans compiled regexes, SemanticMatcher queries the vector index.
// Merge combines their enrichments deterministically.
package knowledge

import "github.com/fyrsmithlabs/pipetriage/internal/catalog"

// SimilarError is a near-miss catalog entry surfaced alongside the
// best semantic match.
type SimilarError struct {
	Title      string  `json:"title"`
	Category   string  `json:"category"`
	Similarity float64 `json:"similarity"`
}

// Match is one semantic search hit.
type Match struct {
	Entry      *catalog.Entry
	Similarity float64
}

// Enrichment is what a matcher knows about an error message. A zero
// Enrichment means no knowledge-base hit.
type Enrichment struct {
	// Matched reports whether a catalog entry was accepted.
	Matched bool `json:"matched"`

	// Source records which matcher(s) produced this enrichment:
	// "pattern", "semantic" or "pattern+semantic".
	Source string `json:"source,omitempty"`

	EntryID          string   `json:"error_id,omitempty"`
	Category         string   `json:"category,omitempty"`
	Severity         string   `json:"severity,omitempty"`
	Title            string   `json:"title,omitempty"`
	Description      string   `json:"description,omitempty"`
	Causes           []string `json:"causes,omitempty"`
	Solutions        []string `json:"solutions,omitempty"`
	Prevention       []string `json:"prevention,omitempty"`
	EstimatedFixTime string   `json:"estimated_fix_time,omitempty"`
	Documentation    []string `json:"documentation,omitempty"`

	// Runbook is an ordered remediation checklist derived from the
	// matched entry's solutions.
	Runbook []string `json:"runbook,omitempty"`

	// SimilarErrors lists runner-up semantic matches.
	SimilarErrors []SimilarError `json:"similar_errors,omitempty"`

	// MatchConfidence is the semantic similarity of the accepted
	// match, zero for pattern-only enrichments.
	MatchConfidence float64 `json:"match_confidence,omitempty"`

	// ClosestTitle names the nearest entry when no match cleared the
	// similarity floor. Informational only.
	ClosestTitle string `json:"closest_title,omitempty"`
}

// fromEntry builds the common enrichment fields for a matched entry.
func fromEntry(e *catalog.Entry, source string) Enrichment {
	return Enrichment{
		Matched:          true,
		Source:           source,
		EntryID:          e.ID,
		Category:         string(e.Category),
		Severity:         string(e.Severity),
		Title:            e.Title,
		Description:      e.Description,
		Causes:           e.Causes,
		Solutions:        e.Solutions,
		Prevention:       e.Prevention,
		EstimatedFixTime: e.EstimatedFixTime,
		Documentation:    e.Documentation,
	}
}
