package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func patternEnrichment() *Enrichment {
	return &Enrichment{
		Matched:          true,
		Source:           "pattern",
		EntryID:          "conn_tcp_sql",
		Category:         "connectivity",
		Severity:         "high",
		Title:            "SQL Server TCP/IP Connection Failure",
		Causes:           []string{"server down"},
		Solutions:        []string{"check server", "check firewall"},
		Prevention:       []string{"regex prevention"},
		EstimatedFixTime: "15-45 minutes",
	}
}

func semanticEnrichment() *Enrichment {
	return &Enrichment{
		Matched:         true,
		Source:          "semantic",
		EntryID:         "conn_timeout",
		Category:        "connectivity",
		Severity:        "high",
		Title:           "Connection Timeout Error",
		Solutions:       []string{"check firewall", "increase timeout"},
		Prevention:      []string{"semantic prevention"},
		SimilarErrors:   []SimilarError{{Title: "Other", Similarity: 0.4}},
		MatchConfidence: 0.72,
		Runbook:         []string{"step 1"},
	}
}

func TestMergeNeitherMatched(t *testing.T) {
	merged := Merge(nil, nil)
	assert.False(t, merged.Matched)
	assert.Empty(t, merged.EntryID)

	merged = Merge(&Enrichment{}, &Enrichment{ClosestTitle: "x"})
	assert.False(t, merged.Matched)
}

func TestMergePatternOnlyIsIdentity(t *testing.T) {
	p := patternEnrichment()
	merged := Merge(p, nil)
	assert.Equal(t, *p, merged)

	merged = Merge(p, &Enrichment{})
	assert.Equal(t, *p, merged)
}

func TestMergeSemanticOnlyIsIdentity(t *testing.T) {
	s := semanticEnrichment()
	merged := Merge(nil, s)
	assert.Equal(t, *s, merged)
}

func TestMergeBothTakesPatternBase(t *testing.T) {
	merged := Merge(patternEnrichment(), semanticEnrichment())

	assert.True(t, merged.Matched)
	assert.Equal(t, "pattern+semantic", merged.Source)
	assert.Equal(t, "conn_tcp_sql", merged.EntryID)
	assert.Equal(t, "SQL Server TCP/IP Connection Failure", merged.Title)
	assert.Equal(t, []string{"server down"}, merged.Causes)
}

func TestMergeBothDedupsAppendedSolutions(t *testing.T) {
	merged := Merge(patternEnrichment(), semanticEnrichment())

	// Pattern order kept, semantic extras appended, duplicate dropped.
	assert.Equal(t,
		[]string{"check server", "check firewall", "increase timeout"},
		merged.Solutions,
	)
}

func TestMergeBothOverwritesPreventionAndSimilar(t *testing.T) {
	merged := Merge(patternEnrichment(), semanticEnrichment())

	assert.Equal(t, []string{"semantic prevention"}, merged.Prevention)
	assert.Equal(t, []SimilarError{{Title: "Other", Similarity: 0.4}}, merged.SimilarErrors)
	assert.InDelta(t, 0.72, merged.MatchConfidence, 1e-9)
	assert.Equal(t, []string{"step 1"}, merged.Runbook)
}

func TestMergeDeterministic(t *testing.T) {
	a := Merge(patternEnrichment(), semanticEnrichment())
	b := Merge(patternEnrichment(), semanticEnrichment())
	assert.Equal(t, a, b)
}

func TestAppendMissingDoesNotMutateInputs(t *testing.T) {
	base := []string{"a", "b"}
	extras := []string{"b", "c"}
	out := appendMissing(base, extras)

	assert.Equal(t, []string{"a", "b", "c"}, out)
	assert.Equal(t, []string{"a", "b"}, base)
	assert.Equal(t, []string{"b", "c"}, extras)
}
