package knowledge

// Merge combines the regex and semantic enrichments for one message.
// Pure and deterministic: equal inputs always produce equal output.
//
// The four cases:
//
//	neither matched  -> empty enrichment
//	one matched      -> that enrichment unchanged
//	both matched     -> regex enrichment as the base; semantic
//	                    solutions not already present are appended in
//	                    order; prevention and similar-errors are taken
//	                    from the semantic side; the semantic match
//	                    confidence is carried over
//
// In the both-matched case the regex side's own similar-errors and
// confidence are discarded rather than combined.
func Merge(pattern, semantic *Enrichment) Enrichment {
	patternHit := pattern != nil && pattern.Matched
	semanticHit := semantic != nil && semantic.Matched

	switch {
	case !patternHit && !semanticHit:
		return Enrichment{}
	case patternHit && !semanticHit:
		return *pattern
	case !patternHit && semanticHit:
		return *semantic
	}

	merged := *pattern
	merged.Source = "pattern+semantic"

	merged.Solutions = appendMissing(pattern.Solutions, semantic.Solutions)
	merged.Prevention = semantic.Prevention
	merged.SimilarErrors = semantic.SimilarErrors
	merged.MatchConfidence = semantic.MatchConfidence
	if len(merged.Runbook) == 0 {
		merged.Runbook = semantic.Runbook
	}

	return merged
}

// appendMissing returns base followed by the extras not already in
// base, using exact string equality. Both orders are preserved.
func appendMissing(base, extras []string) []string {
	out := make([]string, len(base), len(base)+len(extras))
	copy(out, base)

	seen := make(map[string]bool, len(base))
	for _, s := range base {
		seen[s] = true
	}
	for _, s := range extras {
		if !seen[s] {
			out = append(out, s)
			seen[s] = true
		}
	}
	return out
}
