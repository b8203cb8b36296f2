package knowledge

import (
	"regexp"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pipetriage/internal/catalog"
)

// PatternMatcher matches error messages against the catalog's compiled
// regex index. Stateless and safe for concurrent use.
type PatternMatcher struct {
	catalog *catalog.Catalog
	logger  *zap.Logger
}

// NewPatternMatcher creates a matcher over the given catalog.
func NewPatternMatcher(cat *catalog.Catalog, logger *zap.Logger) *PatternMatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PatternMatcher{catalog: cat, logger: logger}
}

// Match scans every catalog entry and scores it by the number of
// case-insensitive regex matches in the message. The highest count
// wins; on a tie the earlier entry is kept (a candidate must score
// strictly higher to replace the current best). Returns nil when the
// message is empty or nothing matched. Never errors on caller input.
func (m *PatternMatcher) Match(message string) *Enrichment {
	if message == "" {
		return nil
	}

	var best *catalog.Entry
	bestScore := 0

	m.catalog.Scan(func(e *catalog.Entry, re *regexp.Regexp) {
		score := len(re.FindAllStringIndex(message, -1))
		if score > bestScore {
			best = e
			bestScore = score
		}
	})

	if best == nil {
		return nil
	}

	m.logger.Debug("pattern match",
		zap.String("entry_id", best.ID),
		zap.Int("score", bestScore),
	)

	enr := fromEntry(best, "pattern")
	return &enr
}
