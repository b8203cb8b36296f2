package knowledge

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pipetriage/internal/catalog"
	"github.com/fyrsmithlabs/pipetriage/internal/vectorstore"
)

const semanticInstrumentation = "pipetriage.knowledge.semantic"

// SimilarityFloor is the minimum cosine similarity (inclusive) for a
// semantic hit to count as a match. Below it the matcher reports no
// match but still surfaces the closest entry title.
const SimilarityFloor = 0.3

// runbookMaxSteps caps the remediation checklist length.
const runbookMaxSteps = 8

// defaultSearchK is how many neighbors Enrich retrieves: the best
// match plus up to two similar errors.
const defaultSearchK = 3

// SemanticMatcher matches error messages against the vector index of
// catalog entries.
type SemanticMatcher struct {
	store   vectorstore.Store
	catalog *catalog.Catalog
	logger  *zap.Logger

	searches metric.Int64Counter
	misses   metric.Int64Counter
}

// NewSemanticMatcher creates a matcher over the given store and
// catalog. Call EnsureIndexed before first use.
func NewSemanticMatcher(store vectorstore.Store, cat *catalog.Catalog, logger *zap.Logger) *SemanticMatcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	meter := otel.Meter(semanticInstrumentation)
	searches, _ := meter.Int64Counter("pipetriage.knowledge.semantic.searches",
		metric.WithDescription("Semantic knowledge-base searches"))
	misses, _ := meter.Int64Counter("pipetriage.knowledge.semantic.misses",
		metric.WithDescription("Semantic searches below the similarity floor"))

	return &SemanticMatcher{
		store:    store,
		catalog:  cat,
		logger:   logger,
		searches: searches,
		misses:   misses,
	}
}

// EnsureIndexed populates the vector store with one document per
// catalog entry, but only when the store is empty. The store count is
// the source of truth, so restarts reuse the persisted index and
// population stays idempotent.
func (m *SemanticMatcher) EnsureIndexed(ctx context.Context) error {
	ctx, span := otel.Tracer(semanticInstrumentation).Start(ctx, "SemanticMatcher.EnsureIndexed")
	defer span.End()

	if count := m.store.Count(); count > 0 {
		span.SetAttributes(attribute.Int("existing_documents", count))
		m.logger.Debug("vector index already populated", zap.Int("documents", count))
		return nil
	}

	entries := m.catalog.All()
	docs := make([]vectorstore.Document, len(entries))
	for i := range entries {
		e := &entries[i]
		docs[i] = vectorstore.Document{
			ID:      e.ID,
			Content: e.Document(),
			Metadata: map[string]string{
				"category": string(e.Category),
				"severity": string(e.Severity),
				"title":    e.Title,
			},
		}
	}

	if _, err := m.store.AddDocuments(ctx, docs); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("populating vector index: %w", err)
	}

	span.SetAttributes(attribute.Int("indexed_documents", len(docs)))
	m.logger.Info("vector index populated", zap.Int("documents", len(docs)))
	return nil
}

// Search returns up to k catalog entries nearest to the message,
// descending by similarity. Hits whose IDs are unknown to the catalog
// are skipped.
func (m *SemanticMatcher) Search(ctx context.Context, message string, k int) ([]Match, error) {
	ctx, span := otel.Tracer(semanticInstrumentation).Start(ctx, "SemanticMatcher.Search")
	defer span.End()

	span.SetAttributes(attribute.Int("k", k))
	m.searches.Add(ctx, 1)

	results, err := m.store.Search(ctx, message, k)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("semantic search: %w", err)
	}

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		entry := m.catalog.ByID(r.ID)
		if entry == nil {
			m.logger.Warn("vector hit for unknown catalog entry", zap.String("id", r.ID))
			continue
		}
		matches = append(matches, Match{Entry: entry, Similarity: float64(r.Score)})
	}

	span.SetAttributes(attribute.Int("matches", len(matches)))
	return matches, nil
}

// Enrich searches the index and accepts the top hit when its
// similarity clears the floor (inclusive). Runner-up hits become
// SimilarErrors; the matched entry's solutions become the runbook.
// Below the floor the enrichment reports no match with the closest
// title. An empty message yields an unmatched enrichment, not an error.
func (m *SemanticMatcher) Enrich(ctx context.Context, message string) (*Enrichment, error) {
	if message == "" {
		return &Enrichment{}, nil
	}

	matches, err := m.Search(ctx, message, defaultSearchK)
	if err != nil {
		return nil, err
	}

	enr := EnrichFromMatches(matches)
	if !enr.Matched {
		if enr.ClosestTitle != "" {
			m.misses.Add(ctx, 1)
			m.logger.Debug("semantic match below floor",
				zap.String("closest", enr.ClosestTitle),
			)
		}
		return enr, nil
	}

	m.logger.Debug("semantic match",
		zap.String("entry_id", enr.EntryID),
		zap.Float64("similarity", enr.MatchConfidence),
	)
	return enr, nil
}

// EnrichFromMatches builds a semantic enrichment from search hits
// already in hand. Pure; the floor, runbook and similar-error rules
// live here so Enrich and the analyzer cannot diverge.
func EnrichFromMatches(matches []Match) *Enrichment {
	if len(matches) == 0 {
		return &Enrichment{}
	}

	best := matches[0]
	if best.Similarity < SimilarityFloor {
		return &Enrichment{ClosestTitle: best.Entry.Title}
	}

	enr := fromEntry(best.Entry, "semantic")
	enr.MatchConfidence = best.Similarity
	enr.Runbook = runbookFrom(best.Entry)

	for _, rm := range matches[1:] {
		enr.SimilarErrors = append(enr.SimilarErrors, SimilarError{
			Title:      rm.Entry.Title,
			Category:   string(rm.Entry.Category),
			Similarity: rm.Similarity,
		})
	}
	return &enr
}

// runbookFrom turns an entry's solutions into an ordered checklist,
// capped at runbookMaxSteps.
func runbookFrom(e *catalog.Entry) []string {
	steps := e.Solutions
	if len(steps) > runbookMaxSteps {
		steps = steps[:runbookMaxSteps]
	}
	out := make([]string, len(steps))
	copy(out, steps)
	return out
}
