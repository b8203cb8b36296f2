package vectorstore

import "context"

// Document is a single text document to be indexed.
type Document struct {
	// ID uniquely identifies the document within the collection.
	ID string

	// Content is the text that gets embedded.
	Content string

	// Metadata is stored alongside the vector and returned on search.
	Metadata map[string]string
}

// SearchResult is one nearest-neighbor hit.
type SearchResult struct {
	ID       string
	Content  string
	Metadata map[string]string

	// Score is the cosine similarity in [-1, 1]; higher is closer.
	Score float32
}

// Embedder produces embedding vectors for text.
type Embedder interface {
	// EmbedQuery embeds a single query string.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedDocuments embeds a batch of documents.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// Store is the vector index used by the semantic matcher.
type Store interface {
	// AddDocuments indexes the given documents and returns their IDs.
	AddDocuments(ctx context.Context, docs []Document) ([]string, error)

	// Search returns up to k nearest documents for the query,
	// ordered by descending similarity.
	Search(ctx context.Context, query string, k int) ([]SearchResult, error)

	// Count returns the number of indexed documents.
	Count() int

	// Close releases resources held by the store.
	Close() error
}
