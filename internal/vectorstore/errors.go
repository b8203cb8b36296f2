package vectorstore

import "errors"

var (
	// ErrInvalidConfig indicates invalid store configuration.
	ErrInvalidConfig = errors.New("invalid vectorstore config")

	// ErrEmptyDocuments indicates AddDocuments was called with no documents.
	ErrEmptyDocuments = errors.New("no documents provided")

	// ErrEmptyQuery indicates Search was called with an empty query.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrEmbeddingFailed wraps embedder failures.
	ErrEmbeddingFailed = errors.New("embedding generation failed")
)
