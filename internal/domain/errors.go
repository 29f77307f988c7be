package domain

import "errors"

var (
	// ErrInvalidQuery signals a caller error: empty query or out-of-range limit.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrProviderUnavailable signals an unreachable embedding provider.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")
	// ErrEmbeddingFailed signals unusable embedding provider output (wrong vector shape).
	ErrEmbeddingFailed = errors.New("embedding failed")
	// ErrRetrievalFailed signals that the store's search primitives failed or timed out.
	ErrRetrievalFailed = errors.New("retrieval failed")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrVectorDimMismatch signals an embedding whose dimensionality does not match the corpus.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
)
