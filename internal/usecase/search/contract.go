package search

import (
	"context"

	"github.com/scholium/paperdex/internal/domain"
	"github.com/scholium/paperdex/internal/domain/item"
	"github.com/scholium/paperdex/internal/domain/search/hit"
)

// Filters narrows a retrieval sub-query to one document and/or element type.
type Filters struct {
	DocumentID  string
	ElementType item.ElementType // only meaningful for the element pool
}

// Repository defines the two read contracts the dual retriever depends on.
// Implementations stamp each hit with its source pool and channel.
type Repository interface {
	// SearchSemantic runs nearest-neighbor search over stored vectors in
	// one content pool, returning up to k hits with raw cosine distances.
	SearchSemantic(
		ctx context.Context, source item.Source,
		vector []float32, f Filters, k int,
	) ([]hit.Hit, error)

	// SearchLexical runs full-text search over one content pool, returning
	// up to k hits with rank quality in [0,1].
	SearchLexical(
		ctx context.Context, source item.Source,
		text string, f Filters, k int,
	) ([]hit.Hit, error)
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
