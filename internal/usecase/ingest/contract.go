package ingest

import (
	"context"

	"github.com/scholium/paperdex/internal/domain"
	"github.com/scholium/paperdex/internal/domain/document"
	"github.com/scholium/paperdex/internal/domain/item"
)

// Repository is the write-side persistence contract for ingestion.
type Repository interface {
	PutDocument(ctx context.Context, doc document.Document) error
	GetDocument(ctx context.Context, id string) (document.Document, error)
	ListDocuments(ctx context.Context) ([]document.Document, error)
	DeleteDocument(ctx context.Context, id string) error

	PutPassages(ctx context.Context, passages []item.Passage, vectors [][]float32) error
	PutElements(ctx context.Context, elements []item.Element, vectors [][]float32) error
	GetElement(ctx context.Context, id string) (item.Element, error)
	GetPassage(ctx context.Context, id string) (item.Passage, error)
}

// Embedder vectorizes item search text. Providers with a native batch
// endpoint additionally implement domain.BatchEmbedder; the service
// falls back to sequential embedding otherwise.
type Embedder interface {
	domain.Embedder
}
