// Package ingest implements the write path of the corpus: registering
// documents and adding embedded passages and elements to the two
// content pools.
package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scholium/paperdex/internal/domain"
	"github.com/scholium/paperdex/internal/domain/document"
	"github.com/scholium/paperdex/internal/domain/item"
)

// maxBatchItems bounds one ingestion request.
const maxBatchItems = 256

// PassageInput is one prose chunk to ingest.
type PassageInput struct {
	Page    int
	Ordinal int
	Body    string
}

// ElementInput is one visual element to ingest. SearchText is the
// optional pre-enriched surrogate; when empty the element's composed
// form is embedded instead.
type ElementInput struct {
	Page        int
	Ordinal     int
	Type        item.ElementType
	Label       string
	Description string
	LaTeX       string
	SearchText  string
}

// Service handles corpus writes.
type Service struct {
	repo       Repository
	embed      Embedder
	dimensions int
	logger     *zap.Logger
}

// New creates an ingest service. dimensions is the expected embedding
// width; vectors of any other width are rejected before storage.
func New(repo Repository, embed Embedder, dimensions int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, embed: embed, dimensions: dimensions, logger: logger}
}

// RegisterDocument validates and stores document metadata. The id is
// the caller-chosen slug used in citations and filters.
func (s *Service) RegisterDocument(ctx context.Context, id, title string, pages int) (document.Document, error) {
	doc, err := document.New(id, title, pages)
	if err != nil {
		return document.Document{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}

	if err := s.repo.PutDocument(ctx, doc); err != nil {
		return document.Document{}, err
	}

	s.logger.Info("Document registered",
		zap.String("document_id", doc.ID()),
		zap.Int("pages", doc.Pages()))
	return doc, nil
}

// Document loads one document by slug.
func (s *Service) Document(ctx context.Context, id string) (document.Document, error) {
	return s.repo.GetDocument(ctx, id)
}

// Documents lists all registered documents.
func (s *Service) Documents(ctx context.Context) ([]document.Document, error) {
	return s.repo.ListDocuments(ctx)
}

// RemoveDocument deletes a document with all its passages and elements.
func (s *Service) RemoveDocument(ctx context.Context, id string) error {
	if err := s.repo.DeleteDocument(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Document removed", zap.String("document_id", id))
	return nil
}

// AddPassages embeds and stores prose passages for a registered
// document. Returns the stored passages with their generated ids.
func (s *Service) AddPassages(ctx context.Context, docID string, inputs []PassageInput) ([]item.Passage, error) {
	doc, err := s.requireDocument(ctx, docID, len(inputs))
	if err != nil {
		return nil, err
	}

	passages := make([]item.Passage, 0, len(inputs))
	texts := make([]string, 0, len(inputs))
	for i, in := range inputs {
		p, err := item.NewPassage(uuid.NewString(), doc.ID(), doc.Title(), in.Page, in.Ordinal, in.Body)
		if err != nil {
			return nil, fmt.Errorf("passage %d: %w: %w", i, domain.ErrInvalidQuery, err)
		}
		passages = append(passages, p)
		texts = append(texts, p.SearchText())
	}

	vectors, err := s.embedAll(ctx, texts)
	if err != nil {
		return nil, err
	}

	if err := s.repo.PutPassages(ctx, passages, vectors); err != nil {
		return nil, err
	}

	s.logger.Info("Passages ingested",
		zap.String("document_id", docID),
		zap.Int("count", len(passages)))
	return passages, nil
}

// AddElements embeds and stores visual elements for a registered
// document. Returns the stored elements with their generated ids.
func (s *Service) AddElements(ctx context.Context, docID string, inputs []ElementInput) ([]item.Element, error) {
	doc, err := s.requireDocument(ctx, docID, len(inputs))
	if err != nil {
		return nil, err
	}

	elements := make([]item.Element, 0, len(inputs))
	texts := make([]string, 0, len(inputs))
	for i, in := range inputs {
		e, err := item.NewElement(
			uuid.NewString(), doc.ID(), doc.Title(), in.Page, in.Ordinal,
			in.Type, in.Label, in.Description, in.LaTeX, in.SearchText,
		)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w: %w", i, domain.ErrInvalidQuery, err)
		}
		elements = append(elements, e)
		texts = append(texts, e.SearchText())
	}

	vectors, err := s.embedAll(ctx, texts)
	if err != nil {
		return nil, err
	}

	if err := s.repo.PutElements(ctx, elements, vectors); err != nil {
		return nil, err
	}

	s.logger.Info("Elements ingested",
		zap.String("document_id", docID),
		zap.Int("count", len(elements)))
	return elements, nil
}

// Element loads one element by id.
func (s *Service) Element(ctx context.Context, id string) (item.Element, error) {
	return s.repo.GetElement(ctx, id)
}

// Passage loads one passage by id.
func (s *Service) Passage(ctx context.Context, id string) (item.Passage, error) {
	return s.repo.GetPassage(ctx, id)
}

func (s *Service) requireDocument(ctx context.Context, docID string, n int) (document.Document, error) {
	if n == 0 {
		return document.Document{}, fmt.Errorf("%w: no items to ingest", domain.ErrInvalidQuery)
	}
	if n > maxBatchItems {
		return document.Document{}, fmt.Errorf("%w: batch of %d exceeds limit %d",
			domain.ErrInvalidQuery, n, maxBatchItems)
	}
	return s.repo.GetDocument(ctx, docID)
}

// embedAll vectorizes texts through the batch endpoint when the
// provider has one, then enforces the configured dimension.
func (s *Service) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	var (
		result domain.BatchEmbeddingResult
		err    error
	)
	if be, ok := s.embed.(domain.BatchEmbedder); ok {
		result, err = be.BatchEmbed(ctx, texts)
	} else {
		result, err = domain.BatchFallback(ctx, s.embed, texts)
	}
	if err != nil {
		return nil, err
	}

	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts",
			domain.ErrEmbeddingFailed, len(result.Embeddings), len(texts))
	}
	for i, v := range result.Embeddings {
		if s.dimensions > 0 && len(v) != s.dimensions {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, expected %d",
				domain.ErrVectorDimMismatch, i, len(v), s.dimensions)
		}
	}

	return result.Embeddings, nil
}
