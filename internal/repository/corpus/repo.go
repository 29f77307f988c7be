// Package corpus implements the persistence layer for documents,
// passages and elements on top of the db facade, including the two
// retrieval channels the search usecase depends on.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/scholium/paperdex/internal/db"
	"github.com/scholium/paperdex/internal/domain"
	"github.com/scholium/paperdex/internal/domain/document"
	"github.com/scholium/paperdex/internal/domain/item"
	"github.com/scholium/paperdex/internal/domain/search/hit"
	ingestuc "github.com/scholium/paperdex/internal/usecase/ingest"
	searchuc "github.com/scholium/paperdex/internal/usecase/search"
)

// pageSize bounds one FT.SEARCH page for listing and deletion.
const pageSize = 500

// store is the consumer interface for corpus persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
}

// dbIndexManager is the consumer interface for index bootstrap.
type dbIndexManager interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
}

// Repo implements usecase/search.Repository plus the write side used
// by ingestion.
type Repo struct {
	store store
}

// New creates a corpus repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

var (
	_ searchuc.Repository = (*Repo)(nil)
	_ ingestuc.Repository = (*Repo)(nil)
)

// --- Retrieval channels ---

// SearchSemantic runs KNN over one content pool. Hit Raw values are raw
// cosine distances straight from the index.
func (r *Repo) SearchSemantic(
	ctx context.Context, source item.Source,
	vector []float32, f searchuc.Filters, k int,
) ([]hit.Hit, error) {
	q := &db.KNNQuery{
		IndexName:    indexName(source),
		Vector:       vector,
		Filters:      buildTagFilters(source, f),
		K:            k,
		ReturnFields: returnFields(source),
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("semantic %s: %w", source, err)
	}

	hits := make([]hit.Hit, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		hits = append(hits, entryToHit(source, hit.Semantic, e.Key, e.Score, e.Fields))
	}
	return hits, nil
}

// SearchLexical runs BM25 over one content pool. Hit Raw values are the
// BM25 score mapped into [0,1] via s/(s+1), higher is better.
func (r *Repo) SearchLexical(
	ctx context.Context, source item.Source,
	text string, f searchuc.Filters, k int,
) ([]hit.Hit, error) {
	q := &db.TextQuery{
		IndexName:    indexName(source),
		TextField:    fieldContent,
		Query:        text,
		Filters:      buildTagFilters(source, f),
		TopK:         k,
		ReturnFields: returnFields(source),
	}

	sr, err := r.store.SearchBM25(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("lexical %s: %w", source, err)
	}

	hits := make([]hit.Hit, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		quality := e.Score / (e.Score + 1)
		hits = append(hits, entryToHit(source, hit.Lexical, e.Key, quality, e.Fields))
	}
	return hits, nil
}

func buildTagFilters(source item.Source, f searchuc.Filters) []db.TagFilter {
	var filters []db.TagFilter
	if f.DocumentID != "" {
		filters = append(filters, db.TagFilter{Field: fieldDocID, Value: f.DocumentID})
	}
	if source == item.SourceElement && f.ElementType != "" {
		filters = append(filters, db.TagFilter{Field: fieldElementType, Value: string(f.ElementType)})
	}
	return filters
}

func returnFields(source item.Source) []string {
	fields := []string{fieldDocID, fieldDocTitle, fieldPage, fieldOrdinal, fieldContent}
	if source == item.SourceElement {
		fields = append(fields, fieldElementType, fieldLabel)
	}
	return fields
}

func entryToHit(source item.Source, ch hit.Channel, key string, raw float64, fields map[string]string) hit.Hit {
	return hit.Hit{
		ItemID:        itemIDFromKey(source, key),
		Source:        source,
		Channel:       ch,
		Raw:           raw,
		DocumentID:    fields[fieldDocID],
		DocumentTitle: fields[fieldDocTitle],
		Page:          parseIntField(fields, fieldPage),
		Ordinal:       parseIntField(fields, fieldOrdinal),
		ElementType:   item.ElementType(fields[fieldElementType]),
		Label:         fields[fieldLabel],
		Snippet:       snippet(fields[fieldContent]),
	}
}

// --- Documents ---

// PutDocument stores document metadata. Fails with ErrAlreadyExists if
// the slug is taken.
func (r *Repo) PutDocument(ctx context.Context, doc document.Document) error {
	key := docKey(doc.ID())

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check document %s: %w", doc.ID(), err)
	}
	if exists {
		return fmt.Errorf("document %s: %w", doc.ID(), domain.ErrAlreadyExists)
	}

	fields := map[string]string{
		fieldTitle: doc.Title(),
		fieldPages: strconv.Itoa(doc.Pages()),
	}
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("put document %s: %w", doc.ID(), err)
	}
	return nil
}

// GetDocument loads document metadata by slug.
func (r *Repo) GetDocument(ctx context.Context, id string) (document.Document, error) {
	fields, err := r.store.HGetAll(ctx, docKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return document.Document{}, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return document.Document{}, fmt.Errorf("get document %s: %w", id, err)
	}
	return document.Reconstruct(id, fields[fieldTitle], parseIntField(fields, fieldPages)), nil
}

// DocumentExists reports whether a document slug is registered.
func (r *Repo) DocumentExists(ctx context.Context, id string) (bool, error) {
	exists, err := r.store.Exists(ctx, docKey(id))
	if err != nil {
		return false, fmt.Errorf("check document %s: %w", id, err)
	}
	return exists, nil
}

// ListDocuments returns all registered documents.
func (r *Repo) ListDocuments(ctx context.Context) ([]document.Document, error) {
	sr, err := r.store.SearchList(ctx, domain.KeyPrefix+"documents:idx", "*",
		0, pageSize, []string{fieldTitle, fieldPages})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	docs := make([]document.Document, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		id := itemIDFromDocKey(e.Key)
		docs = append(docs, document.Reconstruct(id, e.Fields[fieldTitle], parseIntField(e.Fields, fieldPages)))
	}
	return docs, nil
}

// DeleteDocument removes a document and every passage and element
// belonging to it. Fails with ErrNotFound for unknown slugs.
func (r *Repo) DeleteDocument(ctx context.Context, id string) error {
	exists, err := r.DocumentExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	for _, source := range []item.Source{item.SourcePassage, item.SourceElement} {
		if err := r.deleteByDocument(ctx, source, id); err != nil {
			return err
		}
	}

	if err := r.store.Del(ctx, docKey(id)); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

func (r *Repo) deleteByDocument(ctx context.Context, source item.Source, docID string) error {
	escaped := strings.ReplaceAll(docID, "-", "\\-")
	query := fmt.Sprintf("@%s:{%s}", fieldDocID, escaped)

	for {
		sr, err := r.store.SearchList(ctx, indexName(source), query, 0, pageSize, []string{fieldDocID})
		if err != nil {
			return fmt.Errorf("list %s of %s: %w", source, docID, err)
		}
		if len(sr.Entries) == 0 {
			return nil
		}

		keys := make([]string, 0, len(sr.Entries))
		for _, e := range sr.Entries {
			keys = append(keys, e.Key)
		}
		if err := r.store.Del(ctx, keys...); err != nil {
			return fmt.Errorf("delete %s of %s: %w", source, docID, err)
		}

		if len(sr.Entries) < pageSize {
			return nil
		}
	}
}

// --- Items ---

// PutPassages stores passages with their embeddings in one round trip.
func (r *Repo) PutPassages(ctx context.Context, passages []item.Passage, vectors [][]float32) error {
	if len(passages) != len(vectors) {
		return fmt.Errorf("passage/vector count mismatch: %d vs %d", len(passages), len(vectors))
	}

	items := make([]db.HashSetItem, 0, len(passages))
	for i := range passages {
		items = append(items, db.HashSetItem{
			Key:    passageKey(passages[i].ID()),
			Fields: passageFields(&passages[i], vectors[i]),
		})
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("put passages: %w", err)
	}
	return nil
}

// PutElements stores elements with their embeddings in one round trip.
func (r *Repo) PutElements(ctx context.Context, elements []item.Element, vectors [][]float32) error {
	if len(elements) != len(vectors) {
		return fmt.Errorf("element/vector count mismatch: %d vs %d", len(elements), len(vectors))
	}

	items := make([]db.HashSetItem, 0, len(elements))
	for i := range elements {
		items = append(items, db.HashSetItem{
			Key:    elementKey(elements[i].ID()),
			Fields: elementFields(&elements[i], vectors[i]),
		})
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("put elements: %w", err)
	}
	return nil
}

// GetElement loads one element by id.
func (r *Repo) GetElement(ctx context.Context, id string) (item.Element, error) {
	fields, err := r.store.HGetAll(ctx, elementKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return item.Element{}, fmt.Errorf("element %s: %w", id, domain.ErrNotFound)
		}
		return item.Element{}, fmt.Errorf("get element %s: %w", id, err)
	}
	e, err := elementFromFields(id, fields)
	if err != nil {
		return item.Element{}, fmt.Errorf("decode element %s: %w", id, err)
	}
	return e, nil
}

// GetPassage loads one passage by id.
func (r *Repo) GetPassage(ctx context.Context, id string) (item.Passage, error) {
	fields, err := r.store.HGetAll(ctx, passageKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return item.Passage{}, fmt.Errorf("passage %s: %w", id, domain.ErrNotFound)
		}
		return item.Passage{}, fmt.Errorf("get passage %s: %w", id, err)
	}
	p, err := passageFromFields(id, fields)
	if err != nil {
		return item.Passage{}, fmt.Errorf("decode passage %s: %w", id, err)
	}
	return p, nil
}

func itemIDFromDocKey(key string) string {
	return key[len(docKey("")):]
}
