package corpus

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/scholium/paperdex/internal/db"
	"github.com/scholium/paperdex/internal/domain"
	"github.com/scholium/paperdex/internal/domain/document"
	"github.com/scholium/paperdex/internal/domain/item"
	"github.com/scholium/paperdex/internal/domain/search/hit"
	searchuc "github.com/scholium/paperdex/internal/usecase/search"
)

type fakeStore struct {
	hashes map[string]map[string]string

	knnQueries  []*db.KNNQuery
	knnResult   *db.SearchResult
	knnErr      error
	bm25Queries []*db.TextQuery
	bm25Result  *db.SearchResult
	bm25Err     error

	listQueries []string
	listResults []*db.SearchResult
	listCalls   int

	deleted []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{hashes: make(map[string]map[string]string)}
}

func (f *fakeStore) HSet(_ context.Context, key string, fields map[string]string) error {
	f.hashes[key] = fields
	return nil
}

func (f *fakeStore) HSetMulti(_ context.Context, items []db.HashSetItem) error {
	for _, it := range items {
		f.hashes[it.Key] = it.Fields
	}
	return nil
}

func (f *fakeStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	fields, ok := f.hashes[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return fields, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.hashes, k)
		f.deleted = append(f.deleted, k)
	}
	return nil
}

func (f *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.hashes[key]
	return ok, nil
}

func (f *fakeStore) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	f.knnQueries = append(f.knnQueries, q)
	if f.knnErr != nil {
		return nil, f.knnErr
	}
	if f.knnResult == nil {
		return &db.SearchResult{}, nil
	}
	return f.knnResult, nil
}

func (f *fakeStore) SearchBM25(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	f.bm25Queries = append(f.bm25Queries, q)
	if f.bm25Err != nil {
		return nil, f.bm25Err
	}
	if f.bm25Result == nil {
		return &db.SearchResult{}, nil
	}
	return f.bm25Result, nil
}

func (f *fakeStore) SearchList(
	_ context.Context, _, query string, _, _ int, _ []string,
) (*db.SearchResult, error) {
	f.listQueries = append(f.listQueries, query)
	if f.listCalls < len(f.listResults) {
		res := f.listResults[f.listCalls]
		f.listCalls++
		return res, nil
	}
	return &db.SearchResult{}, nil
}

// --- Retrieval ---

func TestSearchSemantic_BuildsQueryAndHits(t *testing.T) {
	fs := newFakeStore()
	fs.knnResult = &db.SearchResult{
		Total: 1,
		Entries: []db.SearchEntry{{
			Key:   passageKey("p1"),
			Score: 0.42,
			Fields: map[string]string{
				fieldDocID:    "attention",
				fieldDocTitle: "Attention Is All You Need",
				fieldPage:     "3",
				fieldOrdinal:  "7",
				fieldContent:  "scaled dot-product attention",
			},
		}},
	}

	r := New(fs)
	hits, err := r.SearchSemantic(context.Background(), item.SourcePassage,
		[]float32{0.1, 0.2}, searchuc.Filters{DocumentID: "attention"}, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q := fs.knnQueries[0]
	if q.IndexName != "paperdex:passages:idx" {
		t.Errorf("unexpected index: %s", q.IndexName)
	}
	if q.K != 20 {
		t.Errorf("unexpected k: %d", q.K)
	}
	if len(q.Filters) != 1 || q.Filters[0].Field != fieldDocID || q.Filters[0].Value != "attention" {
		t.Errorf("unexpected filters: %+v", q.Filters)
	}

	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	h := hits[0]
	if h.ItemID != "p1" || h.Source != item.SourcePassage || h.Channel != hit.Semantic {
		t.Errorf("unexpected hit identity: %+v", h)
	}
	if h.Raw != 0.42 {
		t.Errorf("raw distance not preserved: %v", h.Raw)
	}
	if h.DocumentTitle != "Attention Is All You Need" || h.Page != 3 || h.Ordinal != 7 {
		t.Errorf("unexpected metadata: %+v", h)
	}
}

func TestSearchSemantic_ElementTypeFilter(t *testing.T) {
	fs := newFakeStore()
	r := New(fs)

	_, err := r.SearchSemantic(context.Background(), item.SourceElement,
		[]float32{0.1}, searchuc.Filters{ElementType: item.Table}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q := fs.knnQueries[0]
	if q.IndexName != "paperdex:elements:idx" {
		t.Errorf("unexpected index: %s", q.IndexName)
	}
	if len(q.Filters) != 1 || q.Filters[0].Field != fieldElementType || q.Filters[0].Value != "table" {
		t.Errorf("unexpected filters: %+v", q.Filters)
	}
}

func TestSearchSemantic_ElementTypeIgnoredForPassages(t *testing.T) {
	fs := newFakeStore()
	r := New(fs)

	_, err := r.SearchSemantic(context.Background(), item.SourcePassage,
		[]float32{0.1}, searchuc.Filters{ElementType: item.Table}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fs.knnQueries[0].Filters) != 0 {
		t.Errorf("expected no filters, got %+v", fs.knnQueries[0].Filters)
	}
}

func TestSearchLexical_MapsScoreIntoUnitInterval(t *testing.T) {
	fs := newFakeStore()
	fs.bm25Result = &db.SearchResult{
		Total: 2,
		Entries: []db.SearchEntry{
			{Key: elementKey("e1"), Score: 3.0, Fields: map[string]string{
				fieldElementType: "figure", fieldLabel: "Figure 1",
			}},
			{Key: elementKey("e2"), Score: 0.0, Fields: map[string]string{}},
		},
	}

	r := New(fs)
	hits, err := r.SearchLexical(context.Background(), item.SourceElement,
		"transformer", searchuc.Filters{}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if math.Abs(hits[0].Raw-0.75) > 1e-9 {
		t.Errorf("score 3.0 should map to 0.75, got %v", hits[0].Raw)
	}
	if hits[1].Raw != 0 {
		t.Errorf("score 0 should map to 0, got %v", hits[1].Raw)
	}
	if hits[0].Channel != hit.Lexical || hits[0].ElementType != item.Figure || hits[0].Label != "Figure 1" {
		t.Errorf("unexpected hit: %+v", hits[0])
	}
	if fs.bm25Queries[0].TextField != fieldContent {
		t.Errorf("unexpected text field: %s", fs.bm25Queries[0].TextField)
	}
}

func TestSearchLexical_Error(t *testing.T) {
	fs := newFakeStore()
	fs.bm25Err = errors.New("boom")

	r := New(fs)
	if _, err := r.SearchLexical(context.Background(), item.SourcePassage, "x", searchuc.Filters{}, 5); err == nil {
		t.Fatal("expected error")
	}
}

// --- Documents ---

func TestPutDocument_RoundTrip(t *testing.T) {
	fs := newFakeStore()
	r := New(fs)

	doc, err := document.New("attention", "Attention Is All You Need", 15)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.PutDocument(context.Background(), doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := r.GetDocument(context.Background(), "attention")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title() != "Attention Is All You Need" || got.Pages() != 15 {
		t.Errorf("unexpected document: %+v", got)
	}
}

func TestPutDocument_AlreadyExists(t *testing.T) {
	fs := newFakeStore()
	r := New(fs)

	doc, _ := document.New("attention", "Attention Is All You Need", 15)
	if err := r.PutDocument(context.Background(), doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := r.PutDocument(context.Background(), doc)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	r := New(newFakeStore())
	_, err := r.GetDocument(context.Background(), "absent")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteDocument_PurgesItems(t *testing.T) {
	fs := newFakeStore()
	r := New(fs)

	doc, _ := document.New("attention", "Attention Is All You Need", 15)
	if err := r.PutDocument(context.Background(), doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// first list call returns passage keys, second (elements) is empty
	fs.listResults = []*db.SearchResult{
		{Total: 2, Entries: []db.SearchEntry{
			{Key: passageKey("p1")},
			{Key: passageKey("p2")},
		}},
		{Total: 0},
	}

	if err := r.DeleteDocument(context.Background(), "attention"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, q := range fs.listQueries {
		if !strings.Contains(q, `@doc_id:{attention}`) {
			t.Errorf("unexpected list query: %s", q)
		}
	}
	want := map[string]bool{
		passageKey("p1"): true,
		passageKey("p2"): true,
		docKey("attention"): true,
	}
	for _, k := range fs.deleted {
		delete(want, k)
	}
	if len(want) != 0 {
		t.Errorf("not deleted: %v", want)
	}
}

func TestDeleteDocument_NotFound(t *testing.T) {
	r := New(newFakeStore())
	err := r.DeleteDocument(context.Background(), "absent")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteDocument_EscapesSlug(t *testing.T) {
	fs := newFakeStore()
	r := New(fs)

	doc, _ := document.New("attention-is-all", "Attention", 15)
	if err := r.PutDocument(context.Background(), doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.DeleteDocument(context.Background(), "attention-is-all"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(fs.listQueries[0], `attention\-is\-all`) {
		t.Errorf("slug dashes not escaped: %s", fs.listQueries[0])
	}
}

// --- Items ---

func TestPutElements_GetElement_RoundTrip(t *testing.T) {
	fs := newFakeStore()
	r := New(fs)

	e, err := item.NewElement("e1", "attention", "Attention Is All You Need",
		4, 0, item.Equation, "Equation 1",
		"scaled dot-product attention formula",
		`\mathrm{Attention}(Q,K,V)`, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vec := []float32{0.5, -1.25}
	if err := r.PutElements(context.Background(), []item.Element{e}, [][]float32{vec}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := r.GetElement(context.Background(), "e1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Type() != item.Equation || got.Label() != "Equation 1" {
		t.Errorf("unexpected element: %+v", got)
	}
	if got.LaTeX() != `\mathrm{Attention}(Q,K,V)` {
		t.Errorf("latex not preserved: %s", got.LaTeX())
	}

	stored := fs.hashes[elementKey("e1")]
	decoded, err := bytesToVector(stored[fieldEmbedding])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decoded) != 2 || decoded[0] != 0.5 || decoded[1] != -1.25 {
		t.Errorf("vector round trip failed: %v", decoded)
	}
}

func TestPutPassages_CountMismatch(t *testing.T) {
	r := New(newFakeStore())
	p, _ := item.NewPassage("p1", "attention", "Attention", 1, 0, "body")
	err := r.PutPassages(context.Background(), []item.Passage{p}, nil)
	if err == nil {
		t.Fatal("expected count mismatch error")
	}
}

func TestGetElement_NotFound(t *testing.T) {
	r := New(newFakeStore())
	_, err := r.GetElement(context.Background(), "absent")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSnippet_Truncation(t *testing.T) {
	long := strings.Repeat("a", 600)
	got := snippet(long)
	if len([]rune(got)) != snippetMaxRunes+1 {
		t.Errorf("unexpected snippet length: %d", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "…") {
		t.Error("expected ellipsis suffix")
	}
	if snippet("short") != "short" {
		t.Error("short content should pass through")
	}
}
