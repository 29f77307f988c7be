package search

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/scholium/paperdex/internal/domain"
	"github.com/scholium/paperdex/internal/domain/item"
	"github.com/scholium/paperdex/internal/domain/search/hit"
	"github.com/scholium/paperdex/internal/domain/search/query"
)

// --- Mocks ---

type mockRepo struct {
	mu sync.Mutex

	semanticHits []hit.Hit
	semanticErr  error
	lexicalHits  []hit.Hit
	lexicalErr   error

	semanticCalls int
	lexicalCalls  int
	lexicalTexts  []string
	pools         map[item.Source]int
}

func newMockRepo() *mockRepo {
	return &mockRepo{pools: make(map[item.Source]int)}
}

func (m *mockRepo) SearchSemantic(
	_ context.Context, source item.Source, _ []float32, _ Filters, _ int,
) ([]hit.Hit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.semanticCalls++
	m.pools[source]++
	return m.semanticHits, m.semanticErr
}

func (m *mockRepo) SearchLexical(
	_ context.Context, source item.Source, text string, _ Filters, _ int,
) ([]hit.Hit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lexicalCalls++
	m.pools[source]++
	m.lexicalTexts = append(m.lexicalTexts, text)
	return m.lexicalHits, m.lexicalErr
}

type mockEmbedder struct {
	mu    sync.Mutex
	vec   []float32
	err   error
	calls int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

func mustQuery(t *testing.T, text string, opts ...query.Option) *query.Query {
	t.Helper()
	q, err := query.New(text, opts...)
	if err != nil {
		t.Fatalf("query.New: %v", err)
	}
	return &q
}

// --- Tests ---

func TestSearch_HybridBothChannels(t *testing.T) {
	repo := newMockRepo()
	repo.semanticHits = []hit.Hit{passageHit("a", hit.Semantic, 0.8)}
	repo.lexicalHits = []hit.Hit{passageHit("b", hit.Lexical, 0.4)}
	embed := &mockEmbedder{vec: []float32{0.1, 0.2}}
	svc := New(repo, embed, Config{}, nil)

	q := mustQuery(t, "what papers include Adam Stewart somehow?")
	results, err := svc.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	// Two query variants (raw + keyword-extracted) across two pools:
	// 2x2 semantic sub-queries, 2x2 lexical sub-queries, 2 embeddings.
	if embed.calls != 2 {
		t.Errorf("expected 2 embedding calls, got %d", embed.calls)
	}
	if repo.semanticCalls != 4 {
		t.Errorf("expected 4 semantic sub-queries, got %d", repo.semanticCalls)
	}
	if repo.lexicalCalls != 4 {
		t.Errorf("expected 4 lexical sub-queries, got %d", repo.lexicalCalls)
	}
}

func TestSearch_SkipsIdenticalKeywordEmbedding(t *testing.T) {
	repo := newMockRepo()
	embed := &mockEmbedder{vec: []float32{0.1}}
	svc := New(repo, embed, Config{}, nil)

	// No stopwords to strip: the keyword form equals the raw query and the
	// second embedding call is skipped.
	q := mustQuery(t, "oblique mercator projection equations")
	if _, err := svc.Search(context.Background(), q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if embed.calls != 1 {
		t.Errorf("expected 1 embedding call, got %d", embed.calls)
	}
	if repo.semanticCalls != 2 {
		t.Errorf("expected 2 semantic sub-queries (one per pool), got %d", repo.semanticCalls)
	}
}

func TestSearch_LexicalFailureDegradesGracefully(t *testing.T) {
	repo := newMockRepo()
	repo.semanticHits = []hit.Hit{passageHit("a", hit.Semantic, 0.8)}
	repo.lexicalErr = errors.New("FT.SEARCH: syntax error")
	embed := &mockEmbedder{vec: []float32{0.1}}
	svc := New(repo, embed, Config{}, nil)

	q := mustQuery(t, "coordinate transformation")
	results, err := svc.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("lexical failure must not be fatal, got: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected semantic results despite lexical failure")
	}
}

func TestSearch_AllChannelsFailed(t *testing.T) {
	repo := newMockRepo()
	repo.semanticErr = errors.New("connection refused")
	repo.lexicalErr = errors.New("connection refused")
	embed := &mockEmbedder{vec: []float32{0.1}}
	svc := New(repo, embed, Config{}, nil)

	q := mustQuery(t, "coordinate transformation")
	_, err := svc.Search(context.Background(), q)
	if !errors.Is(err, domain.ErrRetrievalFailed) {
		t.Fatalf("expected ErrRetrievalFailed, got %v", err)
	}
}

func TestSearch_EmbeddingFailurePropagates(t *testing.T) {
	repo := newMockRepo()
	embed := &mockEmbedder{err: domain.ErrProviderUnavailable}
	svc := New(repo, embed, Config{}, nil)

	q := mustQuery(t, "coordinate transformation")
	_, err := svc.Search(context.Background(), q)
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	if repo.semanticCalls != 0 || repo.lexicalCalls != 0 {
		t.Error("no retrieval should run when embedding fails")
	}
}

func TestSearch_NoPoolsReturnsEmpty(t *testing.T) {
	repo := newMockRepo()
	embed := &mockEmbedder{vec: []float32{0.1}}
	svc := New(repo, embed, Config{}, nil)

	q := mustQuery(t, "anything", query.WithoutText(), query.WithoutElements())
	results, err := svc.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty result set, got %d", len(results))
	}
	if embed.calls != 0 {
		t.Error("no embedding should run when both pools are excluded")
	}
}

func TestSearch_ElementTypeFilterSkipsPassagePool(t *testing.T) {
	repo := newMockRepo()
	embed := &mockEmbedder{vec: []float32{0.1}}
	svc := New(repo, embed, Config{}, nil)

	q := mustQuery(t, "map projection diagram", query.WithElementType(item.Figure))
	if _, err := svc.Search(context.Background(), q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.pools[item.SourcePassage] != 0 {
		t.Error("passage pool must not be searched under an element type filter")
	}
	if repo.pools[item.SourceElement] == 0 {
		t.Error("element pool should be searched")
	}
}

func TestSearch_KeywordRecallForEntityNames(t *testing.T) {
	// Regression mirroring the tuning example: the raw natural-language
	// query scores ~0.992 (below threshold), the keyword-extracted form
	// ~0.919. The passage must survive with its best evidence.
	stewart := hit.Hit{
		ItemID: "p-42", Source: item.SourcePassage, Channel: hit.Semantic, Raw: 0.919,
		DocumentID: "stewart-2024", DocumentTitle: "TorchGeo", Page: 1,
		Snippet: "Adam J. Stewart et al.",
	}
	repo := newMockRepo()
	repo.semanticHits = []hit.Hit{
		{ItemID: "p-42", Source: item.SourcePassage, Channel: hit.Semantic, Raw: 0.992},
		stewart,
	}
	embed := &mockEmbedder{vec: []float32{0.1}}
	svc := New(repo, embed, Config{}, nil)

	q := mustQuery(t, "what papers include Adam Stewart somehow?")
	results, err := svc.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected exactly one deduplicated result, got %d", len(results))
	}
	if results[0].ItemID() != "p-42" {
		t.Errorf("expected p-42, got %s", results[0].ItemID())
	}
	if results[0].Score() < DefaultMinScorePct {
		t.Errorf("rescued entity match below threshold: %v", results[0].Score())
	}
}

func TestSearch_Idempotent(t *testing.T) {
	repo := newMockRepo()
	repo.semanticHits = []hit.Hit{
		passageHit("a", hit.Semantic, 0.8),
		passageHit("b", hit.Semantic, 0.85),
		passageHit("c", hit.Semantic, 0.9),
	}
	embed := &mockEmbedder{vec: []float32{0.1}}
	svc := New(repo, embed, Config{}, nil)

	q := mustQuery(t, "coordinate transformation")
	first, err := svc.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for n := 0; n < 3; n++ {
		again, err := svc.Search(context.Background(), q)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("result count changed between identical queries")
		}
		for i := range first {
			if again[i].ItemID() != first[i].ItemID() || again[i].Score() != first[i].Score() {
				t.Fatalf("ordering or scores changed between identical queries at %d", i)
			}
		}
	}
}
