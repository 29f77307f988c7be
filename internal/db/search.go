package db

// TagFilter restricts a search to entries whose TAG field equals Value.
type TagFilter struct {
	Field string
	Value string
}

// KNNQuery is the input for vector similarity search. The returned entry
// scores are raw cosine distances (lower = closer).
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	Filters      []TagFilter
	K            int
	ReturnFields []string
}

// TextQuery is the input for BM25 full-text search. The returned entry
// scores are raw BM25 scores (higher = better).
type TextQuery struct {
	IndexName    string
	TextField    string
	Query        string
	Filters      []TagFilter
	TopK         int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
