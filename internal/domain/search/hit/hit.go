// Package hit holds the ephemeral per-query candidate produced by the
// dual retriever and consumed by the merger. Hits are never persisted
// and never shared across queries.
package hit

import "github.com/scholium/paperdex/internal/domain/item"

// Channel tags which retrieval primitive produced a hit.
type Channel string

// Retrieval channel constants.
const (
	// Semantic hits come from nearest-neighbor search over embeddings.
	// Raw is a cosine distance, lower is closer.
	Semantic Channel = "semantic"
	// Lexical hits come from BM25 full-text search.
	// Raw is a rank quality in [0,1], higher is better.
	Lexical Channel = "lexical"
)

// Hit is a raw retrieval candidate before normalization and deduplication.
type Hit struct {
	ItemID  string
	Source  item.Source
	Channel Channel
	Raw     float64

	// Denormalized display metadata carried along so the merger can build
	// final results without a second store lookup.
	DocumentID    string
	DocumentTitle string
	Page          int
	Ordinal       int
	ElementType   item.ElementType // empty for passages
	Label         string           // empty for passages
	Snippet       string
}
