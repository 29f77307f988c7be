package search

import (
	"sort"

	"github.com/scholium/paperdex/internal/domain/item"
	"github.com/scholium/paperdex/internal/domain/search/hit"
	"github.com/scholium/paperdex/internal/domain/search/result"
)

// itemKey identifies one underlying searchable item. Deduplication must key
// on the item itself, not on raw score or channel, or a match found via two
// routes would be double-counted.
type itemKey struct {
	source item.Source
	id     string
}

// mergeHits deduplicates candidates across channels and query variants,
// keeping the best normalized score per item, drops items below the
// relevance threshold, sorts descending with a deterministic tie-break,
// and truncates to limit.
func mergeHits(hits []hit.Hit, cfg Config, limit int) []result.Ranked {
	type scored struct {
		best  hit.Hit
		score float64
	}

	merged := make(map[itemKey]*scored, len(hits))

	for i := range hits {
		h := hits[i]
		s := normalize(&h, cfg.DistanceDivisor)
		key := itemKey{source: h.Source, id: h.ItemID}
		if existing, ok := merged[key]; ok {
			// An item surfacing via several routes keeps its best evidence.
			if s > existing.score {
				existing.score = s
				existing.best = h
			}
			continue
		}
		merged[key] = &scored{best: h, score: s}
	}

	ranked := make([]result.Ranked, 0, len(merged))
	for _, s := range merged {
		if s.score < cfg.MinScorePct {
			continue
		}
		h := s.best
		ranked = append(ranked, result.New(
			h.ItemID, h.Source, s.score,
			h.DocumentID, h.DocumentTitle, h.Page, h.Ordinal,
			h.ElementType, h.Label, h.Snippet,
		))
	}

	// Stable ordering: repeated identical queries return identical lists.
	sort.Slice(ranked, func(i, j int) bool {
		a, b := &ranked[i], &ranked[j]
		if a.Score() != b.Score() {
			return a.Score() > b.Score()
		}
		if a.DocumentID() != b.DocumentID() {
			return a.DocumentID() < b.DocumentID()
		}
		if a.Page() != b.Page() {
			return a.Page() < b.Page()
		}
		if a.Ordinal() != b.Ordinal() {
			return a.Ordinal() < b.Ordinal()
		}
		return a.ItemID() < b.ItemID()
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
