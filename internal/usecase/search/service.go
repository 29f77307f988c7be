// Package search implements the hybrid query engine: keyword extraction,
// dual semantic+lexical retrieval, score normalization and best-score
// merging. Every call is stateless; concurrent callers share nothing but
// the store and provider connection pools.
package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/scholium/paperdex/internal/domain/search/query"
	"github.com/scholium/paperdex/internal/domain/search/result"
	"github.com/scholium/paperdex/internal/metrics"
)

// Service is the sole public entry point for search queries.
type Service struct {
	repo   Repository
	embed  Embedder
	cfg    Config
	logger *zap.Logger
}

// New creates a search service. Zero-value cfg fields fall back to the
// tuned defaults.
func New(repo Repository, embed Embedder, cfg Config, logger *zap.Logger) *Service {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, embed: embed, cfg: cfg, logger: logger}
}

// Search executes one hybrid query and returns the ranked, capped result
// list. An empty list is a valid outcome ("no good matches"), distinct
// from a search failure.
func (s *Service) Search(ctx context.Context, q *query.Query) ([]result.Ranked, error) {
	if len(q.Pools()) == 0 {
		return nil, nil
	}

	start := time.Now()
	keywords := ExtractKeywords(q.Text())

	hits, err := s.retrieve(ctx, q, keywords)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	ranked := mergeHits(hits, s.cfg, q.Limit())

	metrics.SearchRequestsTotal.WithLabelValues("success").Inc()
	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	metrics.SearchResultsReturned.Observe(float64(len(ranked)))

	s.logger.Debug("search completed",
		zap.String("query", q.Text()),
		zap.String("keywords", keywords),
		zap.Int("candidates", len(hits)),
		zap.Int("results", len(ranked)),
	)
	return ranked, nil
}
