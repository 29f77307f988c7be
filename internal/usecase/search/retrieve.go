package search

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/scholium/paperdex/internal/domain"
	"github.com/scholium/paperdex/internal/domain/search/hit"
	"github.com/scholium/paperdex/internal/domain/search/query"
	"github.com/scholium/paperdex/internal/metrics"
)

// retrieve runs the dual retrieval pass: embeds the raw and keyword query
// forms, then fans out semantic and lexical sub-queries across the allowed
// content pools, joining at a single barrier. Sub-queries over-fetch
// (limit x oversample) because dedup and thresholding shrink the set.
//
// A channel that fails while the other succeeds degrades gracefully:
// semantic-only or lexical-only evidence is still useful. Only when no
// sub-query at all succeeds does the call fail with ErrRetrievalFailed.
func (s *Service) retrieve(ctx context.Context, q *query.Query, keywords string) ([]hit.Hit, error) {
	texts := []string{q.Text()}
	if keywords != q.Text() {
		texts = append(texts, keywords)
	}

	// Embedding failures are not degraded around: the provider error
	// category must reach the caller intact (retryable vs config mismatch).
	vectors := make([][]float32, len(texts))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, text := range texts {
		i, text := i, text
		eg.Go(func() error {
			res, err := s.embed.Embed(egCtx, text)
			if err != nil {
				return fmt.Errorf("embed query: %w", err)
			}
			vectors[i] = res.Embedding
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	pools := q.Pools()
	k := q.Limit() * s.cfg.Oversample
	f := Filters{DocumentID: q.DocumentID(), ElementType: q.ElementType()}

	var (
		mu           sync.Mutex
		hits         []hit.Hit
		okByChannel  = make(map[hit.Channel]int, 2)
		errByChannel = make(map[hit.Channel]error, 2)
	)
	collect := func(ch hit.Channel, res []hit.Hit, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			if errByChannel[ch] == nil {
				errByChannel[ch] = err
			}
			return
		}
		okByChannel[ch]++
		hits = append(hits, res...)
	}

	g, gCtx := errgroup.WithContext(ctx)
	for _, pool := range pools {
		pool := pool
		for _, vec := range vectors {
			vec := vec
			g.Go(func() error {
				res, err := s.repo.SearchSemantic(gCtx, pool, vec, f, k)
				collect(hit.Semantic, res, err)
				return nil
			})
		}
		for _, text := range texts {
			text := text
			g.Go(func() error {
				res, err := s.repo.SearchLexical(gCtx, pool, text, f, k)
				collect(hit.Lexical, res, err)
				return nil
			})
		}
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrievalFailed, err)
	}

	semErr, lexErr := errByChannel[hit.Semantic], errByChannel[hit.Lexical]
	if okByChannel[hit.Semantic] == 0 && okByChannel[hit.Lexical] == 0 &&
		(semErr != nil || lexErr != nil) {
		cause := semErr
		if cause == nil {
			cause = lexErr
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrievalFailed, cause)
	}
	if semErr != nil {
		metrics.SearchDegradedTotal.WithLabelValues(string(hit.Semantic)).Inc()
		s.logger.Warn("semantic channel degraded", zap.Error(semErr))
	}
	if lexErr != nil {
		metrics.SearchDegradedTotal.WithLabelValues(string(hit.Lexical)).Inc()
		s.logger.Warn("lexical channel degraded", zap.Error(lexErr))
	}

	return hits, nil
}
