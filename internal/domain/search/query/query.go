// Package query holds the validated search query value object.
package query

import (
	"fmt"
	"strings"

	"github.com/scholium/paperdex/internal/domain"
	"github.com/scholium/paperdex/internal/domain/item"
)

// Search parameter limits.
const (
	// DefaultLimit is the result count when the caller does not specify one.
	DefaultLimit = 10
	// MinLimit and MaxLimit bound the accepted result count.
	MinLimit = 1
	MaxLimit = 50
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
)

// Query is a validated search query.
type Query struct {
	text            string
	limit           int
	documentID      string
	elementType     item.ElementType
	includeText     bool
	includeElements bool
}

// Option overrides a default query parameter.
type Option func(*Query)

// WithLimit sets the requested result count.
func WithLimit(limit int) Option {
	return func(q *Query) { q.limit = limit }
}

// WithDocument restricts results to one source document.
func WithDocument(id string) Option {
	return func(q *Query) { q.documentID = id }
}

// WithElementType restricts element results to one type.
func WithElementType(t item.ElementType) Option {
	return func(q *Query) { q.elementType = t }
}

// WithoutText excludes prose passages from the search.
func WithoutText() Option {
	return func(q *Query) { q.includeText = false }
}

// WithoutElements excludes visual elements from the search.
func WithoutElements() Option {
	return func(q *Query) { q.includeElements = false }
}

// New validates and normalizes search parameters.
// Defaults: limit=10, both content pools included.
func New(text string, opts ...Option) (Query, error) {
	q := Query{
		text:            text,
		limit:           DefaultLimit,
		includeText:     true,
		includeElements: true,
	}
	for _, opt := range opts {
		opt(&q)
	}

	if strings.TrimSpace(q.text) == "" {
		return Query{}, fmt.Errorf("%w: query text is required", domain.ErrInvalidQuery)
	}
	if len(q.text) > MaxQueryLength {
		return Query{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidQuery, MaxQueryLength)
	}
	if q.limit < MinLimit || q.limit > MaxLimit {
		return Query{}, fmt.Errorf("%w: limit must be between %d and %d, got %d",
			domain.ErrInvalidQuery, MinLimit, MaxLimit, q.limit)
	}
	if q.elementType != "" && !q.elementType.IsValid() {
		return Query{}, fmt.Errorf("%w: invalid element type %q", domain.ErrInvalidQuery, q.elementType)
	}

	return q, nil
}

// Text returns the raw query text.
func (q *Query) Text() string { return q.text }

// Limit returns the maximum results to return.
func (q *Query) Limit() int { return q.limit }

// DocumentID returns the document filter, empty when unfiltered.
func (q *Query) DocumentID() string { return q.documentID }

// ElementType returns the element type filter, empty when unfiltered.
func (q *Query) ElementType() item.ElementType { return q.elementType }

// IncludeText reports whether prose passages are searched.
func (q *Query) IncludeText() bool { return q.includeText }

// IncludeElements reports whether visual elements are searched.
func (q *Query) IncludeElements() bool { return q.includeElements }

// Pools returns the content pools this query searches. An element type
// filter restricts the query to the element pool, since a passage can
// never match it.
func (q *Query) Pools() []item.Source {
	pools := make([]item.Source, 0, 2)
	if q.includeText && q.elementType == "" {
		pools = append(pools, item.SourcePassage)
	}
	if q.includeElements {
		pools = append(pools, item.SourceElement)
	}
	return pools
}
