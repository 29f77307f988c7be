// Package result holds the final caller-facing search result.
package result

import "github.com/scholium/paperdex/internal/domain/item"

// Ranked is a single ranked search hit with its normalized score and
// enough denormalized metadata to render or cite without another lookup.
type Ranked struct {
	itemID        string
	source        item.Source
	score         float64 // 0-100, higher is better
	documentID    string
	documentTitle string
	page          int
	ordinal       int
	elementType   item.ElementType
	label         string
	snippet       string
}

// New creates a ranked result.
func New(
	itemID string, source item.Source, score float64,
	documentID, documentTitle string, page, ordinal int,
	elementType item.ElementType, label, snippet string,
) Ranked {
	return Ranked{
		itemID: itemID, source: source, score: score,
		documentID: documentID, documentTitle: documentTitle,
		page: page, ordinal: ordinal,
		elementType: elementType, label: label, snippet: snippet,
	}
}

// ItemID returns the stable identifier of the underlying item.
func (r *Ranked) ItemID() string { return r.itemID }

// Source returns which content pool the item belongs to.
func (r *Ranked) Source() item.Source { return r.source }

// Score returns the normalized relevance score on the 0-100 scale.
func (r *Ranked) Score() float64 { return r.score }

// DocumentID returns the parent document identifier.
func (r *Ranked) DocumentID() string { return r.documentID }

// DocumentTitle returns the parent document title.
func (r *Ranked) DocumentTitle() string { return r.documentTitle }

// Page returns the 1-based page number.
func (r *Ranked) Page() int { return r.page }

// Ordinal returns the position of the item within its document.
func (r *Ranked) Ordinal() int { return r.ordinal }

// ElementType returns the element type, empty for passages.
func (r *Ranked) ElementType() item.ElementType { return r.elementType }

// Label returns the element label, empty for passages.
func (r *Ranked) Label() string { return r.label }

// Snippet returns a short text excerpt for display.
func (r *Ranked) Snippet() string { return r.snippet }
