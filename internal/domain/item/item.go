// Package item holds the two searchable content variants of the corpus:
// prose passages and extracted visual elements.
package item

import (
	"fmt"
	"strings"
)

// Source discriminates the two content pools.
type Source string

// Content pool constants.
const (
	// SourcePassage identifies prose passages extracted from document pages.
	SourcePassage Source = "passage"
	// SourceElement identifies visual elements (figures, tables, equations).
	SourceElement Source = "element"
)

// IsValid checks if the source is one of the supported pools.
func (s Source) IsValid() bool {
	return s == SourcePassage || s == SourceElement
}

// ElementType enumerates the kinds of visual elements the extraction
// pipeline produces.
type ElementType string

// Element type constants.
const (
	Figure   ElementType = "figure"
	Table    ElementType = "table"
	Equation ElementType = "equation"
	Chart    ElementType = "chart"
	Diagram  ElementType = "diagram"
)

// IsValid checks if the element type is one of the supported values.
func (t ElementType) IsValid() bool {
	switch t {
	case Figure, Table, Equation, Chart, Diagram:
		return true
	}
	return false
}

// Passage is a prose chunk of one document page. Immutable once created.
type Passage struct {
	id            string
	documentID    string
	documentTitle string
	page          int
	ordinal       int
	body          string
}

// NewPassage validates and creates a passage.
func NewPassage(id, documentID, documentTitle string, page, ordinal int, body string) (Passage, error) {
	if id == "" {
		return Passage{}, fmt.Errorf("passage id is required")
	}
	if documentID == "" {
		return Passage{}, fmt.Errorf("document id is required")
	}
	if strings.TrimSpace(body) == "" {
		return Passage{}, fmt.Errorf("passage body is required")
	}
	if page < 1 {
		return Passage{}, fmt.Errorf("page must be >= 1, got %d", page)
	}
	if ordinal < 0 {
		return Passage{}, fmt.Errorf("ordinal must be >= 0, got %d", ordinal)
	}
	return Passage{
		id: id, documentID: documentID, documentTitle: documentTitle,
		page: page, ordinal: ordinal, body: body,
	}, nil
}

// ID returns the stable passage identifier.
func (p *Passage) ID() string { return p.id }

// DocumentID returns the parent document identifier.
func (p *Passage) DocumentID() string { return p.documentID }

// DocumentTitle returns the denormalized parent document title.
func (p *Passage) DocumentTitle() string { return p.documentTitle }

// Page returns the 1-based page number.
func (p *Passage) Page() int { return p.page }

// Ordinal returns the position of the passage within its document.
func (p *Passage) Ordinal() int { return p.ordinal }

// Body returns the passage text.
func (p *Passage) Body() string { return p.body }

// SearchText returns the text the passage embedding is computed over.
func (p *Passage) SearchText() string { return p.body }

// Element is an extracted visual element of one document page.
// Immutable once created.
type Element struct {
	id            string
	documentID    string
	documentTitle string
	page          int
	ordinal       int
	elementType   ElementType
	label         string
	description   string
	latex         string
	searchText    string
}

// NewElement validates and creates an element. latex is allowed only for
// equations; searchText is the optional pre-enriched search surrogate.
func NewElement(
	id, documentID, documentTitle string, page, ordinal int,
	elementType ElementType, label, description, latex, searchText string,
) (Element, error) {
	if id == "" {
		return Element{}, fmt.Errorf("element id is required")
	}
	if documentID == "" {
		return Element{}, fmt.Errorf("document id is required")
	}
	if !elementType.IsValid() {
		return Element{}, fmt.Errorf("invalid element type: %q", elementType)
	}
	if strings.TrimSpace(label) == "" {
		return Element{}, fmt.Errorf("element label is required")
	}
	if strings.TrimSpace(description) == "" {
		return Element{}, fmt.Errorf("element description is required")
	}
	if latex != "" && elementType != Equation {
		return Element{}, fmt.Errorf("latex is only valid for equations, got type %q", elementType)
	}
	if page < 1 {
		return Element{}, fmt.Errorf("page must be >= 1, got %d", page)
	}
	if ordinal < 0 {
		return Element{}, fmt.Errorf("ordinal must be >= 0, got %d", ordinal)
	}
	return Element{
		id: id, documentID: documentID, documentTitle: documentTitle,
		page: page, ordinal: ordinal,
		elementType: elementType, label: label, description: description,
		latex: latex, searchText: searchText,
	}, nil
}

// ID returns the stable element identifier.
func (e *Element) ID() string { return e.id }

// DocumentID returns the parent document identifier.
func (e *Element) DocumentID() string { return e.documentID }

// DocumentTitle returns the denormalized parent document title.
func (e *Element) DocumentTitle() string { return e.documentTitle }

// Page returns the 1-based page number.
func (e *Element) Page() int { return e.page }

// Ordinal returns the position of the element within its document.
func (e *Element) Ordinal() int { return e.ordinal }

// Type returns the element type tag.
func (e *Element) Type() ElementType { return e.elementType }

// Label returns the human-readable label, e.g. "Figure 3".
func (e *Element) Label() string { return e.label }

// Description returns the natural-language description from extraction.
func (e *Element) Description() string { return e.description }

// LaTeX returns the markup for equation elements, empty otherwise.
func (e *Element) LaTeX() string { return e.latex }

// SearchText returns the text the element embedding is computed over:
// the enriched surrogate when one was supplied, otherwise a composed
// "<type> <label>: <description>" form.
func (e *Element) SearchText() string {
	if e.searchText != "" {
		return e.searchText
	}
	return fmt.Sprintf("%s %s: %s", e.elementType, e.label, e.description)
}
