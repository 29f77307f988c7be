// Package document holds the read-only parent document metadata that
// search results are cited against.
package document

import (
	"fmt"
	"strings"
)

// Document is a registered source paper. The search core never mutates it.
type Document struct {
	id    string
	title string
	pages int
}

// New validates and creates a document. The id doubles as the URL slug.
func New(id, title string, pages int) (Document, error) {
	if !isValidSlug(id) {
		return Document{}, fmt.Errorf("document id must be a non-empty slug ([a-z0-9-]), got %q", id)
	}
	if strings.TrimSpace(title) == "" {
		return Document{}, fmt.Errorf("document title is required")
	}
	if pages < 1 {
		return Document{}, fmt.Errorf("pages must be >= 1, got %d", pages)
	}
	return Document{id: id, title: title, pages: pages}, nil
}

// Reconstruct rebuilds a document from storage without validation.
func Reconstruct(id, title string, pages int) Document {
	return Document{id: id, title: title, pages: pages}
}

// ID returns the document identifier (slug).
func (d *Document) ID() string { return d.id }

// Title returns the document title.
func (d *Document) Title() string { return d.title }

// Pages returns the page count.
func (d *Document) Pages() int { return d.pages }

func isValidSlug(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isLower := r >= 'a' && r <= 'z'
		isDigit := r >= '0' && r <= '9'
		if !isLower && !isDigit && r != '-' {
			return false
		}
	}
	return true
}
