package chi

import (
	"github.com/scholium/paperdex/internal/domain/document"
	"github.com/scholium/paperdex/internal/domain/item"
	"github.com/scholium/paperdex/internal/domain/search/result"
	ingestuc "github.com/scholium/paperdex/internal/usecase/ingest"
)

// ErrorCode identifies the error category in API responses.
type ErrorCode string

// API error codes.
const (
	CodeBadRequest          ErrorCode = "bad_request"
	CodeValidationFailed    ErrorCode = "validation_failed"
	CodeNotFound            ErrorCode = "not_found"
	CodeAlreadyExists       ErrorCode = "already_exists"
	CodeVectorDimMismatch   ErrorCode = "vector_dim_mismatch"
	CodeProviderUnavailable ErrorCode = "provider_unavailable"
	CodeEmbeddingFailed     ErrorCode = "embedding_failed"
	CodeRetrievalFailed     ErrorCode = "retrieval_failed"
	CodeUnauthorized        ErrorCode = "unauthorized"
	CodeInternalError       ErrorCode = "internal_error"
)

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// --- Search ---

type searchRequest struct {
	Query           string `json:"query"`
	Limit           *int   `json:"limit,omitempty"`
	DocumentID      string `json:"document_id,omitempty"`
	ElementType     string `json:"element_type,omitempty"`
	IncludeText     *bool  `json:"include_text,omitempty"`
	IncludeElements *bool  `json:"include_elements,omitempty"`
}

type searchHit struct {
	ItemID        string  `json:"item_id"`
	Source        string  `json:"source"`
	Score         float64 `json:"score"`
	DocumentID    string  `json:"document_id"`
	DocumentTitle string  `json:"document_title"`
	Page          int     `json:"page"`
	Ordinal       int     `json:"ordinal"`
	ElementType   string  `json:"element_type,omitempty"`
	Label         string  `json:"label,omitempty"`
	Snippet       string  `json:"snippet,omitempty"`
}

type searchResponse struct {
	Results []searchHit `json:"results"`
	Count   int         `json:"count"`
}

func searchResponseFrom(ranked []result.Ranked) searchResponse {
	results := make([]searchHit, len(ranked))
	for i := range ranked {
		r := &ranked[i]
		results[i] = searchHit{
			ItemID:        r.ItemID(),
			Source:        string(r.Source()),
			Score:         r.Score(),
			DocumentID:    r.DocumentID(),
			DocumentTitle: r.DocumentTitle(),
			Page:          r.Page(),
			Ordinal:       r.Ordinal(),
			ElementType:   string(r.ElementType()),
			Label:         r.Label(),
			Snippet:       r.Snippet(),
		}
	}
	return searchResponse{Results: results, Count: len(results)}
}

// --- Documents ---

type createDocumentRequest struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Pages int    `json:"pages"`
}

type documentDTO struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Pages int    `json:"pages"`
}

func documentFrom(doc document.Document) documentDTO {
	return documentDTO{ID: doc.ID(), Title: doc.Title(), Pages: doc.Pages()}
}

type documentListResponse struct {
	Documents []documentDTO `json:"documents"`
	Count     int           `json:"count"`
}

// --- Passages ---

type passageInput struct {
	Page    int    `json:"page"`
	Ordinal int    `json:"ordinal"`
	Body    string `json:"body"`
}

type addPassagesRequest struct {
	Passages []passageInput `json:"passages"`
}

type passageDTO struct {
	ID            string `json:"id"`
	DocumentID    string `json:"document_id"`
	DocumentTitle string `json:"document_title"`
	Page          int    `json:"page"`
	Ordinal       int    `json:"ordinal"`
	Body          string `json:"body"`
}

func passageFrom(p *item.Passage) passageDTO {
	return passageDTO{
		ID:            p.ID(),
		DocumentID:    p.DocumentID(),
		DocumentTitle: p.DocumentTitle(),
		Page:          p.Page(),
		Ordinal:       p.Ordinal(),
		Body:          p.Body(),
	}
}

type addPassagesResponse struct {
	Passages []passageDTO `json:"passages"`
	Count    int          `json:"count"`
}

// --- Elements ---

type elementInput struct {
	Page        int    `json:"page"`
	Ordinal     int    `json:"ordinal"`
	Type        string `json:"type"`
	Label       string `json:"label"`
	Description string `json:"description"`
	LaTeX       string `json:"latex,omitempty"`
	SearchText  string `json:"search_text,omitempty"`
}

type addElementsRequest struct {
	Elements []elementInput `json:"elements"`
}

type elementDTO struct {
	ID            string `json:"id"`
	DocumentID    string `json:"document_id"`
	DocumentTitle string `json:"document_title"`
	Page          int    `json:"page"`
	Ordinal       int    `json:"ordinal"`
	Type          string `json:"type"`
	Label         string `json:"label"`
	Description   string `json:"description"`
	LaTeX         string `json:"latex,omitempty"`
	SearchText    string `json:"search_text,omitempty"`
}

func elementFrom(e *item.Element) elementDTO {
	return elementDTO{
		ID:            e.ID(),
		DocumentID:    e.DocumentID(),
		DocumentTitle: e.DocumentTitle(),
		Page:          e.Page(),
		Ordinal:       e.Ordinal(),
		Type:          string(e.Type()),
		Label:         e.Label(),
		Description:   e.Description(),
		LaTeX:         e.LaTeX(),
		SearchText:    e.SearchText(),
	}
}

type addElementsResponse struct {
	Elements []elementDTO `json:"elements"`
	Count    int          `json:"count"`
}

func ingestPassageInputs(inputs []passageInput) []ingestuc.PassageInput {
	out := make([]ingestuc.PassageInput, len(inputs))
	for i, in := range inputs {
		out[i] = ingestuc.PassageInput{Page: in.Page, Ordinal: in.Ordinal, Body: in.Body}
	}
	return out
}

func ingestElementInputs(inputs []elementInput) []ingestuc.ElementInput {
	out := make([]ingestuc.ElementInput, len(inputs))
	for i, in := range inputs {
		out[i] = ingestuc.ElementInput{
			Page:        in.Page,
			Ordinal:     in.Ordinal,
			Type:        item.ElementType(in.Type),
			Label:       in.Label,
			Description: in.Description,
			LaTeX:       in.LaTeX,
			SearchText:  in.SearchText,
		}
	}
	return out
}
