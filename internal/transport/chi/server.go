package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/scholium/paperdex/internal/domain"
	"github.com/scholium/paperdex/internal/domain/item"
	"github.com/scholium/paperdex/internal/domain/search/query"
	healthuc "github.com/scholium/paperdex/internal/usecase/health"
	ingestuc "github.com/scholium/paperdex/internal/usecase/ingest"
	searchuc "github.com/scholium/paperdex/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the search and ingest use cases over HTTP.
type Server struct {
	search        *searchuc.Service
	ingest        *ingestuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	ingest *ingestuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search: search,
		ingest: ingest,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, CodeVectorDimMismatch),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, CodeAlreadyExists),
		sentinelHandler(domain.ErrProviderUnavailable, http.StatusServiceUnavailable, CodeProviderUnavailable),
		sentinelHandler(domain.ErrEmbeddingFailed, http.StatusInternalServerError, CodeEmbeddingFailed),
		sentinelHandler(domain.ErrRetrievalFailed, http.StatusInternalServerError, CodeRetrievalFailed),
	}
	return s
}

// Routes mounts all API endpoints on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.GetHealth)
	r.Get("/metrics", s.Metrics)

	r.Post("/search", s.Search)

	r.Route("/documents", func(r chi.Router) {
		r.Post("/", s.CreateDocument)
		r.Get("/", s.ListDocuments)
		r.Get("/{id}", s.GetDocument)
		r.Delete("/{id}", s.DeleteDocument)
		r.Post("/{id}/passages", s.AddPassages)
		r.Post("/{id}/elements", s.AddElements)
	})

	r.Get("/passages/{id}", s.GetPassage)
	r.Get("/elements/{id}", s.GetElement)
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	opts := searchOptions(&req)
	q, err := query.New(req.Query, opts...)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	ranked, err := s.search.Search(r.Context(), &q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponseFrom(ranked))
}

func searchOptions(req *searchRequest) []query.Option {
	var opts []query.Option
	if req.Limit != nil {
		opts = append(opts, query.WithLimit(*req.Limit))
	}
	if req.DocumentID != "" {
		opts = append(opts, query.WithDocument(req.DocumentID))
	}
	if req.ElementType != "" {
		opts = append(opts, query.WithElementType(item.ElementType(req.ElementType)))
	}
	if req.IncludeText != nil && !*req.IncludeText {
		opts = append(opts, query.WithoutText())
	}
	if req.IncludeElements != nil && !*req.IncludeElements {
		opts = append(opts, query.WithoutElements())
	}
	return opts
}

// CreateDocument handles POST /documents.
func (s *Server) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	doc, err := s.ingest.RegisterDocument(r.Context(), req.ID, req.Title, req.Pages)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, documentFrom(doc))
}

// ListDocuments handles GET /documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.ingest.Documents(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	out := make([]documentDTO, len(docs))
	for i := range docs {
		out[i] = documentFrom(docs[i])
	}
	writeJSON(w, http.StatusOK, documentListResponse{Documents: out, Count: len(out)})
}

// GetDocument handles GET /documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.ingest.Document(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, documentFrom(doc))
}

// DeleteDocument handles DELETE /documents/{id}. Removes the document
// and every passage and element indexed under it.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.ingest.RemoveDocument(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddPassages handles POST /documents/{id}/passages.
func (s *Server) AddPassages(w http.ResponseWriter, r *http.Request) {
	var req addPassagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	passages, err := s.ingest.AddPassages(r.Context(), chi.URLParam(r, "id"), ingestPassageInputs(req.Passages))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	out := make([]passageDTO, len(passages))
	for i := range passages {
		out[i] = passageFrom(&passages[i])
	}
	writeJSON(w, http.StatusCreated, addPassagesResponse{Passages: out, Count: len(out)})
}

// AddElements handles POST /documents/{id}/elements.
func (s *Server) AddElements(w http.ResponseWriter, r *http.Request) {
	var req addElementsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	elements, err := s.ingest.AddElements(r.Context(), chi.URLParam(r, "id"), ingestElementInputs(req.Elements))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	out := make([]elementDTO, len(elements))
	for i := range elements {
		out[i] = elementFrom(&elements[i])
	}
	writeJSON(w, http.StatusCreated, addElementsResponse{Elements: out, Count: len(out)})
}

// GetPassage handles GET /passages/{id}.
func (s *Server) GetPassage(w http.ResponseWriter, r *http.Request) {
	p, err := s.ingest.Passage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, passageFrom(&p))
}

// GetElement handles GET /elements/{id}.
func (s *Server) GetElement(w http.ResponseWriter, r *http.Request) {
	e, err := s.ingest.Element(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, elementFrom(&e))
}

// GetHealth handles GET /health. Returns 503 only when the store is
// unreachable; a degraded embedding provider still serves traffic.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrVectorDimMismatch,
		domain.ErrNotFound,
		domain.ErrAlreadyExists,
		domain.ErrProviderUnavailable,
		domain.ErrEmbeddingFailed,
		domain.ErrRetrievalFailed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
