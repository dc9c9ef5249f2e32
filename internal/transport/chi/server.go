// Package chi implements the HTTP API: query translation in front of the
// vector backend, collection discovery, and health.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kestrel-cloud/vqgate/internal/domain"
	"github.com/kestrel-cloud/vqgate/internal/domain/search/filter"
	"github.com/kestrel-cloud/vqgate/internal/domain/search/request"
	"github.com/kestrel-cloud/vqgate/internal/domain/search/result"
	"github.com/kestrel-cloud/vqgate/internal/domain/value"
	collectionuc "github.com/kestrel-cloud/vqgate/internal/usecase/collection"
	healthuc "github.com/kestrel-cloud/vqgate/internal/usecase/health"
)

// errorCode identifies an API error class in responses.
type errorCode string

// API error codes.
const (
	codeBadRequest          errorCode = "bad_request"
	codeMalformedFilter     errorCode = "malformed_filter"
	codeUnsupportedOperator errorCode = "unsupported_operator"
	codeFilterTooComplex    errorCode = "filter_too_complex"
	codeUnknownField        errorCode = "unknown_field"
	codeCollectionNotFound  errorCode = "collection_not_found"
	codeEmbeddingProvider   errorCode = "embedding_provider_error"
	codeBackendError        errorCode = "backend_error"
	codeInternalError       errorCode = "internal_error"
)

// errorResponse is the JSON error body.
type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// searchRequestDTO is the POST /query body.
type searchRequestDTO struct {
	CollectionName string          `json:"collection_name"`
	Query          string          `json:"query"`
	TopK           *int            `json:"top_k,omitempty"`
	ExcludeFields  []string        `json:"exclude_fields,omitempty"`
	Filter         json.RawMessage `json:"filter,omitempty"`
}

// searchResultItemDTO is one normalized hit in the POST /query response.
// Score and distance are omitted when the backend did not compute them.
type searchResultItemDTO struct {
	UUID       string                 `json:"uuid"`
	Score      *float64               `json:"score,omitempty"`
	Distance   *float64               `json:"distance,omitempty"`
	Properties map[string]value.Value `json:"properties"`
}

// collectionsResponse is the GET /collections body.
type collectionsResponse struct {
	Collections []string `json:"collections"`
}

// healthResponse is the GET /health body.
type healthResponse struct {
	Status         string `json:"status"`
	BackendVersion string `json:"backend_version,omitempty"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// searchService is the query capability consumed by the server (ISP).
type searchService interface {
	Search(ctx context.Context, req *request.Request) ([]result.Item, error)
}

// Server serves the gateway HTTP API.
type Server struct {
	search        searchService
	collections   *collectionuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search searchService,
	collections *collectionuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:      search,
		collections: collections,
		health:      health,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, codeBadRequest),
		sentinelHandler(domain.ErrUnsupportedOperator, http.StatusBadRequest, codeUnsupportedOperator),
		sentinelHandler(domain.ErrFilterTooComplex, http.StatusBadRequest, codeFilterTooComplex),
		sentinelHandler(domain.ErrMalformedFilter, http.StatusBadRequest, codeMalformedFilter),
		sentinelHandler(domain.ErrUnknownField, http.StatusBadRequest, codeUnknownField),
		sentinelHandler(domain.ErrCollectionNotFound, http.StatusNotFound, codeCollectionNotFound),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProvider),
		sentinelHandler(domain.ErrBackendTimeout, http.StatusInternalServerError, codeBackendError),
		sentinelHandler(domain.ErrBackendQuery, http.StatusInternalServerError, codeBackendError),
	}
	return s
}

// Routes registers all endpoints on a chi router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/collections", s.ListCollections)
	r.Post("/query", s.Query)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Query handles POST /query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var dto searchRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	// An explicit non-positive top_k is rejected; values above the cap
	// are clamped by request.New.
	if dto.TopK != nil && *dto.TopK <= 0 {
		writeError(w, http.StatusBadRequest, codeBadRequest, "top_k must be at least 1")
		return
	}

	flt, err := filter.Parse(dto.Filter)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	req, err := request.New(dto.CollectionName, dto.Query, derefInt(dto.TopK), dto.ExcludeFields, flt)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := make([]searchResultItemDTO, 0, len(items))
	for i := range items {
		resp = append(resp, resultItemToDTO(&items[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListCollections handles GET /collections.
func (s *Server) ListCollections(w http.ResponseWriter, r *http.Request) {
	names, err := s.collections.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, collectionsResponse{Collections: names})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:         string(report.Status),
		BackendVersion: report.BackendVersion,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func resultItemToDTO(item *result.Item) searchResultItemDTO {
	props := item.Properties()
	if props == nil {
		props = map[string]value.Value{}
	}
	return searchResultItemDTO{
		UUID:       item.UUID(),
		Score:      item.Score(),
		Distance:   item.Distance(),
		Properties: props,
	}
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrMalformedFilter,
		domain.ErrUnsupportedOperator,
		domain.ErrFilterTooComplex,
		domain.ErrUnknownField,
		domain.ErrCollectionNotFound,
		domain.ErrEmbeddingProviderError,
		domain.ErrBackendTimeout,
		domain.ErrBackendQuery,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
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
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
