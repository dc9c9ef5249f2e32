// Package query implements the search pipeline: filter compilation,
// backend execution, and result normalization.
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kestrel-cloud/vqgate/internal/backend"
	"github.com/kestrel-cloud/vqgate/internal/domain"
	"github.com/kestrel-cloud/vqgate/internal/domain/search/request"
	"github.com/kestrel-cloud/vqgate/internal/domain/search/result"
)

// DefaultTimeout bounds a single backend search when the service is
// constructed with a non-positive timeout.
const DefaultTimeout = 10 * time.Second

// Service executes search requests against a vector backend. The filter is
// compiled in full before any backend I/O, so an invalid request never
// reaches the wire.
type Service struct {
	searcher Searcher
	timeout  time.Duration
}

// New creates a query service.
func New(searcher Searcher, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{searcher: searcher, timeout: timeout}
}

// Search runs one semantic search: fetch the collection schema, compile the
// filter, execute, normalize. Results keep backend relevance order; the
// service never re-sorts. Failed searches return no partial results.
func (s *Service) Search(ctx context.Context, req *request.Request) ([]result.Item, error) {
	schema, err := s.searcher.CollectionSchema(ctx, req.Collection())
	switch {
	case errors.Is(err, backend.ErrSchemaUnavailable):
		// Field validation falls through to backend execution.
		schema = nil
	case errors.Is(err, domain.ErrCollectionNotFound):
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("%w: fetch schema: %w", domain.ErrBackendQuery, err)
	}

	pred, err := Compile(req.Filter(), schema)
	if err != nil {
		return nil, err
	}

	searchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	records, err := s.searcher.SemanticSearch(searchCtx, backend.Query{
		Collection: req.Collection(),
		Text:       req.Query(),
		TopK:       req.TopK(),
		Predicate:  pred,
	})
	if err != nil {
		return nil, classifySearchErr(err)
	}

	items := make([]result.Item, 0, len(records))
	for _, rec := range records {
		item, normErr := Normalize(rec, req.ExcludeFields())
		if normErr != nil {
			return nil, normErr
		}
		items = append(items, item)
	}
	return items, nil
}

// classifySearchErr maps a backend execution failure onto the error
// taxonomy. Timeouts are surfaced distinctly and never retried here.
func classifySearchErr(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", domain.ErrBackendTimeout, err)
	case errors.Is(err, domain.ErrCollectionNotFound),
		errors.Is(err, domain.ErrBackendQuery),
		errors.Is(err, domain.ErrEmbeddingProviderError):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrBackendQuery, err)
	}
}
