// Package request defines the validated search request value object.
package request

import (
	"fmt"

	"github.com/kestrel-cloud/vqgate/internal/domain"
	"github.com/kestrel-cloud/vqgate/internal/domain/search/filter"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	DefaultTopK    = 5
	MaxTopK        = 500
)

// Request is a validated search request. All fields are request-scoped
// and exclusively owned by one execution.
type Request struct {
	collection    string
	query         string
	topK          int
	excludeFields map[string]struct{}
	flt           filter.Node
}

// New validates and normalizes search parameters.
// topK <= 0 means absent and defaults to 5; values above MaxTopK are clamped.
// excludeFields is normalized to a set, so duplicates and ordering are
// irrelevant. flt may be nil for an unrestricted search.
func New(
	collection, query string,
	topK int,
	excludeFields []string,
	flt filter.Node,
) (Request, error) {
	if collection == "" {
		return Request{}, fmt.Errorf("%w: collection_name is required", domain.ErrInvalidRequest)
	}
	if query == "" {
		return Request{}, fmt.Errorf("%w: query is required", domain.ErrInvalidRequest)
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf(
			"%w: query too long (max %d chars)", domain.ErrInvalidRequest, MaxQueryLength)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}

	var exclude map[string]struct{}
	if len(excludeFields) > 0 {
		exclude = make(map[string]struct{}, len(excludeFields))
		for _, f := range excludeFields {
			exclude[f] = struct{}{}
		}
	}

	return Request{
		collection:    collection,
		query:         query,
		topK:          topK,
		excludeFields: exclude,
		flt:           flt,
	}, nil
}

// Collection returns the target collection name.
func (r *Request) Collection() string { return r.collection }

// Query returns the search query text.
func (r *Request) Query() string { return r.query }

// TopK returns the number of results to retrieve.
func (r *Request) TopK() int { return r.topK }

// ExcludeFields returns the set of property names to drop from results.
func (r *Request) ExcludeFields() map[string]struct{} { return r.excludeFields }

// Filter returns the parsed filter expression (nil for unrestricted search).
func (r *Request) Filter() filter.Node { return r.flt }
