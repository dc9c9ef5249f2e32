package domain

import "errors"

var (
	// ErrInvalidRequest signals a request missing required fields.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrMalformedFilter signals a filter expression that failed syntactic validation.
	ErrMalformedFilter = errors.New("malformed filter")
	// ErrUnsupportedOperator signals a filter operator outside the supported set.
	ErrUnsupportedOperator = errors.New("unsupported filter operator")
	// ErrFilterTooComplex signals filter nesting beyond the complexity bound.
	ErrFilterTooComplex = errors.New("filter too complex")
	// ErrUnknownField signals a filter field absent from the collection schema.
	ErrUnknownField = errors.New("unknown filter field")

	// ErrCollectionNotFound signals a missing collection.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrBackendQuery signals a backend execution failure; the wrap chain
	// preserves the original diagnostic.
	ErrBackendQuery = errors.New("backend query failed")
	// ErrBackendTimeout signals that the backend call exceeded its deadline.
	ErrBackendTimeout = errors.New("backend query timed out")

	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
