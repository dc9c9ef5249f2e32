package vqgate

import "errors"

// Sentinel errors matching server error codes.
// Use errors.Is() to check.
var (
	ErrInvalidRequest      = errors.New("vqgate: invalid request")
	ErrMalformedFilter     = errors.New("vqgate: malformed filter")
	ErrUnsupportedOperator = errors.New("vqgate: unsupported operator")
	ErrFilterTooComplex    = errors.New("vqgate: filter too complex")
	ErrUnknownField        = errors.New("vqgate: unknown field")
	ErrCollectionNotFound  = errors.New("vqgate: collection not found")
	ErrEmbeddingProvider   = errors.New("vqgate: embedding provider error")
	ErrBackend             = errors.New("vqgate: backend error")
)

// APIError is a structured error response from the server.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return "vqgate: " + e.Code + ": " + e.Message
}

// Is maps server error codes onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrInvalidRequest:
		return e.Code == "bad_request"
	case ErrMalformedFilter:
		return e.Code == "malformed_filter"
	case ErrUnsupportedOperator:
		return e.Code == "unsupported_operator"
	case ErrFilterTooComplex:
		return e.Code == "filter_too_complex"
	case ErrUnknownField:
		return e.Code == "unknown_field"
	case ErrCollectionNotFound:
		return e.Code == "collection_not_found"
	case ErrEmbeddingProvider:
		return e.Code == "embedding_provider_error"
	case ErrBackend:
		return e.Code == "backend_error"
	}
	return false
}
