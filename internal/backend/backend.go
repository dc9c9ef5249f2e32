// Package backend defines the client capability consumed by the query core.
// A Client is constructed once at process start and shared read-only across
// concurrent requests.
package backend

import (
	"context"
	"errors"

	"github.com/kestrel-cloud/vqgate/internal/backend/predicate"
)

// ErrSchemaUnavailable signals that the backend cannot introspect the
// collection schema; field validation is then deferred to execution time.
var ErrSchemaUnavailable = errors.New("backend: schema introspection unavailable")

// ErrKeyNotFound signals a cache-miss on the backend key-value store.
var ErrKeyNotFound = errors.New("backend: key not found")

// Client is the vector-search backend capability.
type Client interface {
	// ListCollections returns the names of all collections.
	ListCollections(ctx context.Context) ([]string, error)

	// CollectionSchema returns the indexed field schema of a collection.
	// Returns domain.ErrCollectionNotFound for a missing collection and
	// ErrSchemaUnavailable when introspection is unsupported.
	CollectionSchema(ctx context.Context, name string) (*Schema, error)

	// SemanticSearch runs a similarity search and returns raw records in
	// backend relevance order. Returns domain.ErrCollectionNotFound when
	// the collection does not exist.
	SemanticSearch(ctx context.Context, q Query) ([]Record, error)

	// Health reports connectivity and the backend server version.
	Health(ctx context.Context) (Health, error)
}

// Query is the input for a semantic search. The backend owns query
// vectorization; the core only supplies text.
type Query struct {
	Collection string
	Text       string
	TopK       int
	Predicate  *predicate.Predicate
}

// Record is a raw search hit as returned by the backend, before
// normalization. Property values may carry backend-specific types.
type Record struct {
	UUID       string
	Score      *float64
	Distance   *float64
	Properties map[string]any
}

// FieldKind is the indexing type of a schema field.
type FieldKind string

// Schema field kinds.
const (
	FieldText    FieldKind = "text"
	FieldTag     FieldKind = "tag"
	FieldNumeric FieldKind = "numeric"
)

// Schema describes the indexed fields of a collection.
type Schema struct {
	fields map[string]FieldKind
}

// NewSchema creates a Schema from a field-name to kind mapping.
func NewSchema(fields map[string]FieldKind) *Schema {
	return &Schema{fields: fields}
}

// Has reports whether the schema contains a field.
func (s *Schema) Has(field string) bool {
	_, ok := s.fields[field]
	return ok
}

// Kind returns the indexing kind of a field.
func (s *Schema) Kind(field string) (FieldKind, bool) {
	k, ok := s.fields[field]
	return k, ok
}

// Fields returns the field-name to kind mapping.
func (s *Schema) Fields() map[string]FieldKind { return s.fields }

// Health is the backend health report.
type Health struct {
	Connected bool
	Version   string
}
