package query

import (
	"context"

	"github.com/kestrel-cloud/vqgate/internal/backend"
)

// Searcher is the backend capability consumed by the executor (ISP).
type Searcher interface {
	CollectionSchema(ctx context.Context, name string) (*backend.Schema, error)
	SemanticSearch(ctx context.Context, q backend.Query) ([]backend.Record, error)
}
