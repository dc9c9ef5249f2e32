package health

import (
	"context"

	"github.com/kestrel-cloud/vqgate/internal/backend"
)

// BackendChecker reports backend connectivity and version.
type BackendChecker interface {
	Health(ctx context.Context) (backend.Health, error)
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
