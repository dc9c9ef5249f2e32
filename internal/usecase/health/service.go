// Package health aggregates component health checks.
package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates the backend is unreachable.
	Unhealthy Status = "error"
)

// Report aggregates health check results.
type Report struct {
	Status         Status
	BackendVersion string
}

// Service coordinates health checks.
type Service struct {
	backend   BackendChecker
	embedding EmbeddingChecker
}

// New creates a Service. embedding can be nil.
func New(backend BackendChecker, embedding EmbeddingChecker) *Service {
	return &Service{backend: backend, embedding: embedding}
}

// Check probes the backend and, when configured, the embedding provider.
// An unreachable backend is fatal; a failing embedding provider degrades.
func (s *Service) Check(ctx context.Context) Report {
	h, err := s.backend.Health(ctx)
	if err != nil || !h.Connected {
		return Report{Status: Unhealthy}
	}

	report := Report{Status: Healthy, BackendVersion: h.Version}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			report.Status = Degraded
		}
	}

	return report
}
