// Package collection exposes collection discovery over the backend.
package collection

import (
	"context"
	"fmt"

	"github.com/kestrel-cloud/vqgate/internal/domain"
)

// Service handles collection discovery.
type Service struct {
	lister Lister
}

// New creates a collection service.
func New(lister Lister) *Service {
	return &Service{lister: lister}
}

// List returns all collection names known to the backend.
func (s *Service) List(ctx context.Context) ([]string, error) {
	names, err := s.lister.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list collections: %w", domain.ErrBackendQuery, err)
	}
	return names, nil
}
