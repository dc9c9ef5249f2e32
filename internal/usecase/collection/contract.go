package collection

import "context"

// Lister is the backend capability for collection discovery (ISP).
type Lister interface {
	ListCollections(ctx context.Context) ([]string, error)
}
