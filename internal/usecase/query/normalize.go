package query

import (
	"fmt"

	"github.com/kestrel-cloud/vqgate/internal/backend"
	"github.com/kestrel-cloud/vqgate/internal/domain"
	"github.com/kestrel-cloud/vqgate/internal/domain/search/result"
	"github.com/kestrel-cloud/vqgate/internal/domain/value"
)

// Normalize converts one raw backend record into a result item. Properties
// listed in excludeFields are dropped; the rest are coerced to JSON-safe
// values. Score and distance stay absent when the backend did not compute
// them. A record without a UUID violates the backend contract.
func Normalize(rec backend.Record, excludeFields map[string]struct{}) (result.Item, error) {
	if rec.UUID == "" {
		return result.Item{}, fmt.Errorf(
			"%w: backend record is missing uuid", domain.ErrBackendQuery)
	}

	props := make(map[string]value.Value, len(rec.Properties))
	for k, v := range rec.Properties {
		if _, excluded := excludeFields[k]; excluded {
			continue
		}
		props[k] = value.Coerce(v)
	}

	return result.New(rec.UUID, rec.Score, rec.Distance, props), nil
}
