package redis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kestrel-cloud/vqgate/internal/backend"
	"github.com/kestrel-cloud/vqgate/internal/domain"
)

// ListCollections returns collection names derived from FT._LIST,
// sorted for deterministic output. Indexes outside the gateway key
// namespace are ignored.
func (s *Store) ListCollections(ctx context.Context) ([]string, error) {
	cmd := s.b().Arbitrary("FT._LIST").Build()
	raw, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("ft._list: %w", err)
	}

	names := make([]string, 0, len(raw))
	for _, idx := range raw {
		name, ok := strings.CutPrefix(idx, keyPrefix)
		if !ok {
			continue
		}
		name, ok = strings.CutSuffix(name, ":idx")
		if !ok {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// CollectionSchema introspects a collection's index via FT.INFO and
// returns its indexed fields. Vector fields are internal and omitted.
func (s *Store) CollectionSchema(ctx context.Context, name string) (*backend.Schema, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(indexName(name)).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "unknown index") || isRedisErr(err, "no such index") {
			return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
		}
		return nil, fmt.Errorf("%w: ft.info: %w", backend.ErrSchemaUnavailable, err)
	}

	// FT.INFO returns alternating key-value pairs.
	for i := 0; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil || key != "attributes" {
			continue
		}
		attrs, err := raw[i+1].ToArray()
		if err != nil {
			return nil, fmt.Errorf("%w: parse attributes: %w", backend.ErrSchemaUnavailable, err)
		}
		return parseAttributes(attrs), nil
	}
	return nil, fmt.Errorf("%w: no attributes in ft.info reply", backend.ErrSchemaUnavailable)
}

func parseAttributes(attrs []rueidis.RedisMessage) *backend.Schema {
	fields := make(map[string]backend.FieldKind, len(attrs))

	for _, attr := range attrs {
		pairs, err := attr.ToArray()
		if err != nil {
			continue
		}

		var identifier, alias, typ string
		for j := 0; j+1 < len(pairs); j += 2 {
			k, err := pairs[j].ToString()
			if err != nil {
				continue
			}
			v, err := pairs[j+1].ToString()
			if err != nil {
				continue
			}
			switch k {
			case "identifier":
				identifier = v
			case "attribute":
				alias = v
			case "type":
				typ = v
			}
		}

		name := alias
		if name == "" {
			name = identifier
		}
		if name == "" {
			continue
		}

		switch typ {
		case "TAG":
			fields[name] = backend.FieldTag
		case "NUMERIC":
			fields[name] = backend.FieldNumeric
		case "TEXT":
			fields[name] = backend.FieldText
		}
		// VECTOR and GEO attributes are not filterable fields.
	}

	return backend.NewSchema(fields)
}
