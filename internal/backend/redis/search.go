package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kestrel-cloud/vqgate/internal/backend"
	"github.com/kestrel-cloud/vqgate/internal/domain"
)

// SemanticSearch embeds the query text and runs a KNN FT.SEARCH with the
// predicate as pre-filter. Records come back in backend relevance order.
func (s *Store) SemanticSearch(ctx context.Context, q backend.Query) ([]backend.Record, error) {
	if q.Collection == "" {
		return nil, fmt.Errorf("%w: collection is required", domain.ErrBackendQuery)
	}
	if q.TopK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive", domain.ErrBackendQuery)
	}
	if s.embed == nil {
		return nil, fmt.Errorf("%w: no embedder attached", domain.ErrBackendQuery)
	}

	vector, err := s.embed.Embed(ctx, q.Text)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	filterStr, err := renderPredicate(q.Predicate)
	if err != nil {
		return nil, err
	}

	knnPart := fmt.Sprintf("[KNN %d @vector $BLOB]", q.TopK)
	var queryStr string
	if filterStr != "" {
		queryStr = fmt.Sprintf("%s=>%s", filterStr, knnPart)
	} else {
		queryStr = "*=>" + knnPart
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(
		indexName(q.Collection), queryStr,
		"PARAMS", "2", "BLOB", vectorToBytes(vector),
		"DIALECT", "2",
	).Build()

	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "no such index") || isRedisErr(err, "unknown index") {
			return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, q.Collection)
		}
		return nil, fmt.Errorf("ft.search %s: %w", q.Collection, err)
	}

	return parseSearchResult(raw, docPrefix(q.Collection))
}

// parseSearchResult converts the RESP2 FT.SEARCH reply into records.
// Layout is 2-stride: [total, key1, fields1, key2, fields2, ...].
func parseSearchResult(raw []rueidis.RedisMessage, prefix string) ([]backend.Record, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	records := make([]backend.Record, 0, total)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		records = append(records, parseRecord(strings.TrimPrefix(key, prefix), fields))
	}
	return records, nil
}

func parseRecord(uuid string, fields []rueidis.RedisMessage) backend.Record {
	rec := backend.Record{
		UUID:       uuid,
		Properties: make(map[string]any, len(fields)/2),
	}

	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}

		switch name {
		case "__vector_score":
			d, err := strconv.ParseFloat(value, 64)
			if err != nil {
				continue
			}
			score := min(1, max(0, 1.0-d)) // cosine distance → similarity, clamped to [0,1]
			rec.Distance = &d
			rec.Score = &score
		case "__vector":
			// raw embedding bytes, never surfaced
		default:
			rec.Properties[name] = parseFieldValue(value)
		}
	}
	return rec
}

// parseFieldValue recovers a typed value from a flat hash field.
// Hash storage is stringly; numbers and booleans round-trip by parse.
func parseFieldValue(v string) any {
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	return v
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
