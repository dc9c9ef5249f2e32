// Package result defines the normalized search result item.
package result

import "github.com/kestrel-cloud/vqgate/internal/domain/value"

// Item is a single normalized search hit. Score and distance are optional:
// a nil pointer means the backend did not compute the metric, which is
// distinct from a computed zero.
type Item struct {
	uuid       string
	score      *float64
	distance   *float64
	properties map[string]value.Value
}

// New creates a result item.
func New(uuid string, score, distance *float64, properties map[string]value.Value) Item {
	return Item{uuid: uuid, score: score, distance: distance, properties: properties}
}

// UUID returns the record identifier (always present).
func (i *Item) UUID() string { return i.uuid }

// Score returns the relevance score, or nil if not computed.
func (i *Item) Score() *float64 { return i.score }

// Distance returns the vector distance, or nil if not computed.
func (i *Item) Distance() *float64 { return i.distance }

// Properties returns the JSON-safe record properties.
func (i *Item) Properties() map[string]value.Value { return i.properties }
