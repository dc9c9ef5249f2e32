// Package predicate holds the compiled, backend-native filter
// representation. The core constructs predicates through the filter
// compiler and otherwise treats them as opaque; each backend
// implementation renders them into its own query dialect.
package predicate

import (
	"fmt"
	"strings"

	"github.com/kestrel-cloud/vqgate/internal/domain/search/filter"
)

// Kind distinguishes predicate nodes.
type Kind int

// Predicate node kinds.
const (
	// KindLeaf is a single-field comparison.
	KindLeaf Kind = iota
	// KindAll matches when every child matches (AND).
	KindAll
	// KindAny matches when at least one child matches (OR).
	KindAny
)

// Predicate is a compiled filter tree. Children keep the input order of
// the source expression so backends evaluate deterministically.
type Predicate struct {
	kind     Kind
	field    string
	operator filter.Operator
	value    filter.Scalar
	children []*Predicate
}

// NewLeaf creates a single-comparison predicate.
func NewLeaf(field string, op filter.Operator, value filter.Scalar) *Predicate {
	return &Predicate{kind: KindLeaf, field: field, operator: op, value: value}
}

// NewAll creates an AND predicate over children, preserving order.
func NewAll(children ...*Predicate) *Predicate {
	return &Predicate{kind: KindAll, children: children}
}

// NewAny creates an OR predicate over children, preserving order.
func NewAny(children ...*Predicate) *Predicate {
	return &Predicate{kind: KindAny, children: children}
}

// Kind returns the node kind.
func (p *Predicate) Kind() Kind { return p.kind }

// Field returns the leaf field name.
func (p *Predicate) Field() string { return p.field }

// Op returns the leaf operator.
func (p *Predicate) Op() filter.Operator { return p.operator }

// Value returns the leaf comparison value.
func (p *Predicate) Value() filter.Scalar { return p.value }

// Children returns the child predicates in input order.
func (p *Predicate) Children() []*Predicate { return p.children }

// String returns a deterministic debug rendering used in logs.
func (p *Predicate) String() string {
	if p == nil {
		return "*"
	}
	switch p.kind {
	case KindLeaf:
		return fmt.Sprintf("%s %s %s", p.field, p.operator, p.value.Render())
	case KindAll:
		return "(" + joinChildren(p.children, " AND ") + ")"
	case KindAny:
		return "(" + joinChildren(p.children, " OR ") + ")"
	default:
		return "?"
	}
}

func joinChildren(children []*Predicate, sep string) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = c.String()
	}
	return strings.Join(parts, sep)
}
