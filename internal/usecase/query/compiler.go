package query

import (
	"fmt"

	"github.com/kestrel-cloud/vqgate/internal/backend"
	"github.com/kestrel-cloud/vqgate/internal/backend/predicate"
	"github.com/kestrel-cloud/vqgate/internal/domain"
	"github.com/kestrel-cloud/vqgate/internal/domain/search/filter"
)

// Compile translates a filter expression into a backend predicate by
// recursive descent, preserving input order. A nil filter compiles to a
// nil predicate (unrestricted search). A bare top-level condition is
// wrapped so it compiles identically to a one-child AND group.
//
// When schema is non-nil, every referenced field must exist in it;
// without a schema, field validation is deferred to backend execution.
func Compile(n filter.Node, schema *backend.Schema) (*predicate.Predicate, error) {
	if n == nil {
		return nil, nil
	}
	if d := filter.Depth(n); d > filter.MaxDepth {
		return nil, fmt.Errorf(
			"%w: nesting depth %d exceeds %d", domain.ErrFilterTooComplex, d, filter.MaxDepth)
	}

	compiled, err := compileNode(n, schema)
	if err != nil {
		return nil, err
	}
	if compiled.Kind() == predicate.KindLeaf {
		return predicate.NewAll(compiled), nil
	}
	return compiled, nil
}

func compileNode(n filter.Node, schema *backend.Schema) (*predicate.Predicate, error) {
	switch t := n.(type) {
	case filter.Condition:
		return compileCondition(t, schema)
	case filter.Group:
		return compileGroup(t, schema)
	default:
		return nil, fmt.Errorf("%w: unknown filter node %T", domain.ErrMalformedFilter, n)
	}
}

func compileCondition(c filter.Condition, schema *backend.Schema) (*predicate.Predicate, error) {
	if !c.Op().IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedOperator, c.Op())
	}
	if schema != nil && !schema.Has(c.Field()) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownField, c.Field())
	}
	return predicate.NewLeaf(c.Field(), c.Op(), c.Value()), nil
}

func compileGroup(g filter.Group, schema *backend.Schema) (*predicate.Predicate, error) {
	children := make([]*predicate.Predicate, 0, len(g.Conditions()))
	for _, child := range g.Conditions() {
		compiled, err := compileNode(child, schema)
		if err != nil {
			return nil, err
		}
		children = append(children, compiled)
	}

	switch g.Combinator() {
	case filter.And:
		return predicate.NewAll(children...), nil
	case filter.Or:
		return predicate.NewAny(children...), nil
	default:
		return nil, fmt.Errorf(
			"%w: unknown combinator %q", domain.ErrMalformedFilter, g.Combinator())
	}
}
