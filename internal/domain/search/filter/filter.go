// Package filter defines the typed filter expression model: a tagged union
// of single-field conditions and recursively nested boolean groups.
package filter

import (
	"fmt"

	"github.com/kestrel-cloud/vqgate/internal/domain"
)

// MaxDepth is the maximum allowed group nesting depth.
const MaxDepth = 20

// Operator is a comparison operator on a single field.
type Operator string

// The supported operator kinds.
const (
	OpEq   Operator = "eq"
	OpNeq  Operator = "neq"
	OpGt   Operator = "gt"
	OpGte  Operator = "gte"
	OpLt   Operator = "lt"
	OpLte  Operator = "lte"
	OpLike Operator = "like"
)

// IsValid reports whether the operator is one of the supported kinds.
func (o Operator) IsValid() bool {
	switch o {
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte, OpLike:
		return true
	}
	return false
}

// Combinator joins the children of a group.
type Combinator string

// The supported combinators.
const (
	And Combinator = "And"
	Or  Combinator = "Or"
)

// IsValid reports whether the combinator is And or Or.
func (c Combinator) IsValid() bool { return c == And || c == Or }

// Node is a filter expression: either a Condition or a Group.
// A nil Node means no filtering.
type Node interface {
	isFilterNode()
}

// ScalarKind is the runtime type of a condition value.
type ScalarKind int

// Scalar value kinds.
const (
	KindString ScalarKind = iota
	KindNumber
	KindBool
)

// Scalar is a condition value: a string, a number, or a boolean.
type Scalar struct {
	kind    ScalarKind
	str     string
	num     float64
	boolean bool
}

// String creates a string scalar.
func String(s string) Scalar { return Scalar{kind: KindString, str: s} }

// Number creates a numeric scalar.
func Number(f float64) Scalar { return Scalar{kind: KindNumber, num: f} }

// Bool creates a boolean scalar.
func Bool(b bool) Scalar { return Scalar{kind: KindBool, boolean: b} }

// Kind returns the scalar's runtime type.
func (s Scalar) Kind() ScalarKind { return s.kind }

// Str returns the string value (valid for KindString).
func (s Scalar) Str() string { return s.str }

// Num returns the numeric value (valid for KindNumber).
func (s Scalar) Num() float64 { return s.num }

// Boolean returns the boolean value (valid for KindBool).
func (s Scalar) Boolean() bool { return s.boolean }

// Render returns the scalar's wire rendering for logs and query building.
func (s Scalar) Render() string {
	switch s.kind {
	case KindNumber:
		return fmt.Sprintf("%g", s.num)
	case KindBool:
		return fmt.Sprintf("%t", s.boolean)
	default:
		return s.str
	}
}

// Condition is a single-field comparison.
type Condition struct {
	field    string
	operator Operator
	value    Scalar
}

func (Condition) isFilterNode() {}

// NewCondition validates and creates a Condition.
// like requires a string value.
func NewCondition(field string, op Operator, value Scalar) (Condition, error) {
	if field == "" {
		return Condition{}, fmt.Errorf("%w: condition field is required", domain.ErrMalformedFilter)
	}
	if !op.IsValid() {
		return Condition{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedOperator, op)
	}
	if op == OpLike && value.Kind() != KindString {
		return Condition{}, fmt.Errorf(
			"%w: like on field %q requires a string value", domain.ErrMalformedFilter, field)
	}
	return Condition{field: field, operator: op, value: value}, nil
}

// Field returns the field name.
func (c Condition) Field() string { return c.field }

// Op returns the comparison operator.
func (c Condition) Op() Operator { return c.operator }

// Value returns the comparison value.
func (c Condition) Value() Scalar { return c.value }

// Group is a boolean combination of child filter nodes, order-preserving.
type Group struct {
	combinator Combinator
	conditions []Node
}

func (Group) isFilterNode() {}

// NewGroup validates and creates a Group.
func NewGroup(combinator Combinator, conditions []Node) (Group, error) {
	if !combinator.IsValid() {
		return Group{}, fmt.Errorf("%w: unknown combinator %q", domain.ErrMalformedFilter, combinator)
	}
	if len(conditions) == 0 {
		return Group{}, fmt.Errorf("%w: group conditions must be non-empty", domain.ErrMalformedFilter)
	}
	return Group{combinator: combinator, conditions: conditions}, nil
}

// Combinator returns the boolean combinator.
func (g Group) Combinator() Combinator { return g.combinator }

// Conditions returns the child nodes in input order.
func (g Group) Conditions() []Node { return g.conditions }

// Depth returns the nesting depth of a filter node: 1 for a bare
// condition, 1 + max child depth for a group.
func Depth(n Node) int {
	g, ok := n.(Group)
	if !ok {
		return 1
	}
	maxChild := 0
	for _, c := range g.conditions {
		if d := Depth(c); d > maxChild {
			maxChild = d
		}
	}
	return 1 + maxChild
}
