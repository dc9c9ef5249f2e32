package vqgate

import "encoding/json"

// Filter is a query filter node: a single field condition or a boolean
// group of nested filters. Build filters with the package constructors
// (Eq, Gte, And, ...) rather than constructing the struct directly.
type Filter struct {
	field    string
	operator string
	value    any
	children []*Filter
}

type conditionJSON struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

type groupJSON struct {
	Operator   string    `json:"operator"`
	Conditions []*Filter `json:"conditions"`
}

// MarshalJSON encodes the filter in the gateway wire format.
func (f *Filter) MarshalJSON() ([]byte, error) {
	if len(f.children) > 0 {
		return json.Marshal(groupJSON{Operator: f.operator, Conditions: f.children})
	}
	return json.Marshal(conditionJSON{Field: f.field, Operator: f.operator, Value: f.value})
}

func condition(field, op string, value any) *Filter {
	return &Filter{field: field, operator: op, value: value}
}

// Eq matches documents where field equals value.
func Eq(field string, value any) *Filter { return condition(field, "eq", value) }

// Neq matches documents where field does not equal value.
func Neq(field string, value any) *Filter { return condition(field, "neq", value) }

// Gt matches documents where field is greater than value.
func Gt(field string, value any) *Filter { return condition(field, "gt", value) }

// Gte matches documents where field is greater than or equal to value.
func Gte(field string, value any) *Filter { return condition(field, "gte", value) }

// Lt matches documents where field is less than value.
func Lt(field string, value any) *Filter { return condition(field, "lt", value) }

// Lte matches documents where field is less than or equal to value.
func Lte(field string, value any) *Filter { return condition(field, "lte", value) }

// Like matches documents where field matches a wildcard pattern
// (* for any sequence, ? for a single character).
func Like(field string, pattern string) *Filter { return condition(field, "like", pattern) }

// And groups filters so that all of them must match.
func And(filters ...*Filter) *Filter {
	return &Filter{operator: "And", children: filters}
}

// Or groups filters so that at least one of them must match.
func Or(filters ...*Filter) *Filter {
	return &Filter{operator: "Or", children: filters}
}
