package filter

import (
	"encoding/json"
	"fmt"

	"github.com/kestrel-cloud/vqgate/internal/domain"
)

// Parse decodes a filter expression from its JSON wire form into a Node.
// It is a pure syntactic pass: it fails closed with domain.ErrMalformedFilter
// on any unrecognized shape and never consults the backend.
//
// Wire shapes:
//
//	condition: {"field": "status", "operator": "eq", "value": "active"}
//	group:     {"operator": "And", "conditions": [<condition|group>, ...]}
func Parse(raw json.RawMessage) (Node, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	return parseNode(raw, 1)
}

func parseNode(raw json.RawMessage, depth int) (Node, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("%w: nesting exceeds %d levels", domain.ErrFilterTooComplex, MaxDepth)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("%w: expected a JSON object: %v", domain.ErrMalformedFilter, err)
	}

	_, hasField := obj["field"]
	_, hasConditions := obj["conditions"]

	switch {
	case hasField && hasConditions:
		return nil, fmt.Errorf(
			"%w: object mixes condition key %q with group key %q",
			domain.ErrMalformedFilter, "field", "conditions")
	case hasConditions:
		return parseGroup(obj, depth)
	case hasField:
		return parseCondition(obj)
	default:
		return nil, fmt.Errorf(
			"%w: object is neither a condition nor a group", domain.ErrMalformedFilter)
	}
}

func parseGroup(obj map[string]json.RawMessage, depth int) (Node, error) {
	if err := rejectUnknownKeys(obj, "operator", "conditions"); err != nil {
		return nil, err
	}

	combinator := And
	if raw, ok := obj["operator"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: combinator must be a string", domain.ErrMalformedFilter)
		}
		combinator = Combinator(s)
		if !combinator.IsValid() {
			return nil, fmt.Errorf("%w: unknown combinator %q", domain.ErrMalformedFilter, s)
		}
	}

	var rawChildren []json.RawMessage
	if err := json.Unmarshal(obj["conditions"], &rawChildren); err != nil {
		return nil, fmt.Errorf("%w: conditions must be an array", domain.ErrMalformedFilter)
	}

	children := make([]Node, 0, len(rawChildren))
	for _, rc := range rawChildren {
		child, err := parseNode(rc, depth+1)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	return NewGroup(combinator, children)
}

func parseCondition(obj map[string]json.RawMessage) (Node, error) {
	if err := rejectUnknownKeys(obj, "field", "operator", "value"); err != nil {
		return nil, err
	}

	var field string
	if err := json.Unmarshal(obj["field"], &field); err != nil {
		return nil, fmt.Errorf("%w: field must be a string", domain.ErrMalformedFilter)
	}

	rawOp, ok := obj["operator"]
	if !ok {
		return nil, fmt.Errorf("%w: condition is missing %q", domain.ErrMalformedFilter, "operator")
	}
	var opStr string
	if err := json.Unmarshal(rawOp, &opStr); err != nil {
		return nil, fmt.Errorf("%w: operator must be a string", domain.ErrMalformedFilter)
	}
	op := Operator(opStr)
	if !op.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedOperator, opStr)
	}

	rawValue, ok := obj["value"]
	if !ok {
		return nil, fmt.Errorf("%w: condition is missing %q", domain.ErrMalformedFilter, "value")
	}
	scalar, err := parseScalar(rawValue)
	if err != nil {
		return nil, err
	}

	return NewCondition(field, op, scalar)
}

func parseScalar(raw json.RawMessage) (Scalar, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return Scalar{}, fmt.Errorf("%w: invalid condition value", domain.ErrMalformedFilter)
	}
	switch t := v.(type) {
	case string:
		return String(t), nil
	case float64:
		return Number(t), nil
	case bool:
		return Bool(t), nil
	default:
		return Scalar{}, fmt.Errorf(
			"%w: condition value must be a string, number, or boolean, got %T",
			domain.ErrMalformedFilter, v)
	}
}

func rejectUnknownKeys(obj map[string]json.RawMessage, allowed ...string) error {
	for k := range obj {
		known := false
		for _, a := range allowed {
			if k == a {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("%w: unknown key %q", domain.ErrMalformedFilter, k)
		}
	}
	return nil
}
