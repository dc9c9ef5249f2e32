// Package value provides a bounded-depth, JSON-safe value model for
// backend result properties.
package value

import (
	"encoding/base64"
	"fmt"
	"reflect"
	"time"
)

// MaxDepth bounds recursion into nested property structures.
const MaxDepth = 8

// Value is a JSON-safe value: nil, bool, float64, string, []Value,
// or map[string]Value. Coerce is the only producer.
type Value any

// Coerce converts an arbitrary backend property value into a Value.
// Scalars pass through (numeric widths collapse to float64), timestamps
// become RFC 3339 strings, byte blobs become base64, and containers are
// walked recursively up to MaxDepth. Non-representable types fall back to
// their string rendering rather than failing.
func Coerce(v any) Value {
	return coerce(v, 0)
}

func coerce(v any, depth int) Value {
	if v == nil {
		return nil
	}
	if depth >= MaxDepth {
		return render(v)
	}

	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int8:
		return float64(t)
	case int16:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case uint8:
		return float64(t)
	case uint16:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case []byte:
		return base64.StdEncoding.EncodeToString(t)
	case []float32:
		out := make([]Value, len(t))
		for i, f := range t {
			out[i] = float64(f)
		}
		return out
	case []string:
		out := make([]Value, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []any:
		out := make([]Value, len(t))
		for i, item := range t {
			out[i] = coerce(item, depth+1)
		}
		return out
	case map[string]any:
		out := make(map[string]Value, len(t))
		for k, item := range t {
			out[k] = coerce(item, depth+1)
		}
		return out
	}

	return coerceReflect(v, depth)
}

// coerceReflect handles container types not covered by the direct switch:
// typed slices, maps with convertible keys, and plain structs.
func coerceReflect(v any, depth int) Value {
	// Types carrying their own canonical rendering (UUIDs, IPs) win over
	// structural decomposition.
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return coerce(rv.Elem().Interface(), depth)
	case reflect.Slice, reflect.Array:
		out := make([]Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = coerce(rv.Index(i).Interface(), depth+1)
		}
		return out
	case reflect.Map:
		out := make(map[string]Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key, ok := iter.Key().Interface().(string)
			if !ok {
				key = render(iter.Key().Interface())
			}
			out[key] = coerce(iter.Value().Interface(), depth+1)
		}
		return out
	case reflect.Struct:
		rt := rv.Type()
		out := make(map[string]Value, rt.NumField())
		for i := 0; i < rt.NumField(); i++ {
			f := rt.Field(i)
			if !f.IsExported() {
				continue
			}
			out[f.Name] = coerce(rv.Field(i).Interface(), depth+1)
		}
		return out
	default:
		return render(v)
	}
}

func render(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", v)
}
