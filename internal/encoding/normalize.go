package encoding

import (
	"math"
	"reflect"

	"github.com/goccy/go-json"
)

// NormalizeValue converts v to the form it takes after a JSON round trip:
//   - named string types (symbolic values) become string
//   - integers become int64, or uint64 when they do not fit
//   - floats become float64, or int64 when integral
//   - slices and arrays become []any, maps with string keys map[string]any
//   - pointers are dereferenced, nil pointers become nil
//
// []byte, structs and other values are returned unchanged.
func NormalizeValue(v any) any {
	switch t := v.(type) {
	case nil, string, bool, int64, []byte:
		return v
	case int:
		return int64(t)
	case float64:
		return normalizeFloat(t)
	case json.Number:
		return normalizeNumber(t)
	}

	return normalizeReflect(reflect.ValueOf(v))
}

func normalizeReflect(rv reflect.Value) any {
	switch rv.Kind() {
	case reflect.Invalid:
		return nil
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u <= math.MaxInt64 {
			return int64(u)
		}

		return u
	case reflect.Float32, reflect.Float64:
		return normalizeFloat(rv.Float())
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}

		return NormalizeValue(rv.Elem().Interface())
	case reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return rv.Bytes()
		}

		return normalizeList(rv)
	case reflect.Array:
		return normalizeList(rv)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return rv.Interface()
		}
		if rv.IsNil() {
			return nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = NormalizeValue(iter.Value().Interface())
		}

		return out
	default:
		return rv.Interface()
	}
}

func normalizeList(rv reflect.Value) []any {
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = NormalizeValue(rv.Index(i).Interface())
	}

	return out
}

// Clone returns a deep copy of a normalized value. Maps, slices and byte
// slices are copied; scalars are returned as is.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if t == nil {
			return t
		}
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = Clone(item)
		}

		return out
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Clone(item)
		}

		return out
	case []byte:
		if t == nil {
			return t
		}

		return append([]byte(nil), t...)
	default:
		return v
	}
}
