package encoding

import (
	"bytes"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// ErrTrailingData is returned when a JSON value is followed by more input.
var ErrTrailingData = errors.New("unexpected data after top-level JSON value")

// DecodeJSON decodes exactly one JSON value.
//
// Numbers are decoded as int64 when they are integers that fit, uint64 for
// larger non-negative integers, and float64 otherwise. Objects decode to
// map[string]any and arrays to []any.
func DecodeJSON(data []byte) (any, error) {
	if !json.Valid(data) {
		var probe any
		if err := json.Unmarshal(data, &probe); err != nil {
			return nil, err
		}

		return nil, ErrTrailingData
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	return normalizeDecoded(v), nil
}

// EncodeJSON encodes v canonically: object keys sorted and no HTML escaping.
func EncodeJSON(v any) ([]byte, error) {
	return json.MarshalNoEscape(v)
}

// Shape returns the JSON type name of a decoded value.
func Shape(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int64, uint64, float64, json.Number:
		return "number"
	default:
		return "value"
	}
}

func normalizeDecoded(v any) any {
	switch t := v.(type) {
	case json.Number:
		return normalizeNumber(t)
	case map[string]any:
		for k, item := range t {
			t[k] = normalizeDecoded(item)
		}

		return t
	case []any:
		for i, item := range t {
			t[i] = normalizeDecoded(item)
		}

		return t
	default:
		return v
	}
}

func normalizeNumber(n json.Number) any {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return u
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// out of float64 range; keep the exact text
		return n
	}

	return normalizeFloat(f)
}

// normalizeFloat collapses integral floats to int64 or uint64, matching what a
// float64 decodes as after it has been written as JSON.
func normalizeFloat(f float64) any {
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 && !math.IsInf(f, 0) {
		return int64(f)
	}
	if f == math.Trunc(f) && f >= 1<<63 && f < 1<<64 {
		return uint64(f)
	}

	return f
}
