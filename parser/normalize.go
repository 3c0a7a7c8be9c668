package parser

import (
	"fmt"
	"time"
)

// normalizeValue converts a YAML-decoded value into the shapes produced by
// JSON decoding: float64 numbers, map[string]any objects and []any arrays.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case int32:
		return float64(t)
	case uint:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	case time.Time:
		return t.Format(time.RFC3339)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeValue(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeValue(val)
		}
		return out
	default:
		return v
	}
}

func toFloat64(v any) (float64, bool) {
	switch n := normalizeValue(v).(type) {
	case float64:
		return n, true
	}
	return 0, false
}

func floatPtr(v any) *float64 {
	if f, ok := toFloat64(v); ok {
		return &f
	}
	return nil
}

func intPtr(v any) *int {
	if f, ok := toFloat64(v); ok {
		i := int(f)
		return &i
	}
	return nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func boolField(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func mapField(m map[string]any, key string) map[string]any {
	switch t := m[key].(type) {
	case map[string]any:
		return t
	case map[any]any:
		out, _ := normalizeValue(t).(map[string]any)
		return out
	}
	return nil
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
