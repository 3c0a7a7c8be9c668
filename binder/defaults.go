package binder

import (
	"github.com/erraggy/oasbind/parser"
)

// ResolveDefault substitutes the schema default for a missing or blank raw
// value. It reports whether the default was used. An absent result means
// there was nothing to substitute.
//
// Literal defaults become structured candidates and are used as-is. Encoded
// (string) defaults become text candidates, so they are coerced exactly as
// if the client had sent that text.
func ResolveDefault(d *Descriptor, raw RawValue) (RawValue, bool) {
	if !isMissing(d, raw) {
		return raw, false
	}

	if !d.Schema.HasDefault() {
		return Absent(), false
	}

	def := d.Schema.Default
	switch def.Kind {
	case parser.DefaultEncoded:
		return Text(def.Text), true
	default:
		return Structured(cloneValue(def.Value)), true
	}
}

// cloneValue deep-copies decoded JSON so handlers cannot mutate a default
// shared by every request.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	}
	return v
}

// isMissing reports whether raw should be treated as not sent.
func isMissing(d *Descriptor, raw RawValue) bool {
	if !raw.blank() {
		return false
	}
	if d.AllowEmptyValue {
		if s, ok := raw.text(); ok && s == "" {
			switch d.Type() {
			case parser.TypeString, parser.TypeAny:
				return false
			}
		}
	}
	return true
}
