package binder

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/erraggy/oasbind/parser"
)

// CoercionKind classifies a coercion failure.
type CoercionKind int

const (
	// MalformedPayload means text that should hold JSON does not parse.
	MalformedPayload CoercionKind = iota + 1
	// TypeMismatch means text cannot be read as the declared scalar type.
	TypeMismatch
)

func (k CoercionKind) String() string {
	switch k {
	case MalformedPayload:
		return "MalformedPayload"
	case TypeMismatch:
		return "TypeMismatch"
	}
	return "unknown"
}

// CoercionError reports a raw value that cannot be read as its declared type.
type CoercionError struct {
	Kind CoercionKind
	// Field locates the failing item inside the value ("[2]", "Age"), if any.
	Field string
	// Value is the offending text.
	Value string
	// Expected names the target type.
	Expected string
	Cause    error
}

func (e *CoercionError) Error() string {
	return e.prefix(e.message(true))
}

// Redacted returns the message without the offending value.
func (e *CoercionError) Redacted() string {
	return e.prefix(e.message(false))
}

func (e *CoercionError) message(withValue bool) string {
	if e.Kind == MalformedPayload {
		if e.Cause != nil && withValue {
			return "invalid JSON: " + e.Cause.Error()
		}
		return "invalid JSON"
	}
	if withValue {
		return fmt.Sprintf("%q is not a valid %s", e.Value, e.Expected)
	}
	return "value is not a valid " + e.Expected
}

func (e *CoercionError) prefix(msg string) string {
	if e.Field == "" {
		return msg
	}
	return e.Field + ": " + msg
}

// Unwrap returns the underlying parse error.
func (e *CoercionError) Unwrap() error {
	return e.Cause
}

// within qualifies the error with an enclosing field.
func (e *CoercionError) within(field string) *CoercionError {
	if e.Field == "" || strings.HasPrefix(e.Field, "[") {
		e.Field = field + e.Field
	} else {
		e.Field = field + "." + e.Field
	}
	return e
}

// Coerce converts a candidate value to the descriptor's declared type.
//
// Object and array text is parsed as JSON; other array text is split by the
// collection format. Scalar text is parsed as integer, number or boolean.
// Structured values pass through unchanged, except decoded form fields,
// which are coerced per property. An absent candidate yields nil.
func Coerce(d *Descriptor, c RawValue) (any, error) {
	switch c.Kind {
	case RawAbsent:
		return nil, nil
	case RawList:
		return coerceRepeated(c.List, d.Schema, d.CollectionFormat)
	case RawStructured:
		if s, ok := c.Value.(string); ok {
			return coerceString(d, s, "")
		}
		if fields, ok := c.Value.(map[string]any); ok && c.Form {
			return coerceForm(fields, d.Schema)
		}
		return c.Value, nil
	}
	return coerceString(d, c.Text, c.ContentType)
}

func coerceString(d *Descriptor, s, contentType string) (any, error) {
	if isJSON(contentType) || (d.ContentType != "" && isJSON(d.ContentType)) {
		return decodeJSON(s)
	}
	return coerceText(s, d.Schema, d.CollectionFormat, d.Location == LocationBody)
}

// coerceText reads s as a value of schema. jsonArrays forces JSON parsing
// for arrays, as for bodies.
func coerceText(s string, schema *parser.Schema, format string, jsonArrays bool) (any, error) {
	switch t := typeOf(schema); t {
	case parser.TypeObject:
		return decodeJSON(s)
	case parser.TypeArray:
		if jsonArrays || strings.HasPrefix(strings.TrimSpace(s), "[") {
			return decodeJSON(s)
		}
		return coerceItems(splitCollection(s, format), schema.Items)
	case parser.TypeInteger, parser.TypeNumber, parser.TypeBoolean:
		return coerceScalar(s, t)
	}
	return s, nil
}

// coerceRepeated handles repeated keys. Arrays collect every value (each
// split by format unless it is multi); scalars read the first value.
func coerceRepeated(values []string, schema *parser.Schema, format string) (any, error) {
	switch typeOf(schema) {
	case parser.TypeArray:
		var parts []string
		for _, v := range values {
			if format == FormatMulti {
				parts = append(parts, v)
				continue
			}
			parts = append(parts, splitCollection(v, format)...)
		}
		return coerceItems(parts, schema.Items)
	case parser.TypeAny:
		out := make([]any, len(values))
		for i, v := range values {
			out[i] = v
		}
		return out, nil
	}
	return coerceText(values[0], schema, format, false)
}

func coerceItems(parts []string, items *parser.Schema) ([]any, error) {
	format := FormatCSV
	if items != nil && items.CollectionFormat != "" {
		format = items.CollectionFormat
	}

	out := make([]any, len(parts))
	for i, part := range parts {
		v, err := coerceText(part, items, format, false)
		if err != nil {
			if ce, ok := err.(*CoercionError); ok {
				return nil, ce.within(fmt.Sprintf("[%d]", i))
			}
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// coerceForm coerces decoded form fields against an object schema. Empty
// fields of non-string properties are dropped as not sent.
func coerceForm(fields map[string]any, schema *parser.Schema) (map[string]any, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]any, len(fields))
	for _, name := range names {
		prop := propertySchema(schema, name)

		var (
			v   any
			err error
		)
		switch raw := fields[name].(type) {
		case string:
			if raw == "" && typeOf(prop) != parser.TypeString && typeOf(prop) != parser.TypeAny {
				continue
			}
			v, err = coerceText(raw, prop, FormatCSV, false)
		case []string:
			v, err = coerceRepeated(raw, prop, FormatMulti)
		default:
			v = raw
		}
		if err != nil {
			if ce, ok := err.(*CoercionError); ok {
				return nil, ce.within(name)
			}
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

func coerceScalar(s string, t parser.SchemaType) (any, error) {
	switch t {
	case parser.TypeInteger:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, &CoercionError{Kind: TypeMismatch, Value: s, Expected: "integer", Cause: err}
		}
		return n, nil
	case parser.TypeNumber:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, &CoercionError{Kind: TypeMismatch, Value: s, Expected: "number", Cause: err}
		}
		return f, nil
	case parser.TypeBoolean:
		switch s {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, &CoercionError{Kind: TypeMismatch, Value: s, Expected: "boolean"}
	}
	return s, nil
}

func decodeJSON(s string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, &CoercionError{Kind: MalformedPayload, Value: s, Expected: "JSON", Cause: err}
	}
	return v, nil
}

func splitCollection(s, format string) []string {
	switch format {
	case FormatSSV:
		return strings.Split(s, " ")
	case FormatTSV:
		return strings.Split(s, "\t")
	case FormatPipes:
		return strings.Split(s, "|")
	case FormatMulti:
		return []string{s}
	}
	return strings.Split(s, ",")
}

func typeOf(schema *parser.Schema) parser.SchemaType {
	if schema == nil {
		return parser.TypeAny
	}
	return schema.Type
}

func propertySchema(schema *parser.Schema, name string) *parser.Schema {
	if schema == nil {
		return nil
	}
	if prop, ok := schema.Properties[name]; ok {
		return prop
	}
	return schema.AdditionalPropertiesSchema
}
