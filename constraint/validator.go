package constraint

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"github.com/erraggy/oasbind/oaserrors"
	"github.com/erraggy/oasbind/parser"
)

// maxPatternCacheSize bounds the compiled pattern cache. The cache is
// cleared when the bound is reached.
const maxPatternCacheSize = 1000

// Validator checks coerced values against schemas. It is safe for
// concurrent use.
type Validator struct {
	// patternCache holds compiled patterns (sync.Map[string, *regexp.Regexp])
	patternCache sync.Map
	patternCount atomic.Int32

	redactValues   bool
	formatSeverity Severity
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{formatSeverity: SeverityError}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks data against schema. path names the root value and
// prefixes every violation path. The error is non-nil only when the schema
// itself cannot be evaluated.
func (v *Validator) Validate(data any, schema *parser.Schema, path string) ([]Violation, error) {
	w := &walker{v: v}
	w.validate(data, schema, path)
	return w.violations, w.err
}

// walker accumulates violations for one Validate call.
type walker struct {
	v          *Validator
	violations []Violation
	err        error
}

func (w *walker) add(path, keyword string, sev Severity, value any, format string, args ...any) {
	if w.v.redactValues {
		value = nil
	}
	w.violations = append(w.violations, Violation{
		Path:     path,
		Keyword:  keyword,
		Message:  fmt.Sprintf(format, args...),
		Severity: sev,
		Value:    value,
	})
}

func (w *walker) fail(path, keyword string, value any, format string, args ...any) {
	w.add(path, keyword, SeverityError, value, format, args...)
}

// sub runs a nested check and reports whether it produced blocking violations.
func (w *walker) sub(data any, schema *parser.Schema, path string) ([]Violation, bool) {
	inner := &walker{v: w.v}
	inner.validate(data, schema, path)
	if inner.err != nil && w.err == nil {
		w.err = inner.err
	}
	blocking := Blocking(inner.violations)
	return inner.violations, len(blocking) == 0
}

func (w *walker) validate(data any, schema *parser.Schema, path string) {
	if schema == nil {
		return
	}

	if data == nil {
		if !schema.Nullable && !schema.AllowsType(parser.TypeNull) && len(schema.DeclaredTypes()) > 0 {
			w.fail(path, "nullable", nil, "value cannot be null")
		}
		return
	}

	if !w.validateType(data, schema, path) {
		return
	}

	switch d := data.(type) {
	case string:
		w.validateString(d, schema, path)
	case []any:
		w.validateArray(d, schema, path)
	case map[string]any:
		w.validateObject(d, schema, path)
	case bool:
	default:
		if n, ok := toFloat64(d); ok {
			w.validateNumber(n, schema, path)
		}
	}

	if len(schema.Enum) > 0 {
		w.validateEnum(data, schema, path)
	}

	w.validateComposition(data, schema, path)
}

func (w *walker) validateType(data any, schema *parser.Schema, path string) bool {
	declared := schema.DeclaredTypes()
	if len(declared) == 0 {
		return true
	}

	dataType := getDataType(data)
	for _, st := range declared {
		if !typeMatches(dataType, st) {
			continue
		}
		if st == parser.TypeInteger && dataType == parser.TypeNumber {
			if f, _ := toFloat64(data); !isWhole(f) {
				if w.v.redactValues {
					w.fail(path, "type", data, "value must be an integer")
				} else {
					w.fail(path, "type", data, "value must be an integer, got %v", f)
				}
				return false
			}
		}
		return true
	}

	names := make([]string, len(declared))
	for i, st := range declared {
		names[i] = string(st)
	}
	w.fail(path, "type", data, "expected type %s but got %s", strings.Join(names, " or "), dataType)
	return false
}

func (w *walker) validateString(s string, schema *parser.Schema, path string) {
	length := utf8.RuneCountInString(s)
	if schema.MinLength != nil && length < *schema.MinLength {
		w.fail(path, "minLength", s, "string length %d is less than minimum %d", length, *schema.MinLength)
	}
	if schema.MaxLength != nil && length > *schema.MaxLength {
		w.fail(path, "maxLength", s, "string length %d exceeds maximum %d", length, *schema.MaxLength)
	}

	if schema.Pattern != "" {
		matched, err := w.v.matchPattern(schema.Pattern, s)
		switch {
		case err != nil:
			if w.err == nil {
				w.err = &oaserrors.ConfigError{
					Option:  "pattern",
					Value:   schema.Pattern,
					Message: "schema pattern does not compile",
					Cause:   err,
				}
			}
		case !matched:
			w.fail(path, "pattern", s, "string does not match pattern %q", schema.Pattern)
		}
	}

	if schema.Format != "" {
		if msg, ok := checkFormat(s, schema.Format); !ok {
			if !w.v.redactValues {
				msg = fmt.Sprintf("%q %s", s, msg)
			} else {
				msg = "value " + msg
			}
			w.add(path, "format", w.v.formatSeverity, s, "%s", msg)
		}
	}
}

func (w *walker) validateNumber(n float64, schema *parser.Schema, path string) {
	if schema.Minimum != nil {
		switch {
		case schema.ExclusiveMinimum && n <= *schema.Minimum:
			w.fail(path, "exclusiveMinimum", n, "value %v must be greater than %v", n, *schema.Minimum)
		case !schema.ExclusiveMinimum && n < *schema.Minimum:
			w.fail(path, "minimum", n, "value %v is less than minimum %v", n, *schema.Minimum)
		}
	}

	if schema.Maximum != nil {
		switch {
		case schema.ExclusiveMaximum && n >= *schema.Maximum:
			w.fail(path, "exclusiveMaximum", n, "value %v must be less than %v", n, *schema.Maximum)
		case !schema.ExclusiveMaximum && n > *schema.Maximum:
			w.fail(path, "maximum", n, "value %v exceeds maximum %v", n, *schema.Maximum)
		}
	}

	if schema.MultipleOf != nil && *schema.MultipleOf != 0 {
		if !isMultipleOf(n, *schema.MultipleOf) {
			w.fail(path, "multipleOf", n, "value %v is not a multiple of %v", n, *schema.MultipleOf)
		}
	}

	if msg, ok := checkIntegerFormat(n, schema.Format); !ok {
		w.add(path, "format", w.v.formatSeverity, n, "value %v %s", n, msg)
	}
}

func (w *walker) validateArray(arr []any, schema *parser.Schema, path string) {
	if schema.MinItems != nil && len(arr) < *schema.MinItems {
		w.fail(path, "minItems", nil, "array has %d items, minimum is %d", len(arr), *schema.MinItems)
	}
	if schema.MaxItems != nil && len(arr) > *schema.MaxItems {
		w.fail(path, "maxItems", nil, "array has %d items, maximum is %d", len(arr), *schema.MaxItems)
	}
	if schema.UniqueItems && hasDuplicates(arr) {
		w.fail(path, "uniqueItems", nil, "array items must be unique")
	}

	if schema.Items != nil {
		for i, item := range arr {
			w.validate(item, schema.Items, fmt.Sprintf("%s[%d]", path, i))
		}
	}
}

func (w *walker) validateObject(obj map[string]any, schema *parser.Schema, path string) {
	for _, req := range schema.Required {
		if _, ok := obj[req]; !ok {
			w.fail(path+"."+req, "required", nil, "required property %q is missing", req)
		}
	}

	if schema.MinProperties != nil && len(obj) < *schema.MinProperties {
		w.fail(path, "minProperties", nil, "object has %d properties, minimum is %d", len(obj), *schema.MinProperties)
	}
	if schema.MaxProperties != nil && len(obj) > *schema.MaxProperties {
		w.fail(path, "maxProperties", nil, "object has %d properties, maximum is %d", len(obj), *schema.MaxProperties)
	}

	// Sorted so the first violation is deterministic.
	names := make([]string, 0, len(obj))
	for name := range obj {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		propPath := path + "." + name
		if prop, ok := schema.Properties[name]; ok {
			w.validate(obj[name], prop, propPath)
			continue
		}
		switch {
		case schema.AdditionalPropertiesSchema != nil:
			w.validate(obj[name], schema.AdditionalPropertiesSchema, propPath)
		case schema.AdditionalProperties != nil && !*schema.AdditionalProperties:
			w.fail(propPath, "additionalProperties", nil, "additional property %q is not allowed", name)
		}
	}
}

func (w *walker) validateEnum(data any, schema *parser.Schema, path string) {
	for _, allowed := range schema.Enum {
		if equalValues(data, allowed) {
			return
		}
	}

	if w.v.redactValues {
		w.fail(path, "enum", nil, "No enum match")
		return
	}
	encoded, err := json.MarshalWithOption(data, json.DisableHTMLEscape())
	if err != nil {
		encoded = []byte(fmt.Sprintf("%v", data))
	}
	w.fail(path, "enum", data, "No enum match for: %s", encoded)
}

func (w *walker) validateComposition(data any, schema *parser.Schema, path string) {
	for i, s := range schema.AllOf {
		if nested, ok := w.sub(data, s, path); !ok {
			w.fail(path, "allOf", nil, "allOf[%d] validation failed", i)
			w.violations = append(w.violations, nested...)
		}
	}

	if len(schema.AnyOf) > 0 {
		matched := false
		for _, s := range schema.AnyOf {
			if _, ok := w.sub(data, s, path); ok {
				matched = true
				break
			}
		}
		if !matched {
			w.fail(path, "anyOf", nil, "value does not match any of the anyOf schemas")
		}
	}

	if len(schema.OneOf) > 0 {
		count := 0
		for _, s := range schema.OneOf {
			if _, ok := w.sub(data, s, path); ok {
				count++
			}
		}
		switch {
		case count == 0:
			w.fail(path, "oneOf", nil, "value does not match any of the oneOf schemas")
		case count > 1:
			w.fail(path, "oneOf", nil, "value matches %d oneOf schemas, expected exactly 1", count)
		}
	}
}

func (v *Validator) matchPattern(pattern, s string) (bool, error) {
	if cached, ok := v.patternCache.Load(pattern); ok {
		return cached.(*regexp.Regexp).MatchString(s), nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, err
	}

	// Count and clear are not atomic together; the worst case is recompiling.
	if v.patternCount.Add(1) > maxPatternCacheSize {
		v.patternCache.Range(func(key, _ any) bool {
			v.patternCache.Delete(key)
			return true
		})
		v.patternCount.Store(1)
	}
	v.patternCache.Store(pattern, re)
	return re.MatchString(s), nil
}

// getDataType returns the JSON Schema type of a Go value.
func getDataType(data any) parser.SchemaType {
	switch data.(type) {
	case nil:
		return parser.TypeNull
	case string:
		return parser.TypeString
	case float32, float64:
		return parser.TypeNumber
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return parser.TypeInteger
	case bool:
		return parser.TypeBoolean
	case []any:
		return parser.TypeArray
	case map[string]any:
		return parser.TypeObject
	}

	switch reflect.ValueOf(data).Kind() {
	case reflect.Slice, reflect.Array:
		return parser.TypeArray
	case reflect.Map, reflect.Struct:
		return parser.TypeObject
	case reflect.String:
		return parser.TypeString
	case reflect.Bool:
		return parser.TypeBoolean
	case reflect.Float32, reflect.Float64:
		return parser.TypeNumber
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return parser.TypeInteger
	}
	return "unknown"
}

func typeMatches(dataType, schemaType parser.SchemaType) bool {
	switch {
	case dataType == schemaType:
		return true
	case schemaType == parser.TypeNumber && dataType == parser.TypeInteger:
		return true
	case schemaType == parser.TypeInteger && dataType == parser.TypeNumber:
		// whole-number check happens in validateType
		return true
	case schemaType == parser.TypeFile:
		return true
	}
	return false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// normalizeNumbers rewrites every numeric value as float64 so values coerced
// to int64 compare equal to enum members decoded as float64.
func normalizeNumbers(v any) any {
	if f, ok := toFloat64(v); ok {
		return f
	}
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalizeNumbers(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = normalizeNumbers(item)
		}
		return out
	}
	return v
}

func equalValues(a, b any) bool {
	return reflect.DeepEqual(normalizeNumbers(a), normalizeNumbers(b))
}

func hasDuplicates(arr []any) bool {
	normalized := make([]any, len(arr))
	for i, item := range arr {
		normalized[i] = normalizeNumbers(item)
	}
	for i := range normalized {
		for j := i + 1; j < len(normalized); j++ {
			if reflect.DeepEqual(normalized[i], normalized[j]) {
				return true
			}
		}
	}
	return false
}

// isWhole reports whether f has no fractional part. It holds for values
// beyond the int64 range too.
func isWhole(f float64) bool {
	return !math.IsInf(f, 0) && f == math.Trunc(f)
}

// multipleOfTolerance absorbs the rounding error of dividing decimal
// fractions, such as 0.3 / 0.1.
const multipleOfTolerance = 1e-12

func isMultipleOf(n, divisor float64) bool {
	q := n / divisor
	if math.IsInf(q, 0) || math.IsNaN(q) {
		return false
	}
	return math.Abs(q-math.Round(q)) <= multipleOfTolerance*math.Max(1, math.Abs(q))
}
