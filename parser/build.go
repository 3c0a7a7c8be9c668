package parser

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/erraggy/oasbind/internal/httputil"
	"github.com/erraggy/oasbind/oaserrors"
)

// DefaultMaxSchemaDepth bounds schema nesting while building the model.
const DefaultMaxSchemaDepth = 64

// builder turns a decoded document into the parameter model.
type builder struct {
	version  OASVersion
	refs     *refResolver
	maxDepth int
	log      Logger

	schemas  map[string]*Schema
	building map[string]bool
	warnings []string
}

func newBuilder(root map[string]any, version OASVersion, maxDepth int, log Logger) *builder {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxSchemaDepth
	}
	return &builder{
		version:  version,
		refs:     newRefResolver(root),
		maxDepth: maxDepth,
		log:      log,
		schemas:  make(map[string]*Schema),
		building: make(map[string]bool),
	}
}

func (b *builder) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	b.warnings = append(b.warnings, msg)
	b.log.Warn("parser: "+msg)
}

func (b *builder) buildPaths(root map[string]any, globalConsumes []string) (map[string]*PathItem, error) {
	raw := mapField(root, "paths")
	paths := make(map[string]*PathItem, len(raw))

	templates := make([]string, 0, len(raw))
	for tmpl := range raw {
		if strings.HasPrefix(tmpl, "x-") {
			continue
		}
		templates = append(templates, tmpl)
	}
	sort.Strings(templates)

	for _, tmpl := range templates {
		itemMap, _, err := b.refs.follow(raw[tmpl])
		if err != nil {
			return nil, fmt.Errorf("paths.%s: %w", tmpl, err)
		}
		if itemMap == nil {
			continue
		}

		item := &PathItem{Path: tmpl, operations: make(map[string]*Operation)}
		item.Parameters, err = b.buildParameters(itemMap["parameters"], "paths."+tmpl+".parameters")
		if err != nil {
			return nil, err
		}

		for _, method := range httputil.Methods {
			opNode, ok := itemMap[httputil.FieldName(method)]
			if !ok {
				continue
			}
			opMap, ok := opNode.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("paths.%s.%s: operation must be an object", tmpl, httputil.FieldName(method))
			}
			op, err := b.buildOperation(opMap, method, tmpl, globalConsumes)
			if err != nil {
				return nil, err
			}
			item.operations[method] = op
		}
		paths[tmpl] = item
	}
	return paths, nil
}

func (b *builder) buildOperation(m map[string]any, method, tmpl string, globalConsumes []string) (*Operation, error) {
	at := fmt.Sprintf("paths.%s.%s", tmpl, httputil.FieldName(method))
	op := &Operation{
		Method:      method,
		Path:        tmpl,
		OperationID: stringField(m, "operationId"),
		Summary:     stringField(m, "summary"),
		BodyName:    stringField(m, "x-codegen-request-body-name"),
	}

	var err error
	op.Parameters, err = b.buildParameters(m["parameters"], at+".parameters")
	if err != nil {
		return nil, err
	}

	if b.version.IsOAS2() {
		op.Consumes = stringList(m["consumes"])
		if len(op.Consumes) == 0 {
			op.Consumes = globalConsumes
		}
		return op, nil
	}

	if node, ok := m["requestBody"]; ok {
		op.RequestBody, err = b.buildRequestBody(node, at+".requestBody")
		if err != nil {
			return nil, err
		}
	}
	return op, nil
}

func (b *builder) buildParameters(node any, at string) ([]*Parameter, error) {
	if node == nil {
		return nil, nil
	}
	items, ok := node.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: parameters must be an array", at)
	}
	params := make([]*Parameter, 0, len(items))
	for i, item := range items {
		p, err := b.buildParameter(item, fmt.Sprintf("%s[%d]", at, i))
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, nil
}

func (b *builder) buildParameter(node any, at string) (*Parameter, error) {
	m, _, err := b.refs.follow(node)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", at, err)
	}
	if m == nil {
		return nil, fmt.Errorf("%s: parameter must be an object", at)
	}

	p := &Parameter{
		Name:             stringField(m, "name"),
		In:               stringField(m, "in"),
		Description:      stringField(m, "description"),
		Required:         boolField(m, "required"),
		AllowEmptyValue:  boolField(m, "allowEmptyValue"),
		CollectionFormat: stringField(m, "collectionFormat"),
		Style:            stringField(m, "style"),
	}
	if p.Name == "" || p.In == "" {
		return nil, fmt.Errorf("%s: parameter requires both name and in", at)
	}
	if explode, ok := m["explode"].(bool); ok {
		p.Explode = &explode
	}

	switch {
	case b.version.IsOAS2() && p.In == InBody:
		p.Schema, err = b.optionalSchema(m["schema"], at+".schema")
	case b.version.IsOAS2():
		// Type, items, enum and default live on the parameter itself.
		p.Schema, err = b.buildSchema(m, at, 0)
	case m["schema"] != nil:
		p.Schema, err = b.buildSchema(m["schema"], at+".schema", 0)
	default:
		p.ContentType, p.Schema, err = b.firstMediaType(mapField(m, "content"), at+".content")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (b *builder) buildRequestBody(node any, at string) (*RequestBody, error) {
	m, _, err := b.refs.follow(node)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", at, err)
	}
	if m == nil {
		return nil, fmt.Errorf("%s: requestBody must be an object", at)
	}

	rb := &RequestBody{
		Description: stringField(m, "description"),
		Required:    boolField(m, "required"),
		Name:        stringField(m, "x-body-name"),
		Content:     make(map[string]*MediaType),
	}
	for mediaType, mtNode := range mapField(m, "content") {
		mt, _ := mtNode.(map[string]any)
		schema, err := b.optionalSchema(mt["schema"], at+".content."+mediaType+".schema")
		if err != nil {
			return nil, err
		}
		rb.Content[mediaType] = &MediaType{Schema: schema}
	}
	return rb, nil
}

func (b *builder) firstMediaType(content map[string]any, at string) (string, *Schema, error) {
	if len(content) == 0 {
		return "", &Schema{}, nil
	}
	keys := make([]string, 0, len(content))
	for k := range content {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 1 {
		b.warn("%s: parameter declares %d media types, using %s", at, len(keys), keys[0])
	}
	mt, _ := content[keys[0]].(map[string]any)
	schema, err := b.optionalSchema(mt["schema"], at+"."+keys[0]+".schema")
	return keys[0], schema, err
}

// optionalSchema builds node, or returns an empty schema when node is nil.
func (b *builder) optionalSchema(node any, at string) (*Schema, error) {
	if node == nil {
		return &Schema{}, nil
	}
	return b.buildSchema(node, at, 0)
}

func (b *builder) buildSchema(node any, at string, depth int) (*Schema, error) {
	if depth > b.maxDepth {
		return nil, &oaserrors.ResourceLimitError{
			ResourceType: "schema_depth",
			Limit:        int64(b.maxDepth),
			Message:      "schema nested too deeply at " + at,
		}
	}

	switch t := node.(type) {
	case bool:
		// OAS 3.1 boolean schemas. false is not representable as a bindable value.
		if !t {
			return nil, fmt.Errorf("%s: false schema cannot describe a parameter", at)
		}
		return &Schema{}, nil
	case map[string]any:
		if ref, ok := t["$ref"].(string); ok {
			return b.buildRef(ref, at, depth)
		}
		return b.buildSchemaMap(t, at, depth)
	default:
		return nil, fmt.Errorf("%s: schema must be an object, got %T", at, node)
	}
}

func (b *builder) buildRef(ref, at string, depth int) (*Schema, error) {
	if s, ok := b.schemas[ref]; ok {
		return s, nil
	}
	if b.building[ref] {
		return nil, &oaserrors.ReferenceError{Ref: ref, IsCircular: true, Message: "referenced from " + at}
	}

	target, err := b.refs.resolve(ref)
	if err != nil {
		return nil, err
	}

	b.building[ref] = true
	s, err := b.buildSchema(target, ref, depth+1)
	delete(b.building, ref)
	if err != nil {
		return nil, err
	}

	s.Ref = ref
	b.schemas[ref] = s
	return s, nil
}

func (b *builder) buildSchemaMap(m map[string]any, at string, depth int) (*Schema, error) {
	s := &Schema{
		Title:            stringField(m, "title"),
		Description:      stringField(m, "description"),
		Format:           stringField(m, "format"),
		Pattern:          stringField(m, "pattern"),
		Nullable:         boolField(m, "nullable") || boolField(m, "x-nullable"),
		UniqueItems:      boolField(m, "uniqueItems"),
		CollectionFormat: stringField(m, "collectionFormat"),
		MinLength:        intPtr(m["minLength"]),
		MaxLength:        intPtr(m["maxLength"]),
		MinItems:         intPtr(m["minItems"]),
		MaxItems:         intPtr(m["maxItems"]),
		MinProperties:    intPtr(m["minProperties"]),
		MaxProperties:    intPtr(m["maxProperties"]),
		Minimum:          floatPtr(m["minimum"]),
		Maximum:          floatPtr(m["maximum"]),
		MultipleOf:       floatPtr(m["multipleOf"]),
	}

	b.applyType(s, m["type"])
	b.applyExclusiveBounds(s, m)

	if v, ok := m["default"]; ok {
		s.Default = NewDefault(v)
		// Integer defaults match what the coercer produces for integer text.
		if f, ok := s.Default.Value.(float64); ok && s.Type == TypeInteger && f == math.Trunc(f) {
			s.Default.Value = int64(f)
		}
	}
	if enum, ok := m["enum"].([]any); ok {
		s.Enum, _ = normalizeValue(enum).([]any)
	} else if c, ok := m["const"]; ok {
		s.Enum = []any{normalizeValue(c)}
	}

	// In OAS 2.0 parameters "required" is a boolean; only lists name properties.
	s.Required = stringList(m["required"])

	if props := mapField(m, "properties"); props != nil {
		s.Properties = make(map[string]*Schema, len(props))
		for name, propNode := range props {
			prop, err := b.buildSchema(propNode, at+".properties."+name, depth+1)
			if err != nil {
				return nil, err
			}
			s.Properties[name] = prop
		}
	}

	switch ap := m["additionalProperties"].(type) {
	case bool:
		s.AdditionalProperties = &ap
	case map[string]any:
		apSchema, err := b.buildSchema(ap, at+".additionalProperties", depth+1)
		if err != nil {
			return nil, err
		}
		s.AdditionalPropertiesSchema = apSchema
	}

	switch items := m["items"].(type) {
	case map[string]any:
		itemSchema, err := b.buildSchema(items, at+".items", depth+1)
		if err != nil {
			return nil, err
		}
		s.Items = itemSchema
	case []any:
		b.warn("%s: tuple items are not supported, item types will not be coerced", at)
	}

	var err error
	if s.AllOf, err = b.buildSchemaList(m["allOf"], at+".allOf", depth); err != nil {
		return nil, err
	}
	if s.AnyOf, err = b.buildSchemaList(m["anyOf"], at+".anyOf", depth); err != nil {
		return nil, err
	}
	if s.OneOf, err = b.buildSchemaList(m["oneOf"], at+".oneOf", depth); err != nil {
		return nil, err
	}

	// allOf members often carry the type; adopt it so coercion knows the target.
	if s.Type == TypeAny && len(s.Types) == 0 {
		for _, sub := range s.AllOf {
			if sub.Type != TypeAny {
				s.Type = sub.Type
				break
			}
		}
	}
	return s, nil
}

func (b *builder) applyType(s *Schema, node any) {
	var declared []string
	switch t := node.(type) {
	case string:
		declared = []string{t}
	case []any:
		declared = stringList(t)
	}

	for _, name := range declared {
		st := SchemaType(name)
		if st == TypeNull {
			s.Nullable = true
			continue
		}
		s.Types = append(s.Types, st)
	}
	if len(s.Types) == 0 && s.Nullable && len(declared) > 0 {
		s.Types = []SchemaType{TypeNull}
	}
	if len(s.Types) == 1 {
		s.Type = s.Types[0]
	}
}

func (b *builder) applyExclusiveBounds(s *Schema, m map[string]any) {
	switch v := m["exclusiveMinimum"].(type) {
	case bool:
		s.ExclusiveMinimum = v
	default:
		if f := floatPtr(v); f != nil {
			s.Minimum, s.ExclusiveMinimum = f, true
		}
	}
	switch v := m["exclusiveMaximum"].(type) {
	case bool:
		s.ExclusiveMaximum = v
	default:
		if f := floatPtr(v); f != nil {
			s.Maximum, s.ExclusiveMaximum = f, true
		}
	}
}

func (b *builder) buildSchemaList(node any, at string, depth int) ([]*Schema, error) {
	items, ok := node.([]any)
	if !ok {
		return nil, nil
	}
	out := make([]*Schema, 0, len(items))
	for i, item := range items {
		s, err := b.buildSchema(item, fmt.Sprintf("%s[%d]", at, i), depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
