package parser

// SchemaType is a JSON Schema primitive type name.
type SchemaType string

// Schema types understood by the binder. TypeAny is an unset type.
const (
	TypeAny     SchemaType = ""
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeNumber  SchemaType = "number"
	TypeInteger SchemaType = "integer"
	TypeBoolean SchemaType = "boolean"
	TypeNull    SchemaType = "null"
	// TypeFile is the OAS 2.0 formData file type. Values are passed through.
	TypeFile SchemaType = "file"
)

// IsStructured reports whether values of this type are encoded as JSON text
// when they arrive as strings.
func (t SchemaType) IsStructured() bool {
	return t == TypeObject || t == TypeArray
}

// IsScalar reports whether t is string, number, integer or boolean.
func (t SchemaType) IsScalar() bool {
	switch t {
	case TypeString, TypeNumber, TypeInteger, TypeBoolean:
		return true
	}
	return false
}

// DefaultKind distinguishes the two ways a default can be declared.
type DefaultKind int

const (
	// DefaultLiteral is an already-typed value (object, array, number, boolean
	// or null). It is used as-is.
	DefaultLiteral DefaultKind = iota + 1
	// DefaultEncoded is a string default. It goes through coercion like text
	// sent by a client, so for object and array schemas it is parsed as JSON.
	DefaultEncoded
)

func (k DefaultKind) String() string {
	switch k {
	case DefaultLiteral:
		return "literal"
	case DefaultEncoded:
		return "encoded"
	}
	return "unknown"
}

// Default is a schema's declared default value.
type Default struct {
	Kind DefaultKind
	// Value holds the literal for DefaultLiteral.
	Value any
	// Text holds the declared string for DefaultEncoded.
	Text string
}

// NewDefault classifies a declared default. Strings become DefaultEncoded.
func NewDefault(v any) *Default {
	if s, ok := v.(string); ok {
		return &Default{Kind: DefaultEncoded, Text: s}
	}
	return &Default{Kind: DefaultLiteral, Value: normalizeValue(v)}
}

// Schema is the resolved, read-only description of a value's shape.
type Schema struct {
	// Ref is the local reference this schema was built from, if any.
	Ref string `json:"-" yaml:"-"`

	// Type is the single declared non-null type, TypeAny when unset or when
	// several types are allowed (see Types).
	Type SchemaType `json:"type,omitempty" yaml:"type,omitempty"`
	// Types lists every declared non-null type (OAS 3.1 type arrays).
	Types []SchemaType `json:"-" yaml:"-"`
	// Nullable is set by OAS 3.0 nullable, OAS 2.0 x-nullable or a
	// "null" entry in an OAS 3.1 type array.
	Nullable bool `json:"nullable,omitempty" yaml:"nullable,omitempty"`

	Title       string   `json:"title,omitempty" yaml:"title,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Format      string   `json:"format,omitempty" yaml:"format,omitempty"`
	Default     *Default `json:"-" yaml:"-"`
	Enum        []any    `json:"enum,omitempty" yaml:"enum,omitempty"`

	// Object
	Properties                 map[string]*Schema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required                   []string           `json:"required,omitempty" yaml:"required,omitempty"`
	AdditionalProperties       *bool              `json:"additionalProperties,omitempty" yaml:"additionalProperties,omitempty"`
	AdditionalPropertiesSchema *Schema            `json:"-" yaml:"-"`
	MinProperties              *int               `json:"minProperties,omitempty" yaml:"minProperties,omitempty"`
	MaxProperties              *int               `json:"maxProperties,omitempty" yaml:"maxProperties,omitempty"`

	// Array
	Items       *Schema `json:"items,omitempty" yaml:"items,omitempty"`
	MinItems    *int    `json:"minItems,omitempty" yaml:"minItems,omitempty"`
	MaxItems    *int    `json:"maxItems,omitempty" yaml:"maxItems,omitempty"`
	UniqueItems bool    `json:"uniqueItems,omitempty" yaml:"uniqueItems,omitempty"`
	// CollectionFormat is the OAS 2.0 items collectionFormat for nested arrays.
	CollectionFormat string `json:"collectionFormat,omitempty" yaml:"collectionFormat,omitempty"`

	// String
	MinLength *int   `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	// Number. Exclusive bounds are normalised to the OAS 3.0 boolean form.
	Minimum          *float64 `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	ExclusiveMinimum bool     `json:"exclusiveMinimum,omitempty" yaml:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum bool     `json:"exclusiveMaximum,omitempty" yaml:"exclusiveMaximum,omitempty"`
	MultipleOf       *float64 `json:"multipleOf,omitempty" yaml:"multipleOf,omitempty"`

	// Composition
	AllOf []*Schema `json:"allOf,omitempty" yaml:"allOf,omitempty"`
	AnyOf []*Schema `json:"anyOf,omitempty" yaml:"anyOf,omitempty"`
	OneOf []*Schema `json:"oneOf,omitempty" yaml:"oneOf,omitempty"`
}

// DeclaredTypes returns the schema's non-null types. Types wins when set;
// otherwise a Type other than TypeAny is the only declared type. A schema
// built in code often sets just Type.
func (s *Schema) DeclaredTypes() []SchemaType {
	if len(s.Types) > 0 {
		return s.Types
	}
	if s.Type != TypeAny {
		return []SchemaType{s.Type}
	}
	return nil
}

// AllowsType reports whether t is one of the schema's declared types.
// A schema with no declared type allows everything.
func (s *Schema) AllowsType(t SchemaType) bool {
	declared := s.DeclaredTypes()
	if len(declared) == 0 {
		return true
	}
	for _, st := range declared {
		if st == t {
			return true
		}
	}
	return false
}

// HasDefault reports whether a default is declared.
func (s *Schema) HasDefault() bool {
	return s != nil && s.Default != nil
}
