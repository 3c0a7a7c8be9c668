package parser

// Parameter locations as declared by the "in" field.
const (
	InPath     = "path"
	InQuery    = "query"
	InHeader   = "header"
	InCookie   = "cookie"
	InFormData = "formData"
	InBody     = "body"
)

// Parameter is a declared operation parameter.
//
// For OAS 2.0 non-body parameters the type, format, items, enum, default and
// bounds are declared on the parameter itself. The parser folds them into
// Schema so every parameter is described the same way.
type Parameter struct {
	Name            string  `json:"name" yaml:"name"`
	In              string  `json:"in" yaml:"in"`
	Description     string  `json:"description,omitempty" yaml:"description,omitempty"`
	Required        bool    `json:"required,omitempty" yaml:"required,omitempty"`
	AllowEmptyValue bool    `json:"allowEmptyValue,omitempty" yaml:"allowEmptyValue,omitempty"`
	Schema          *Schema `json:"schema,omitempty" yaml:"schema,omitempty"`

	// CollectionFormat is the OAS 2.0 array serialization (csv, ssv, tsv, pipes, multi).
	CollectionFormat string `json:"collectionFormat,omitempty" yaml:"collectionFormat,omitempty"`

	// Style and Explode are the OAS 3.x serialization settings.
	Style   string `json:"style,omitempty" yaml:"style,omitempty"`
	Explode *bool  `json:"explode,omitempty" yaml:"explode,omitempty"`

	// ContentType is set when an OAS 3.x parameter uses "content" instead of
	// "schema". The value is then decoded according to that media type.
	ContentType string `json:"contentType,omitempty" yaml:"contentType,omitempty"`
}

// Key identifies a parameter within an operation.
func (p *Parameter) Key() string {
	return p.In + ":" + p.Name
}

// RequestBody is an OAS 3.x request body.
type RequestBody struct {
	Description string                `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool                  `json:"required,omitempty" yaml:"required,omitempty"`
	Content     map[string]*MediaType `json:"content,omitempty" yaml:"content,omitempty"`
	// Name is the x-body-name extension, used to name the body parameter.
	Name string `json:"x-body-name,omitempty" yaml:"x-body-name,omitempty"`
}

// MediaType is one entry of a request body's content map.
type MediaType struct {
	Schema *Schema `json:"schema,omitempty" yaml:"schema,omitempty"`
}
