package parser

import "github.com/erraggy/oasbind/internal/httputil"

// PathItem holds the operations declared for one path template.
type PathItem struct {
	Path string `json:"path" yaml:"path"`
	// Parameters apply to every operation on the path unless overridden.
	Parameters []*Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`

	operations map[string]*Operation
}

// Operation returns the operation for an HTTP method in any case, or nil.
func (p *PathItem) Operation(method string) *Operation {
	return p.operations[httputil.NormalizeMethod(method)]
}

// Operations returns the declared operations in a stable method order.
func (p *PathItem) Operations() []*Operation {
	ops := make([]*Operation, 0, len(p.operations))
	for _, m := range httputil.Methods {
		if op, ok := p.operations[m]; ok {
			ops = append(ops, op)
		}
	}
	return ops
}

// Operation is a single method on a path.
type Operation struct {
	Method      string       `json:"method" yaml:"method"`
	Path        string       `json:"path" yaml:"path"`
	OperationID string       `json:"operationId,omitempty" yaml:"operationId,omitempty"`
	Summary     string       `json:"summary,omitempty" yaml:"summary,omitempty"`
	Parameters  []*Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	// RequestBody is set for OAS 3.x operations that declare one.
	RequestBody *RequestBody `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	// Consumes lists OAS 2.0 media types, falling back to the document's.
	Consumes []string `json:"consumes,omitempty" yaml:"consumes,omitempty"`
	// BodyName is x-codegen-request-body-name, an alternative to x-body-name.
	BodyName string `json:"-" yaml:"-"`
}
