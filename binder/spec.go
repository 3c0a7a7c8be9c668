package binder

import (
	"fmt"

	"github.com/erraggy/oasbind/internal/httputil"
	"github.com/erraggy/oasbind/oaserrors"
	"github.com/erraggy/oasbind/parser"
)

// Operation is a compiled operation: its parameters in declared order, with
// path-level parameters merged in and the body last for OAS 3.x documents.
type Operation struct {
	ID     string
	Method string
	Path   string
	Params []*Descriptor
}

// Param returns the descriptor for loc and name, or nil.
func (o *Operation) Param(loc Location, name string) *Descriptor {
	for _, d := range o.Params {
		if d.Location == loc && d.Name == name {
			return d
		}
	}
	return nil
}

// Body returns the body descriptor, or nil when the operation has none.
func (o *Operation) Body() *Descriptor {
	for _, d := range o.Params {
		if d.Location == LocationBody {
			return d
		}
	}
	return nil
}

// Name returns the operation ID, or "METHOD /path" when there is none.
func (o *Operation) Name() string {
	if o.ID != "" {
		return o.ID
	}
	return o.Method + " " + o.Path
}

// Spec is the compiled, read-only binding model of a document.
type Spec struct {
	Title   string
	Version string
	// Warnings lists parameters whose serialization is only partly supported.
	Warnings []string

	operations []*Operation
	byID       map[string]*Operation
	byRoute    map[string]*Operation
	paths      *PathMatcherSet
}

// Compile builds descriptors for every operation in doc.
func Compile(doc *parser.ParseResult) (*Spec, error) {
	if doc == nil {
		return nil, &oaserrors.ConfigError{Option: "document", Message: "parse result cannot be nil"}
	}

	s := &Spec{
		Title:   doc.Title,
		Version: doc.APIVersion,
		byID:    make(map[string]*Operation),
		byRoute: make(map[string]*Operation),
	}
	oas3 := doc.OASVersion.IsOAS3()

	for _, tmpl := range doc.PathTemplates() {
		item := doc.Paths[tmpl]
		for _, pop := range item.Operations() {
			op, warnings, err := compileOperation(item, pop, oas3)
			if err != nil {
				return nil, fmt.Errorf("binder: %s %s: %w", pop.Method, tmpl, err)
			}
			s.Warnings = append(s.Warnings, warnings...)

			if op.ID != "" {
				if prev, dup := s.byID[op.ID]; dup {
					return nil, &oaserrors.ConfigError{
						Option:  "operationId",
						Value:   op.ID,
						Message: fmt.Sprintf("declared by both %s %s and %s %s", prev.Method, prev.Path, op.Method, op.Path),
					}
				}
				s.byID[op.ID] = op
			}
			s.byRoute[routeKey(op.Method, op.Path)] = op
			s.operations = append(s.operations, op)
		}
	}

	paths, err := NewPathMatcherSet(doc.PathTemplates())
	if err != nil {
		return nil, &oaserrors.ConfigError{Option: "paths", Message: err.Error(), Cause: err}
	}
	s.paths = paths
	return s, nil
}

func compileOperation(item *parser.PathItem, pop *parser.Operation, oas3 bool) (*Operation, []string, error) {
	op := &Operation{ID: pop.OperationID, Method: pop.Method, Path: pop.Path}

	// Operation-level parameters override path-level ones in place.
	merged := make([]*parser.Parameter, 0, len(item.Parameters)+len(pop.Parameters))
	index := make(map[string]int)
	for _, p := range item.Parameters {
		index[p.Key()] = len(merged)
		merged = append(merged, p)
	}
	for _, p := range pop.Parameters {
		if i, ok := index[p.Key()]; ok {
			merged[i] = p
			continue
		}
		index[p.Key()] = len(merged)
		merged = append(merged, p)
	}

	var warnings []string
	for _, p := range merged {
		d, w, err := compileParameter(p, oas3)
		if err != nil {
			return nil, nil, err
		}
		if d.Location == LocationBody {
			d.MediaTypes = pop.Consumes
		}
		for _, msg := range w {
			warnings = append(warnings, fmt.Sprintf("%s: %s", op.Name(), msg))
		}
		op.Params = append(op.Params, d)
	}

	if pop.RequestBody != nil {
		op.Params = append(op.Params, compileRequestBody(pop))
	}
	for _, d := range op.Params {
		if err := checkDefault(d); err != nil {
			return nil, nil, err
		}
	}
	return op, warnings, nil
}

// checkDefault coerces an encoded default once, the way request text would
// be, so a malformed default fails compilation instead of every request.
func checkDefault(d *Descriptor) error {
	if !d.Schema.HasDefault() || d.Schema.Default.Kind != parser.DefaultEncoded {
		return nil
	}
	text := d.Schema.Default.Text
	if _, err := Coerce(d, Text(text)); err != nil {
		return &oaserrors.ConfigError{
			Option:  "default",
			Value:   text,
			Message: fmt.Sprintf("%s declares a default that does not coerce to its schema", d),
			Cause:   err,
		}
	}
	return nil
}

func routeKey(method, template string) string {
	return httputil.NormalizeMethod(method) + " " + template
}

// Operations returns every operation sorted by path, then method.
func (s *Spec) Operations() []*Operation {
	return s.operations
}

// Operation looks an operation up by its operationId.
func (s *Spec) Operation(id string) (*Operation, bool) {
	op, ok := s.byID[id]
	return op, ok
}

// Route looks an operation up by method and path template.
func (s *Spec) Route(method, template string) (*Operation, bool) {
	op, ok := s.byRoute[routeKey(method, template)]
	return op, ok
}

// Match finds the operation serving a concrete request path and returns the
// path parameter values taken from it. An empty method means GET.
func (s *Spec) Match(method, path string) (*Operation, map[string]string, bool) {
	for _, m := range s.paths.Match(path) {
		if op, ok := s.Route(method, m.Template); ok {
			return op, m.Params, true
		}
	}
	return nil, nil, false
}
