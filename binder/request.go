package binder

import (
	"mime/multipart"
	"sort"

	"golang.org/x/text/cases"
)

// RequestContext is the view of an incoming request the pipeline reads
// from and writes resolved values back into.
type RequestContext interface {
	// Values returns the raw values for a non-body location. ok is false
	// when the key is not present at all.
	Values(loc Location, name string) (values []string, ok bool)
	// Body returns the request body as the transport left it.
	Body() BodySource
	// ContentType returns the request's Content-Type header value.
	ContentType() string
	// Store records a resolved value at its canonical slot.
	Store(loc Location, name string, v any)
}

// FileSource is implemented by request contexts that carry uploaded files.
// It serves OAS 2.0 formData parameters of type file.
type FileSource interface {
	Files(name string) ([]*multipart.FileHeader, bool)
}

// BodySource is the request body in whichever form the transport has it.
type BodySource struct {
	// Raw is the unparsed body.
	Raw []byte
	// Value is the decoded body when Parsed is true.
	Value  any
	Parsed bool
	// Form marks Value as decoded form fields (map[string]any whose values
	// are string or []string).
	Form bool
}

// Params holds the resolved values of one request.
type Params struct {
	values  map[Location]map[string]any
	body    any
	hasBody bool
}

// NewParams returns an empty Params.
func NewParams() *Params {
	return &Params{values: make(map[Location]map[string]any)}
}

// Set stores a resolved value. Body values replace the body slot.
func (p *Params) Set(loc Location, name string, v any) {
	if loc == LocationBody {
		p.body = v
		p.hasBody = true
	}
	m, ok := p.values[loc]
	if !ok {
		m = make(map[string]any)
		p.values[loc] = m
	}
	m[name] = v
}

// Get returns the resolved value for loc and name.
func (p *Params) Get(loc Location, name string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[loc][name]
	return v, ok
}

// Path returns a resolved path parameter, nil when unset.
func (p *Params) Path(name string) any {
	v, _ := p.Get(LocationPath, name)
	return v
}

// Query returns a resolved query parameter, nil when unset.
func (p *Params) Query(name string) any {
	v, _ := p.Get(LocationQuery, name)
	return v
}

// Header returns a resolved header parameter, nil when unset.
func (p *Params) Header(name string) any {
	v, _ := p.Get(LocationHeader, name)
	return v
}

// Form returns a resolved formData parameter, nil when unset.
func (p *Params) Form(name string) any {
	v, _ := p.Get(LocationFormData, name)
	return v
}

// Body returns the resolved body, nil when the body was absent.
func (p *Params) Body() any {
	if p == nil {
		return nil
	}
	return p.body
}

// HasBody reports whether a body value was resolved.
func (p *Params) HasBody() bool {
	return p != nil && p.hasBody
}

// Flatten returns every resolved value keyed "location.name", for output.
func (p *Params) Flatten() map[string]any {
	out := make(map[string]any)
	if p == nil {
		return out
	}
	for loc, m := range p.values {
		for name, v := range m {
			out[string(loc)+"."+name] = v
		}
	}
	return out
}

// Keys returns the flattened keys in sorted order.
func (p *Params) Keys() []string {
	flat := p.Flatten()
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MapRequest is an in-memory RequestContext. Header names are matched
// case-insensitively; every other location is case-sensitive.
type MapRequest struct {
	values    map[Location]map[string][]string
	body      BodySource
	mediaType string
	params    *Params
}

// NewMapRequest returns an empty MapRequest.
func NewMapRequest() *MapRequest {
	return &MapRequest{
		values: make(map[Location]map[string][]string),
		params: NewParams(),
	}
}

// Set adds raw values for a non-body location.
func (m *MapRequest) Set(loc Location, name string, values ...string) *MapRequest {
	vals, ok := m.values[loc]
	if !ok {
		vals = make(map[string][]string)
		m.values[loc] = vals
	}
	vals[name] = append(vals[name], values...)
	return m
}

// SetBody sets an unparsed body and its media type.
func (m *MapRequest) SetBody(raw []byte, contentType string) *MapRequest {
	m.body = BodySource{Raw: raw}
	m.mediaType = contentType
	return m
}

// SetParsedBody sets a body the caller has already decoded.
func (m *MapRequest) SetParsedBody(v any, contentType string) *MapRequest {
	m.body = BodySource{Value: v, Parsed: true}
	m.mediaType = contentType
	return m
}

// SetForm sets decoded form fields. They are readable both as formData
// values and as the body of an OAS 3.x form request body.
func (m *MapRequest) SetForm(fields map[string][]string, contentType string) *MapRequest {
	for name, values := range fields {
		m.Set(LocationFormData, name, values...)
	}
	m.body = BodySource{Value: formBody(fields), Parsed: true, Form: true}
	m.mediaType = contentType
	return m
}

// formBody converts form fields to the body representation: one string per
// field, or a []string when the field repeats.
func formBody(fields map[string][]string) map[string]any {
	out := make(map[string]any, len(fields))
	for name, values := range fields {
		switch len(values) {
		case 0:
		case 1:
			out[name] = values[0]
		default:
			out[name] = append([]string(nil), values...)
		}
	}
	return out
}

// Values implements RequestContext.
func (m *MapRequest) Values(loc Location, name string) ([]string, bool) {
	vals := m.values[loc]
	if v, ok := vals[name]; ok {
		return v, true
	}
	if loc != LocationHeader {
		return nil, false
	}
	folded := cases.Fold().String(name)
	for key, v := range vals {
		if cases.Fold().String(key) == folded {
			return v, true
		}
	}
	return nil, false
}

// Body implements RequestContext.
func (m *MapRequest) Body() BodySource {
	return m.body
}

// ContentType implements RequestContext.
func (m *MapRequest) ContentType() string {
	return m.mediaType
}

// Store implements RequestContext.
func (m *MapRequest) Store(loc Location, name string, v any) {
	m.params.Set(loc, name, v)
}

// Params returns the values stored so far.
func (m *MapRequest) Params() *Params {
	return m.params
}

var _ RequestContext = (*MapRequest)(nil)
