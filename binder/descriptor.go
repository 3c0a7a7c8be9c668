package binder

import (
	"fmt"
	"sort"

	"github.com/erraggy/oasbind/oaserrors"
	"github.com/erraggy/oasbind/parser"
)

// DefaultBodyName names an OAS 3.x request body that declares no x-body-name.
const DefaultBodyName = "body"

// Array serializations for non-body parameters.
const (
	FormatCSV   = "csv"
	FormatSSV   = "ssv"
	FormatTSV   = "tsv"
	FormatPipes = "pipes"
	FormatMulti = "multi"
)

// Descriptor is the compiled, immutable description of one parameter.
// Descriptors are shared by every request that resolves them.
type Descriptor struct {
	Name     string
	Location Location
	Required bool
	// Schema may be nil, in which case the value is passed through untyped.
	Schema *parser.Schema

	// AllowEmptyValue lets an exactly-empty string through for string and
	// untyped schemas instead of treating it as missing.
	AllowEmptyValue bool
	// CollectionFormat is how array values are serialized in a single
	// string (csv, ssv, tsv, pipes) or as repeated keys (multi).
	CollectionFormat string
	// MediaTypes lists the declared body media types, sorted.
	MediaTypes []string
	// ContentType is set for OAS 3.x parameters declared with "content".
	ContentType string
}

// Key identifies the descriptor within an operation.
func (d *Descriptor) Key() string {
	return string(d.Location) + ":" + d.Name
}

// Type returns the declared schema type, TypeAny when there is none.
func (d *Descriptor) Type() parser.SchemaType {
	if d.Schema == nil {
		return parser.TypeAny
	}
	return d.Schema.Type
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s parameter %q", d.Location, d.Name)
}

// compileParameter builds a descriptor from a declared parameter.
// Unsupported serialization styles are reported as warnings.
func compileParameter(p *parser.Parameter, oas3 bool) (*Descriptor, []string, error) {
	loc, err := ParseLocation(p.In)
	if err != nil {
		return nil, nil, &oaserrors.ConfigError{Option: "parameter", Value: p.Name, Message: err.Error()}
	}

	d := &Descriptor{
		Name:            p.Name,
		Location:        loc,
		Required:        p.Required || loc == LocationPath,
		Schema:          p.Schema,
		AllowEmptyValue: p.AllowEmptyValue,
		ContentType:     p.ContentType,
	}

	if loc == LocationBody {
		return d, nil, nil
	}

	var warnings []string
	if oas3 {
		format, warning := styleFormat(p, loc)
		d.CollectionFormat = format
		if warning != "" {
			warnings = append(warnings, warning)
		}
		return d, warnings, nil
	}

	switch p.CollectionFormat {
	case "":
		d.CollectionFormat = FormatCSV
	case FormatCSV, FormatSSV, FormatTSV, FormatPipes, FormatMulti:
		d.CollectionFormat = p.CollectionFormat
	default:
		return nil, nil, &oaserrors.ConfigError{
			Option:  "collectionFormat",
			Value:   p.CollectionFormat,
			Message: fmt.Sprintf("%s uses an unknown collectionFormat", d),
		}
	}
	if d.CollectionFormat == FormatMulti && loc != LocationQuery && loc != LocationFormData {
		warnings = append(warnings, fmt.Sprintf("%s: collectionFormat multi only applies to query and formData, using csv", d))
		d.CollectionFormat = FormatCSV
	}
	return d, warnings, nil
}

// styleFormat maps an OAS 3.x style and explode pair to the equivalent
// OAS 2.0 collection format.
func styleFormat(p *parser.Parameter, loc Location) (string, string) {
	style := p.Style
	if style == "" {
		switch loc {
		case LocationQuery, LocationCookie, LocationFormData:
			style = "form"
		default:
			style = "simple"
		}
	}
	explode := style == "form"
	if p.Explode != nil {
		explode = *p.Explode
	}

	switch style {
	case "form":
		if explode {
			return FormatMulti, ""
		}
		return FormatCSV, ""
	case "simple":
		return FormatCSV, ""
	case "spaceDelimited":
		if explode {
			return FormatMulti, ""
		}
		return FormatSSV, ""
	case "pipeDelimited":
		if explode {
			return FormatMulti, ""
		}
		return FormatPipes, ""
	}
	return FormatCSV, fmt.Sprintf("%s %q: style %q is not supported, values are read as csv", loc, p.Name, style)
}

// compileRequestBody builds the body descriptor for an OAS 3.x request body.
// The schema comes from the JSON media type when there is one, then a form
// media type, then the first declared type.
func compileRequestBody(op *parser.Operation) *Descriptor {
	rb := op.RequestBody
	name := rb.Name
	if name == "" {
		name = op.BodyName
	}
	if name == "" {
		name = DefaultBodyName
	}

	mediaTypes := make([]string, 0, len(rb.Content))
	for mt := range rb.Content {
		mediaTypes = append(mediaTypes, mt)
	}
	sort.Strings(mediaTypes)

	d := &Descriptor{
		Name:       name,
		Location:   LocationBody,
		Required:   rb.Required,
		MediaTypes: mediaTypes,
	}
	if len(mediaTypes) == 0 {
		return d
	}

	chosen := mediaTypes[0]
	found := false
	for _, mt := range mediaTypes {
		if isJSON(mt) {
			chosen, found = mt, true
			break
		}
	}
	if !found {
		for _, mt := range mediaTypes {
			if isFormMediaType(parseMediaType(mt)) {
				chosen = mt
				break
			}
		}
	}
	if media := rb.Content[chosen]; media != nil {
		d.Schema = media.Schema
	}
	return d
}
