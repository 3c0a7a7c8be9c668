package binder

import (
	"github.com/erraggy/oasbind/parser"
)

// Extract reads the raw value for d from rc. It never fails: a missing key
// or an empty body is reported as an absent value.
func Extract(d *Descriptor, rc RequestContext) RawValue {
	if d.Location == LocationBody {
		return extractBody(rc)
	}

	if d.Type() == parser.TypeFile {
		if fs, ok := rc.(FileSource); ok {
			if files, ok := fs.Files(d.Name); ok && len(files) > 0 {
				return Structured(files[0])
			}
		}
	}

	values, ok := rc.Values(d.Location, d.Name)
	if !ok {
		return Absent()
	}
	return List(values)
}

func extractBody(rc RequestContext) RawValue {
	src := rc.Body()
	contentType := rc.ContentType()

	var raw RawValue
	switch {
	case src.Parsed:
		raw = Structured(src.Value)
		raw.Form = src.Form
	case len(src.Raw) == 0:
		return Absent()
	default:
		raw = Text(string(src.Raw))
	}
	raw.ContentType = contentType
	return raw
}
