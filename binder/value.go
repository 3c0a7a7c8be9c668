package binder

import (
	"strings"
)

// RawKind tags the representation a raw value arrived in.
type RawKind int

const (
	// RawAbsent means the request carried no value at all.
	RawAbsent RawKind = iota
	// RawText is a single textual value: a query or header value, a path
	// segment, or an unparsed body.
	RawText
	// RawList holds repeated values for the same key (?tag=a&tag=b).
	RawList
	// RawStructured is a value the transport already decoded.
	RawStructured
)

func (k RawKind) String() string {
	switch k {
	case RawAbsent:
		return "absent"
	case RawText:
		return "text"
	case RawList:
		return "list"
	case RawStructured:
		return "structured"
	}
	return "unknown"
}

// RawValue is a parameter value before coercion. Exactly one of Text, List
// or Value is meaningful, selected by Kind.
type RawValue struct {
	Kind  RawKind
	Text  string
	List  []string
	Value any

	// ContentType is the media type of a body value, if known.
	ContentType string
	// Form marks a structured body decoded from a form submission. Its
	// fields are still strings and are coerced per property.
	Form bool
}

// Absent returns the absent raw value.
func Absent() RawValue {
	return RawValue{Kind: RawAbsent}
}

// Text returns a textual raw value.
func Text(s string) RawValue {
	return RawValue{Kind: RawText, Text: s}
}

// List returns a raw value of repeated items. A single item collapses to Text.
func List(items []string) RawValue {
	switch len(items) {
	case 0:
		return Absent()
	case 1:
		return Text(items[0])
	}
	return RawValue{Kind: RawList, List: items}
}

// Structured returns an already-decoded raw value.
func Structured(v any) RawValue {
	return RawValue{Kind: RawStructured, Value: v}
}

// IsAbsent reports whether no value is present.
func (r RawValue) IsAbsent() bool {
	return r.Kind == RawAbsent
}

// text returns the textual content of Text values and of structured values
// that are plain strings.
func (r RawValue) text() (string, bool) {
	switch r.Kind {
	case RawText:
		return r.Text, true
	case RawStructured:
		s, ok := r.Value.(string)
		return s, ok
	}
	return "", false
}

// blank reports whether the value counts as missing: absent, text that is
// empty after trimming, or an empty decoded form.
func (r RawValue) blank() bool {
	if r.Kind == RawAbsent {
		return true
	}
	if s, ok := r.text(); ok {
		return strings.TrimSpace(s) == ""
	}
	if r.Form {
		m, _ := r.Value.(map[string]any)
		return len(m) == 0
	}
	return false
}
