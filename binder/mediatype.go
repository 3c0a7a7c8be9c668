package binder

import (
	"strings"

	"github.com/elnormous/contenttype"
)

var (
	jsonMediaType      = contenttype.NewMediaType("application/json")
	formMediaType      = contenttype.NewMediaType("application/x-www-form-urlencoded")
	multipartMediaType = contenttype.NewMediaType("multipart/form-data")
)

// parseMediaType parses a Content-Type value. Invalid values yield the
// zero MediaType, which matches nothing.
func parseMediaType(s string) contenttype.MediaType {
	if s == "" {
		return contenttype.MediaType{}
	}
	return contenttype.NewMediaType(strings.ToLower(strings.TrimSpace(s)))
}

// isJSONMediaType reports whether mt is application/json or a +json suffix type.
func isJSONMediaType(mt contenttype.MediaType) bool {
	if mt.Type == "" {
		return false
	}
	return mt.Matches(jsonMediaType) || (mt.Type == "application" && strings.HasSuffix(mt.Subtype, "+json"))
}

// isFormMediaType reports whether mt carries form fields.
func isFormMediaType(mt contenttype.MediaType) bool {
	if mt.Type == "" {
		return false
	}
	return mt.Matches(formMediaType) || mt.Matches(multipartMediaType)
}

// isJSON reports whether the Content-Type value s denotes JSON.
func isJSON(s string) bool {
	return isJSONMediaType(parseMediaType(s))
}
