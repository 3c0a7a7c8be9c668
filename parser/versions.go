package parser

import "strings"

// OASVersion identifies the OpenAPI series a document declares.
// Patch releases within a series bind parameters identically.
type OASVersion int

const (
	// Unknown is an unrecognised or missing version.
	Unknown OASVersion = iota
	// OASVersion20 is OpenAPI 2.0 (Swagger).
	OASVersion20
	// OASVersion30 is the OpenAPI 3.0.x series.
	OASVersion30
	// OASVersion31 is the OpenAPI 3.1.x series.
	OASVersion31
	// OASVersion32 is the OpenAPI 3.2.x series.
	OASVersion32
)

func (v OASVersion) String() string {
	switch v {
	case OASVersion20:
		return "2.0"
	case OASVersion30:
		return "3.0"
	case OASVersion31:
		return "3.1"
	case OASVersion32:
		return "3.2"
	default:
		return "unknown"
	}
}

// IsOAS2 reports whether v is OpenAPI 2.0.
func (v OASVersion) IsOAS2() bool { return v == OASVersion20 }

// IsOAS3 reports whether v is any 3.x series.
func (v OASVersion) IsOAS3() bool {
	return v == OASVersion30 || v == OASVersion31 || v == OASVersion32
}

// ParseVersion maps a declared "swagger" or "openapi" value to its series.
func ParseVersion(s string) (OASVersion, bool) {
	switch {
	case s == "2.0":
		return OASVersion20, true
	case s == "3.0" || strings.HasPrefix(s, "3.0."):
		return OASVersion30, true
	case s == "3.1" || strings.HasPrefix(s, "3.1."):
		return OASVersion31, true
	case s == "3.2" || strings.HasPrefix(s, "3.2."):
		return OASVersion32, true
	}
	return Unknown, false
}
