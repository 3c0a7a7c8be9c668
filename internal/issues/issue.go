// Package issues provides the violation type reported by constraint validators.
package issues

import (
	"fmt"

	"github.com/erraggy/oasbind/internal/severity"
)

// Issue is a single constraint failure found while checking a value.
type Issue struct {
	// Path locates the offending value, rooted at the parameter name
	// (e.g. "PetData.Type" or "ids[2]").
	Path string `json:"path"`
	// Keyword is the schema keyword that failed (e.g. "enum", "type", "required").
	Keyword string `json:"keyword,omitempty"`
	// Message is the human-readable reason. It is surfaced verbatim to clients.
	Message string `json:"message"`
	// Severity indicates whether the issue rejects the value.
	Severity severity.Severity `json:"severity"`
	// Value is the offending value, nil when redacted.
	Value any `json:"value,omitempty"`
}

// String formats the issue for terminal output:
// "✗" for error or critical, "⚠" for warning and "ℹ" for info.
func (i Issue) String() string {
	var symbol string
	switch i.Severity {
	case severity.SeverityError, severity.SeverityCritical:
		symbol = "✗"
	case severity.SeverityWarning:
		symbol = "⚠"
	case severity.SeverityInfo:
		symbol = "ℹ"
	default:
		symbol = "?"
	}

	if i.Path == "" {
		return fmt.Sprintf("%s %s", symbol, i.Message)
	}
	return fmt.Sprintf("%s %s: %s", symbol, i.Path, i.Message)
}

// Detail returns the path-qualified message used inside resolution errors.
// When the path is just the root name, only the message is returned.
func (i Issue) Detail(root string) string {
	if i.Path == "" || i.Path == root {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// Blocking returns the issues that fail resolution, preserving order.
func Blocking(list []Issue) []Issue {
	var out []Issue
	for _, i := range list {
		if i.Severity.Blocking() {
			out = append(out, i)
		}
	}
	return out
}
