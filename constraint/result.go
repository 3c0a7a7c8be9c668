package constraint

import (
	"github.com/erraggy/oasbind/internal/issues"
	"github.com/erraggy/oasbind/internal/severity"
)

// Violation is a single constraint failure.
type Violation = issues.Issue

// Severity levels for violations.
type Severity = severity.Severity

// Severity constants re-exported for convenience.
const (
	SeverityError    = severity.SeverityError
	SeverityWarning  = severity.SeverityWarning
	SeverityInfo     = severity.SeverityInfo
	SeverityCritical = severity.SeverityCritical
)

// Blocking returns the violations that reject a value, in order.
func Blocking(list []Violation) []Violation {
	return issues.Blocking(list)
}
