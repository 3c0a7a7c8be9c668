// Package severity defines the severity levels attached to constraint
// violations.
//
// Only error and critical violations reject a parameter. Warnings and infos
// are reported alongside a resolved value but never fail it.
package severity

import "fmt"

// Severity indicates how serious a constraint violation is.
type Severity int

const (
	// SeverityError rejects the parameter.
	SeverityError Severity = iota

	// SeverityWarning is reported but does not reject the parameter.
	// Unknown or loosely-checked string formats use this level in lenient mode.
	SeverityWarning

	// SeverityInfo is purely informational.
	SeverityInfo

	// SeverityCritical indicates the value could not be checked at all.
	SeverityCritical
)

// String returns the lowercase name of the level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Blocking reports whether a violation at this level fails resolution.
func (s Severity) Blocking() bool {
	return s == SeverityError || s == SeverityCritical
}

// MarshalText encodes the level by name so JSON and YAML output stay readable.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a level name produced by MarshalText.
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	case "critical":
		*s = SeverityCritical
	default:
		return fmt.Errorf("severity: unknown level %q", string(text))
	}
	return nil
}
