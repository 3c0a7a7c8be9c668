package oaserrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/erraggy/oasbind/internal/issues"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrParse indicates a document could not be parsed.
	ErrParse = errors.New("parse error")

	// ErrReference indicates a $ref could not be resolved.
	ErrReference = errors.New("reference error")

	// ErrCircularReference indicates a $ref cycle.
	ErrCircularReference = errors.New("circular reference")

	// ErrResourceLimit indicates a size or depth limit was exceeded.
	ErrResourceLimit = errors.New("resource limit exceeded")

	// ErrConfig indicates invalid configuration, including schemas the
	// constraint validator cannot evaluate.
	ErrConfig = errors.New("configuration error")

	// ErrResolution matches every request-time parameter failure.
	ErrResolution = errors.New("parameter resolution failed")

	// ErrMissingParameter matches KindMissingRequired failures.
	ErrMissingParameter = errors.New("missing required parameter")

	// ErrInvalidFormat matches KindInvalidFormat failures.
	ErrInvalidFormat = errors.New("invalid parameter format")

	// ErrSchemaValidation matches KindSchemaValidation failures.
	ErrSchemaValidation = errors.New("schema validation failed")
)

// ParseError represents a failure to parse an OpenAPI document.
type ParseError struct {
	// Path is the file path or source identifier
	Path string
	// Message describes the parsing failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ReferenceError represents a $ref that could not be resolved.
// Only local references ("#/...") are supported.
type ReferenceError struct {
	// Ref is the reference string that failed to resolve
	Ref string
	// IsCircular is true if the reference participates in a cycle
	IsCircular bool
	// Message provides additional context about the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ReferenceError) Error() string {
	msg := "reference error"
	if e.IsCircular {
		msg = "circular reference"
	}
	if e.Ref != "" {
		msg += ": " + e.Ref
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ReferenceError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
// Matches ErrReference, and ErrCircularReference when IsCircular is set.
func (e *ReferenceError) Is(target error) bool {
	if target == ErrReference {
		return true
	}
	return target == ErrCircularReference && e.IsCircular
}

// ResourceLimitError represents an exceeded size or depth limit.
type ResourceLimitError struct {
	// ResourceType identifies the limit, e.g. "body_size" or "schema_depth"
	ResourceType string
	// Limit is the configured maximum value
	Limit int64
	// Actual is the observed value (0 if unknown)
	Actual int64
	// Message provides additional context
	Message string
}

// Error returns a human-readable error message.
func (e *ResourceLimitError) Error() string {
	msg := "resource limit exceeded"
	if e.ResourceType != "" {
		msg += ": " + e.ResourceType
	}
	if e.Limit > 0 {
		msg += fmt.Sprintf(" (limit: %d", e.Limit)
		if e.Actual > 0 {
			msg += fmt.Sprintf(", actual: %d", e.Actual)
		}
		msg += ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *ResourceLimitError) Is(target error) bool {
	return target == ErrResourceLimit
}

// ConfigError represents invalid configuration: bad options, or a schema
// the constraint validator could not evaluate (e.g. an uncompilable pattern).
type ConfigError struct {
	// Option is the name of the problematic option or schema keyword
	Option string
	// Value is the invalid value (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// Kind classifies a request-time resolution failure.
type Kind string

const (
	// KindMissingRequired: the value was absent (or blank) after default
	// resolution and the parameter is required.
	KindMissingRequired Kind = "MissingRequiredParameter"
	// KindInvalidFormat: raw text could not be coerced to the declared type.
	KindInvalidFormat Kind = "InvalidParameterFormat"
	// KindSchemaValidation: the coerced value violates a declared constraint.
	KindSchemaValidation Kind = "SchemaValidationFailed"
)

// ResolutionError is a request-time parameter failure. Its message is part of
// the public contract and is safe to return to API clients.
type ResolutionError struct {
	// Kind classifies the failure
	Kind Kind
	// Location is where the parameter was read from ("body", "query", ...)
	Location string
	// Name is the declared parameter name
	Name string
	// Detail is the coercion or validation detail, empty for KindMissingRequired
	Detail string
	// Violations holds every blocking violation for KindSchemaValidation
	Violations []issues.Issue
	// Cause is the underlying coercion error, if any
	Cause error
}

// NewMissingParameter builds a KindMissingRequired error.
func NewMissingParameter(location, name string) *ResolutionError {
	return &ResolutionError{Kind: KindMissingRequired, Location: location, Name: name}
}

// NewInvalidFormat builds a KindInvalidFormat error.
func NewInvalidFormat(location, name, detail string, cause error) *ResolutionError {
	return &ResolutionError{Kind: KindInvalidFormat, Location: location, Name: name, Detail: detail, Cause: cause}
}

// NewSchemaValidation builds a KindSchemaValidation error. The detail is the
// first violation, qualified by its path when it is nested below the parameter.
func NewSchemaValidation(location, name string, violations []issues.Issue) *ResolutionError {
	e := &ResolutionError{Kind: KindSchemaValidation, Location: location, Name: name, Violations: violations}
	if len(violations) > 0 {
		e.Detail = violations[0].Detail(name)
	}
	return e
}

// Error returns the client-facing message:
//
//	Missing required body parameter "PetData"
//	Invalid query parameter "limit": expected integer, got "ten"
func (e *ResolutionError) Error() string {
	if e.Kind == KindMissingRequired {
		return fmt.Sprintf("Missing required %s parameter %q", e.Location, e.Name)
	}
	msg := fmt.Sprintf("Invalid %s parameter %q", e.Location, e.Name)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches ErrResolution or the sentinel for e.Kind.
func (e *ResolutionError) Is(target error) bool {
	switch target {
	case ErrResolution:
		return true
	case ErrMissingParameter:
		return e.Kind == KindMissingRequired
	case ErrInvalidFormat:
		return e.Kind == KindInvalidFormat
	case ErrSchemaValidation:
		return e.Kind == KindSchemaValidation
	}
	return false
}

// Status returns the HTTP status for the failure. Always 400.
func (e *ResolutionError) Status() int {
	return http.StatusBadRequest
}

// HTTPStatus maps any error to the status a server should respond with:
// 400 for resolution failures, 413 for oversized bodies and 500 otherwise.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var resErr *ResolutionError
	if errors.As(err, &resErr) {
		return resErr.Status()
	}
	var limitErr *ResourceLimitError
	if errors.As(err, &limitErr) && limitErr.ResourceType == "body_size" {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}
