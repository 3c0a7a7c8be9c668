package binder

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/erraggy/oasbind/constraint"
	"github.com/erraggy/oasbind/oaserrors"
)

// ProblemContentType is the media type of RFC 7807 responses.
const ProblemContentType = "application/problem+json"

// ErrorHandler writes the response for a request whose parameters failed
// to resolve.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// ProblemDetail is an RFC 7807 problem document, extended with the failing
// parameter.
type ProblemDetail struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// Kind is the resolution error kind, e.g. "SchemaValidationFailed".
	Kind string `json:"kind,omitempty"`
	// Location and Parameter identify the failing parameter.
	Location   string                 `json:"location,omitempty"`
	Parameter  string                 `json:"parameter,omitempty"`
	Violations []constraint.Violation `json:"violations,omitempty"`
}

// NewProblemDetail describes err. Resolution errors carry their message;
// every other error gets a generic detail so internals never reach clients.
func NewProblemDetail(err error) ProblemDetail {
	status := oaserrors.HTTPStatus(err)
	pd := ProblemDetail{
		Type:     "about:blank",
		Title:    http.StatusText(status),
		Status:   status,
		Instance: "urn:uuid:" + uuid.NewString(),
	}

	var resErr *oaserrors.ResolutionError
	var limitErr *oaserrors.ResourceLimitError
	switch {
	case errors.As(err, &resErr):
		pd.Detail = resErr.Error()
		pd.Kind = string(resErr.Kind)
		pd.Location = resErr.Location
		pd.Parameter = resErr.Name
		pd.Violations = resErr.Violations
	case errors.As(err, &limitErr):
		pd.Detail = limitErr.Message
	default:
		pd.Detail = "An internal server error occurred."
	}
	return pd
}

// ProblemHandler is the default ErrorHandler. It writes an
// application/problem+json response.
func ProblemHandler(w http.ResponseWriter, _ *http.Request, err error) {
	pd := NewProblemDetail(err)
	w.Header().Set("Content-Type", ProblemContentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(pd.Status)
	_ = json.NewEncoder(w).Encode(pd)
}
