package oaserrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/erraggy/oasbind/internal/issues"
	"github.com/erraggy/oasbind/internal/severity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseError(t *testing.T) {
	t.Run("all fields", func(t *testing.T) {
		cause := errors.New("yaml: line 3: mapping values are not allowed")
		err := &ParseError{Path: "api.yaml", Message: "invalid document", Cause: cause}
		assert.Equal(t, "parse error in api.yaml: invalid document: yaml: line 3: mapping values are not allowed", err.Error())
		assert.ErrorIs(t, err, cause)
		assert.ErrorIs(t, err, ErrParse)
	})

	t.Run("minimal", func(t *testing.T) {
		err := &ParseError{}
		assert.Equal(t, "parse error", err.Error())
		assert.Nil(t, err.Unwrap())
		assert.NotErrorIs(t, err, ErrReference)
	})
}

func TestReferenceError(t *testing.T) {
	t.Run("missing target", func(t *testing.T) {
		err := &ReferenceError{Ref: "#/definitions/Pet", Message: "not found"}
		assert.Equal(t, "reference error: #/definitions/Pet: not found", err.Error())
		assert.ErrorIs(t, err, ErrReference)
		assert.NotErrorIs(t, err, ErrCircularReference)
	})

	t.Run("circular", func(t *testing.T) {
		err := &ReferenceError{Ref: "#/definitions/Node", IsCircular: true}
		assert.Equal(t, "circular reference: #/definitions/Node", err.Error())
		assert.ErrorIs(t, err, ErrReference)
		assert.ErrorIs(t, err, ErrCircularReference)
	})

	t.Run("wrapped", func(t *testing.T) {
		inner := &ReferenceError{Ref: "#/x", IsCircular: true}
		wrapped := fmt.Errorf("building schema: %w", inner)
		var refErr *ReferenceError
		require.ErrorAs(t, wrapped, &refErr)
		assert.True(t, refErr.IsCircular)
	})
}

func TestResourceLimitError(t *testing.T) {
	err := &ResourceLimitError{ResourceType: "body_size", Limit: 1024, Actual: 2048}
	assert.Equal(t, "resource limit exceeded: body_size (limit: 1024, actual: 2048)", err.Error())
	assert.ErrorIs(t, err, ErrResourceLimit)

	err = &ResourceLimitError{ResourceType: "schema_depth", Limit: 64, Message: "too deep"}
	assert.Equal(t, "resource limit exceeded: schema_depth (limit: 64): too deep", err.Error())
}

func TestConfigError(t *testing.T) {
	cause := errors.New("missing closing ]")
	err := &ConfigError{Option: "pattern", Value: "[a-z", Message: "cannot compile", Cause: cause}
	assert.Equal(t, "configuration error for pattern (value: [a-z): cannot compile: missing closing ]", err.Error())
	assert.ErrorIs(t, err, ErrConfig)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrResolution)
}

func TestResolutionErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      *ResolutionError
		expected string
	}{
		{
			name:     "missing body",
			err:      NewMissingParameter("body", "PetData"),
			expected: `Missing required body parameter "PetData"`,
		},
		{
			name:     "missing header",
			err:      NewMissingParameter("header", "X-Request-Id"),
			expected: `Missing required header parameter "X-Request-Id"`,
		},
		{
			name:     "invalid format",
			err:      NewInvalidFormat("query", "limit", `expected integer, got "ten"`, nil),
			expected: `Invalid query parameter "limit": expected integer, got "ten"`,
		},
		{
			name: "nested violation",
			err: NewSchemaValidation("body", "PetData", []issues.Issue{
				{Path: "PetData.Type", Keyword: "enum", Message: `No enum match for: "kitty kat"`, Severity: severity.SeverityError},
				{Path: "PetData.Name", Keyword: "type", Message: "expected type string but got number", Severity: severity.SeverityError},
			}),
			expected: `Invalid body parameter "PetData": PetData.Type: No enum match for: "kitty kat"`,
		},
		{
			name: "root violation",
			err: NewSchemaValidation("path", "petId", []issues.Issue{
				{Path: "petId", Message: "value 0 is less than minimum 1"},
			}),
			expected: `Invalid path parameter "petId": value 0 is less than minimum 1`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
			assert.Equal(t, http.StatusBadRequest, tt.err.Status())
		})
	}
}

func TestResolutionErrorIs(t *testing.T) {
	missing := NewMissingParameter("body", "PetData")
	assert.ErrorIs(t, missing, ErrResolution)
	assert.ErrorIs(t, missing, ErrMissingParameter)
	assert.NotErrorIs(t, missing, ErrInvalidFormat)
	assert.NotErrorIs(t, missing, ErrSchemaValidation)

	cause := errors.New("unexpected end of JSON input")
	format := NewInvalidFormat("body", "PetData", "malformed JSON", cause)
	assert.ErrorIs(t, format, ErrInvalidFormat)
	assert.ErrorIs(t, format, cause)

	schema := NewSchemaValidation("query", "tags", nil)
	assert.ErrorIs(t, schema, ErrSchemaValidation)
	assert.Equal(t, `Invalid query parameter "tags"`, schema.Error())
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, HTTPStatus(nil))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(fmt.Errorf("wrap: %w", NewMissingParameter("query", "q"))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, HTTPStatus(&ResourceLimitError{ResourceType: "body_size"}))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(&ResourceLimitError{ResourceType: "schema_depth"}))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(&ConfigError{Option: "pattern"}))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}
