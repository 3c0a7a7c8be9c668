package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasbind/internal/testutil"
)

func callResolveParameter(t *testing.T, input resolveParameterInput) (*mcp.CallToolResult, resolveParameterOutput) {
	t.Helper()
	result, out, err := newTestToolServer().handleResolveParameter(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)
	if out == nil {
		return result, resolveParameterOutput{}
	}
	ro, ok := out.(resolveParameterOutput)
	require.True(t, ok, "expected resolveParameterOutput, got %T", out)
	return result, ro
}

func paramsByName(params []resolvedParameter) map[string]resolvedParameter {
	out := make(map[string]resolvedParameter, len(params))
	for _, p := range params {
		out[p.Name] = p
	}
	return out
}

func TestResolveParameter_Query(t *testing.T) {
	specCache.reset()
	result, output := callResolveParameter(t, resolveParameterInput{
		Spec:      specInput{Content: testutil.PetStore20},
		Operation: "findPets",
		Query:     map[string][]string{"tags": {"a,b"}},
		Headers:   map[string][]string{"x-request-id": {"req-1"}},
	})
	require.Nil(t, result)
	assert.Equal(t, "findPets", output.Operation)
	assert.True(t, output.Resolved)
	assert.Nil(t, output.Problem)

	params := paramsByName(output.Parameters)
	require.Len(t, params, 3)
	assert.Equal(t, []any{"a", "b"}, params["tags"].Value)
	assert.Equal(t, int64(20), params["limit"].Value)
	assert.True(t, params["limit"].Defaulted)
	assert.Equal(t, "req-1", params["X-Request-Id"].Value)
	assert.Equal(t, "header", params["X-Request-Id"].In)
}

func TestResolveParameter_ByPath(t *testing.T) {
	specCache.reset()
	result, output := callResolveParameter(t, resolveParameterInput{
		Spec:   specInput{Content: testutil.PetStore20},
		Method: "patch",
		Path:   "/api/pets/fido",
		Body:   `{"Name": "Fido", "Type": "dog"}`,
	})
	require.Nil(t, result)
	assert.Equal(t, "updatePet", output.Operation)
	assert.True(t, output.Resolved)

	params := paramsByName(output.Parameters)
	assert.Equal(t, "fido", params["PetName"].Value)
	assert.Equal(t, map[string]any{"Name": "Fido", "Type": "dog"}, params["PetData"].Value)
}

func TestResolveParameter_Form(t *testing.T) {
	specCache.reset()
	_, output := callResolveParameter(t, resolveParameterInput{
		Spec:      specInput{Content: testutil.PetStore20},
		Operation: "addPet",
		Form:      map[string][]string{"Name": {"Fido"}, "Age": {"4"}},
	})
	require.True(t, output.Resolved)

	params := paramsByName(output.Parameters)
	assert.Equal(t, "Fido", params["Name"].Value)
	assert.Equal(t, int64(4), params["Age"].Value)
	assert.Equal(t, false, params["Vaccinated"].Value)
	assert.True(t, params["Vaccinated"].Defaulted)
}

func TestResolveParameter_SingleParameter(t *testing.T) {
	specCache.reset()
	_, output := callResolveParameter(t, resolveParameterInput{
		Spec:      specInput{Content: testutil.PetStore20},
		Operation: "findPets",
		Name:      "limit",
		In:        "query",
		Query:     map[string][]string{"limit": {"7"}},
	})
	require.True(t, output.Resolved)
	require.Len(t, output.Parameters, 1)
	assert.Equal(t, int64(7), output.Parameters[0].Value)
	assert.False(t, output.Parameters[0].Defaulted)
}

func TestResolveParameter_Failures(t *testing.T) {
	tests := []struct {
		name       string
		input      resolveParameterInput
		wantStatus int
		wantDetail string
		wantKind   string
	}{
		{
			name:       "missing header",
			input:      resolveParameterInput{Operation: "findPets"},
			wantStatus: 400,
			wantDetail: `Missing required header parameter "X-Request-Id"`,
			wantKind:   "MissingRequiredParameter",
		},
		{
			name: "out of range",
			input: resolveParameterInput{
				Operation: "findPets", Name: "limit", In: "query",
				Query: map[string][]string{"limit": {"500"}},
			},
			wantStatus: 400,
			wantDetail: `Invalid query parameter "limit": value 500 exceeds maximum 100`,
			wantKind:   "SchemaValidationFailed",
		},
		{
			name: "not an integer",
			input: resolveParameterInput{
				Operation: "findPets", Name: "limit", In: "query",
				Query: map[string][]string{"limit": {"ten"}},
			},
			wantStatus: 400,
			wantDetail: `Invalid query parameter "limit"`,
			wantKind:   "InvalidParameterFormat",
		},
		{
			name: "enum violation in body",
			input: resolveParameterInput{
				Operation:  "updatePet",
				PathParams: map[string]string{"PetName": "fido"},
				Body:       `{"Name": "Fido", "Type": "kitty kat"}`,
			},
			wantStatus: 400,
			wantDetail: `Invalid body parameter "PetData": PetData.Type: No enum match for: "kitty kat"`,
			wantKind:   "SchemaValidationFailed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			specCache.reset()
			tt.input.Spec = specInput{Content: testutil.PetStore20}
			result, output := callResolveParameter(t, tt.input)
			require.Nil(t, result, "a failed resolution is not a tool error")
			assert.False(t, output.Resolved)
			require.NotNil(t, output.Problem)
			assert.Equal(t, tt.wantStatus, output.Problem.Status)
			assert.Contains(t, output.Problem.Detail, tt.wantDetail)
			assert.Equal(t, tt.wantKind, output.Problem.Kind)
		})
	}
}

func TestResolveParameter_BodyTooLarge(t *testing.T) {
	specCache.reset()
	old := cfg.MaxBodySize
	cfg.MaxBodySize = 8
	t.Cleanup(func() { cfg.MaxBodySize = old })

	result, output := callResolveParameter(t, resolveParameterInput{
		Spec:       specInput{Content: testutil.PetStore20},
		Operation:  "updatePet",
		PathParams: map[string]string{"PetName": "fido"},
		Body:       strings.Repeat("x", 9),
	})
	require.Nil(t, result)
	require.NotNil(t, output.Problem)
	assert.Equal(t, 413, output.Problem.Status)
	assert.Equal(t, "request body exceeds 8 bytes", output.Problem.Detail)
}

func TestResolveParameter_ToolErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   resolveParameterInput
		wantErr string
	}{
		{name: "no operation or path", input: resolveParameterInput{}, wantErr: "either operation or path must be provided"},
		{name: "unknown operation", input: resolveParameterInput{Operation: "deletePet"}, wantErr: `operation "deletePet" not found`},
		{name: "unmatched path", input: resolveParameterInput{Path: "/nowhere"}, wantErr: "no operation matches GET /nowhere"},
		{name: "name without in", input: resolveParameterInput{Operation: "findPets", Name: "limit"}, wantErr: "name and in must be provided together"},
		{name: "undeclared parameter", input: resolveParameterInput{Operation: "findPets", Name: "page", In: "query"}, wantErr: `findPets declares no query parameter "page"`},
		{
			name:    "body and form",
			input:   resolveParameterInput{Operation: "addPet", Body: "{}", Form: map[string][]string{"Name": {"x"}}},
			wantErr: "body and form cannot be used together",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			specCache.reset()
			tt.input.Spec = specInput{Content: testutil.PetStore20}
			result, _ := callResolveParameter(t, tt.input)
			require.NotNil(t, result)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.wantErr)
		})
	}
}
