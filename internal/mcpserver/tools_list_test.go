package mcpserver

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasbind/internal/testutil"
	"github.com/erraggy/oasbind/parser"
)

func newTestToolServer() *toolServer {
	return &toolServer{logger: parser.NopLogger{}}
}

// resultText returns the text of a single-content tool result.
func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected *mcp.TextContent, got %T", res.Content[0])
	return tc.Text
}

func callListParameters(t *testing.T, input listParametersInput) (*mcp.CallToolResult, listParametersOutput) {
	t.Helper()
	result, out, err := newTestToolServer().handleListParameters(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)
	if out == nil {
		return result, listParametersOutput{}
	}
	lo, ok := out.(listParametersOutput)
	require.True(t, ok, "expected listParametersOutput, got %T", out)
	return result, lo
}

func TestListParameters_All(t *testing.T) {
	specCache.reset()
	result, output := callListParameters(t, listParametersInput{
		Spec: specInput{Content: testutil.PetStore20},
	})

	assert.Nil(t, result)
	assert.Equal(t, 3, output.Total)
	assert.Equal(t, 3, output.Matched)
	assert.Equal(t, 3, output.Returned)
	require.Len(t, output.Operations, 3)

	names := make([]string, 0, len(output.Operations))
	for _, op := range output.Operations {
		names = append(names, op.Operation)
	}
	assert.Equal(t, []string{"findPets", "addPet", "updatePet"}, names)

	findPets := output.Operations[0]
	assert.Equal(t, "GET", findPets.Method)
	assert.Equal(t, "/api/pets", findPets.Path)
	require.Len(t, findPets.Parameters, 3)
	assert.Equal(t, parameterSummary{
		Name: "tags", In: "query", Type: "array", CollectionFormat: "csv",
	}, findPets.Parameters[0])
	assert.Equal(t, parameterSummary{
		Name: "limit", In: "query", Type: "integer", Format: "int32", Default: int64(20),
	}, findPets.Parameters[1])
	assert.Equal(t, parameterSummary{
		Name: "X-Request-Id", In: "header", Type: "string", Required: true,
	}, findPets.Parameters[2])
}

func TestListParameters_Filters(t *testing.T) {
	specCache.reset()
	tests := []struct {
		name      string
		input     listParametersInput
		wantOps   []string
		wantCount int
	}{
		{name: "by operation", input: listParametersInput{Operation: "updatePet"}, wantOps: []string{"updatePet"}, wantCount: 2},
		{name: "by method", input: listParametersInput{Method: "post"}, wantOps: []string{"addPet"}, wantCount: 3},
		{name: "by path", input: listParametersInput{Path: "/api/pets/{PetName}"}, wantOps: []string{"updatePet"}, wantCount: 2},
		{name: "by location", input: listParametersInput{In: "header"}, wantOps: []string{"findPets", "addPet", "updatePet"}, wantCount: 1},
		{name: "no match", input: listParametersInput{Method: "DELETE"}, wantOps: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.input.Spec = specInput{Content: testutil.PetStore20}
			result, output := callListParameters(t, tt.input)
			require.Nil(t, result)

			var ops []string
			count := 0
			for _, op := range output.Operations {
				ops = append(ops, op.Operation)
				count += len(op.Parameters)
			}
			assert.Equal(t, tt.wantOps, ops)
			assert.Equal(t, tt.wantCount, count)
		})
	}
}

func TestListParameters_BodyDescriptor(t *testing.T) {
	specCache.reset()
	_, output := callListParameters(t, listParametersInput{
		Spec:      specInput{Content: testutil.PetStore20},
		Operation: "updatePet",
		In:        "body",
	})
	require.Len(t, output.Operations, 1)
	require.Len(t, output.Operations[0].Parameters, 1)

	body := output.Operations[0].Parameters[0]
	assert.Equal(t, "PetData", body.Name)
	assert.Equal(t, "object", body.Type)
	assert.True(t, body.Required)
	assert.Equal(t, []string{"application/json", "text/plain"}, body.MediaTypes)
}

func TestListParameters_Pagination(t *testing.T) {
	specCache.reset()
	_, output := callListParameters(t, listParametersInput{
		Spec:   specInput{Content: testutil.PetStore20},
		Offset: 1,
		Limit:  1,
	})
	assert.Equal(t, 3, output.Matched)
	assert.Equal(t, 1, output.Returned)
	require.Len(t, output.Operations, 1)
	assert.Equal(t, "addPet", output.Operations[0].Operation)
}

func TestListParameters_Errors(t *testing.T) {
	specCache.reset()
	tests := []struct {
		name    string
		input   listParametersInput
		wantErr string
	}{
		{
			name:    "unknown operation",
			input:   listParametersInput{Spec: specInput{Content: testutil.PetStore20}, Operation: "deletePet"},
			wantErr: `operation "deletePet" not found`,
		},
		{
			name:    "unknown location",
			input:   listParametersInput{Spec: specInput{Content: testutil.PetStore20}, In: "matrix"},
			wantErr: "matrix",
		},
		{
			name:    "unknown method",
			input:   listParametersInput{Spec: specInput{Content: testutil.PetStore20}, Method: "brew"},
			wantErr: `unknown method "brew"`,
		},
		{
			name:    "missing spec",
			input:   listParametersInput{},
			wantErr: "exactly one of file or content must be provided",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _ := callListParameters(t, tt.input)
			require.NotNil(t, result)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.wantErr)
		})
	}
}
