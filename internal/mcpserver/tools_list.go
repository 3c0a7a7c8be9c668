package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oasbind/binder"
	"github.com/erraggy/oasbind/internal/httputil"
	"github.com/erraggy/oasbind/parser"
)

type listParametersInput struct {
	Spec      specInput `json:"spec"                jsonschema:"The OAS document to read"`
	Operation string    `json:"operation,omitempty" jsonschema:"Only list the operation with this operationId"`
	Method    string    `json:"method,omitempty"    jsonschema:"Filter by HTTP method"`
	Path      string    `json:"path,omitempty"      jsonschema:"Filter by path template (e.g. /pets/{PetName})"`
	In        string    `json:"in,omitempty"        jsonschema:"Only list parameters in this location (path\\, query\\, header\\, cookie\\, formData\\, body)"`
	Limit     int       `json:"limit,omitempty"     jsonschema:"Maximum number of operations to return (default 100)"`
	Offset    int       `json:"offset,omitempty"    jsonschema:"Skip the first N operations (for pagination)"`
}

type parameterSummary struct {
	Name             string   `json:"name"`
	In               string   `json:"in"`
	Type             string   `json:"type,omitempty"`
	Format           string   `json:"format,omitempty"`
	Required         bool     `json:"required,omitempty"`
	Default          any      `json:"default,omitempty"`
	CollectionFormat string   `json:"collection_format,omitempty"`
	MediaTypes       []string `json:"media_types,omitempty"`
}

type operationSummary struct {
	Operation  string             `json:"operation"`
	Method     string             `json:"method"`
	Path       string             `json:"path"`
	Parameters []parameterSummary `json:"parameters,omitempty"`
}

type listParametersOutput struct {
	Total      int                `json:"total"`
	Matched    int                `json:"matched"`
	Returned   int                `json:"returned"`
	Operations []operationSummary `json:"operations,omitempty"`
	Warnings   []string           `json:"warnings,omitempty"`
}

func (ts *toolServer) handleListParameters(_ context.Context, _ *mcp.CallToolRequest, input listParametersInput) (*mcp.CallToolResult, any, error) {
	spec, err := input.Spec.resolve(ts.logger)
	if err != nil {
		return errResult(err), nil, nil
	}

	if input.Method != "" && !httputil.IsMethod(input.Method) {
		return errResult(fmt.Errorf("unknown method %q", input.Method)), nil, nil
	}

	var loc binder.Location
	if input.In != "" {
		if loc, err = binder.ParseLocation(input.In); err != nil {
			return errResult(err), nil, nil
		}
	}

	all := spec.Operations()
	var matched []*binder.Operation
	for _, op := range all {
		if input.Operation != "" && op.ID != input.Operation {
			continue
		}
		if input.Method != "" && !strings.EqualFold(op.Method, input.Method) {
			continue
		}
		if input.Path != "" && op.Path != input.Path {
			continue
		}
		matched = append(matched, op)
	}
	if input.Operation != "" && len(matched) == 0 {
		return errResult(fmt.Errorf("operation %q not found", input.Operation)), nil, nil
	}

	returned := paginate(matched, input.Offset, input.Limit)
	output := listParametersOutput{
		Total:      len(all),
		Matched:    len(matched),
		Returned:   len(returned),
		Operations: makeSlice[operationSummary](len(returned)),
		Warnings:   spec.Warnings,
	}
	for _, op := range returned {
		summary := operationSummary{Operation: op.Name(), Method: op.Method, Path: op.Path}
		for _, d := range op.Params {
			if loc != "" && d.Location != loc {
				continue
			}
			summary.Parameters = append(summary.Parameters, summarizeDescriptor(d))
		}
		output.Operations = append(output.Operations, summary)
	}

	return nil, output, nil
}

func summarizeDescriptor(d *binder.Descriptor) parameterSummary {
	ps := parameterSummary{
		Name:       d.Name,
		In:         string(d.Location),
		Type:       string(d.Type()),
		Required:   d.Required,
		MediaTypes: d.MediaTypes,
	}
	if d.Type() == parser.TypeArray {
		ps.CollectionFormat = d.CollectionFormat
	}
	if d.Schema == nil {
		return ps
	}
	ps.Format = d.Schema.Format
	if d.Schema.HasDefault() {
		ps.Default = d.Schema.Default.Value
		if d.Schema.Default.Kind == parser.DefaultEncoded {
			ps.Default = d.Schema.Default.Text
		}
	}
	return ps
}
