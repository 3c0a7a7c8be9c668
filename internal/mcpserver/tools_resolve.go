package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oasbind/binder"
	"github.com/erraggy/oasbind/internal/httputil"
	"github.com/erraggy/oasbind/oaserrors"
)

type resolveParameterInput struct {
	Spec        specInput           `json:"spec"                   jsonschema:"The OAS document to resolve against"`
	Operation   string              `json:"operation,omitempty"    jsonschema:"operationId of the operation"`
	Method      string              `json:"method,omitempty"       jsonschema:"HTTP method; used with path when operation is not set (default GET)"`
	Path        string              `json:"path,omitempty"         jsonschema:"Concrete request path such as /pets/fido; path parameters are taken from it"`
	PathParams  map[string]string   `json:"path_params,omitempty"  jsonschema:"Path parameter values when the operation is given by operationId"`
	Query       map[string][]string `json:"query,omitempty"        jsonschema:"Query parameters; repeated keys are separate list entries"`
	Headers     map[string][]string `json:"headers,omitempty"      jsonschema:"Request headers (names are case-insensitive)"`
	Cookies     map[string]string   `json:"cookies,omitempty"      jsonschema:"Cookie values"`
	Form        map[string][]string `json:"form,omitempty"         jsonschema:"Form fields for formData parameters or form request bodies"`
	Body        string              `json:"body,omitempty"         jsonschema:"Raw request body"`
	ContentType string              `json:"content_type,omitempty" jsonschema:"Media type of body or form (default application/json for body)"`
	Name        string              `json:"name,omitempty"         jsonschema:"Resolve only the parameter with this name (requires in)"`
	In          string              `json:"in,omitempty"           jsonschema:"Location of the parameter named by name"`
}

type resolvedParameter struct {
	Name      string   `json:"name"`
	In        string   `json:"in"`
	Value     any      `json:"value"`
	Absent    bool     `json:"absent,omitempty"`
	Defaulted bool     `json:"defaulted,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

type resolveParameterOutput struct {
	Operation  string                `json:"operation"`
	Resolved   bool                  `json:"resolved"`
	Parameters []resolvedParameter   `json:"parameters,omitempty"`
	Problem    *binder.ProblemDetail `json:"problem,omitempty"`
}

func (ts *toolServer) handleResolveParameter(ctx context.Context, _ *mcp.CallToolRequest, input resolveParameterInput) (*mcp.CallToolResult, any, error) {
	spec, err := input.Spec.resolve(ts.logger)
	if err != nil {
		return errResult(err), nil, nil
	}

	op, pathParams, err := findOperation(spec, input)
	if err != nil {
		return errResult(err), nil, nil
	}

	rc, err := buildRequest(input, pathParams)
	if err != nil {
		var limitErr *oaserrors.ResourceLimitError
		if errors.As(err, &limitErr) {
			pd := binder.NewProblemDetail(err)
			return nil, resolveParameterOutput{Operation: op.Name(), Problem: &pd}, nil
		}
		return errResult(err), nil, nil
	}

	resolver, err := binder.New(
		binder.WithLogger(ts.logger),
		binder.WithMaxBodySize(cfg.MaxBodySize),
	)
	if err != nil {
		return errResult(err), nil, nil
	}

	var results []binder.Resolution
	var resolveErr error
	if input.Name != "" || input.In != "" {
		d, err := findDescriptor(op, input.In, input.Name)
		if err != nil {
			return errResult(err), nil, nil
		}
		var res binder.Resolution
		if res, resolveErr = resolver.Resolve(ctx, d, rc); resolveErr == nil {
			results = append(results, res)
		}
	} else {
		results, resolveErr = resolver.ResolveAll(ctx, op, rc)
	}

	output := resolveParameterOutput{
		Operation:  op.Name(),
		Resolved:   resolveErr == nil,
		Parameters: makeSlice[resolvedParameter](len(results)),
	}
	for _, res := range results {
		rp := resolvedParameter{
			Name:      res.Descriptor.Name,
			In:        string(res.Descriptor.Location),
			Value:     res.Value,
			Absent:    res.Absent,
			Defaulted: res.Defaulted,
		}
		for _, w := range res.Warnings {
			rp.Warnings = append(rp.Warnings, w.Detail(res.Descriptor.Name))
		}
		output.Parameters = append(output.Parameters, rp)
	}
	if resolveErr != nil {
		pd := binder.NewProblemDetail(resolveErr)
		output.Problem = &pd
	}
	return nil, output, nil
}

func findOperation(spec *binder.Spec, input resolveParameterInput) (*binder.Operation, map[string]string, error) {
	if input.Operation != "" {
		op, ok := spec.Operation(input.Operation)
		if !ok {
			return nil, nil, fmt.Errorf("operation %q not found", input.Operation)
		}
		return op, input.PathParams, nil
	}
	if input.Path == "" {
		return nil, nil, fmt.Errorf("either operation or path must be provided")
	}

	method := httputil.NormalizeMethod(input.Method)
	op, params, ok := spec.Match(method, input.Path)
	if !ok {
		return nil, nil, fmt.Errorf("no operation matches %s %s", method, input.Path)
	}
	for name, value := range input.PathParams {
		if _, set := params[name]; !set {
			params[name] = value
		}
	}
	return op, params, nil
}

func findDescriptor(op *binder.Operation, in, name string) (*binder.Descriptor, error) {
	if in == "" || name == "" {
		return nil, fmt.Errorf("name and in must be provided together")
	}
	loc, err := binder.ParseLocation(in)
	if err != nil {
		return nil, err
	}
	d := op.Param(loc, name)
	if d == nil {
		return nil, &oaserrors.ConfigError{
			Option:  "parameter",
			Value:   name,
			Message: fmt.Sprintf("%s declares no %s parameter %q", op.Name(), loc, name),
		}
	}
	return d, nil
}

func buildRequest(input resolveParameterInput, pathParams map[string]string) (*binder.MapRequest, error) {
	if input.Body != "" && len(input.Form) > 0 {
		return nil, fmt.Errorf("body and form cannot be used together")
	}
	if int64(len(input.Body)) > cfg.MaxBodySize {
		return nil, &oaserrors.ResourceLimitError{
			ResourceType: "body_size",
			Limit:        cfg.MaxBodySize,
			Actual:       int64(len(input.Body)),
			Message:      fmt.Sprintf("request body exceeds %d bytes", cfg.MaxBodySize),
		}
	}

	rc := binder.NewMapRequest()
	for name, value := range pathParams {
		rc.Set(binder.LocationPath, name, value)
	}
	for name, values := range input.Query {
		rc.Set(binder.LocationQuery, name, values...)
	}
	for name, values := range input.Headers {
		rc.Set(binder.LocationHeader, name, values...)
	}
	for name, value := range input.Cookies {
		rc.Set(binder.LocationCookie, name, value)
	}

	switch {
	case len(input.Form) > 0:
		contentType := input.ContentType
		if contentType == "" {
			contentType = "application/x-www-form-urlencoded"
		}
		rc.SetForm(input.Form, contentType)
	case input.Body != "":
		contentType := input.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		rc.SetBody([]byte(input.Body), contentType)
	}
	return rc, nil
}
