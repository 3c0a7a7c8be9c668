package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"github.com/erraggy/oasbind/binder"
	"github.com/erraggy/oasbind/internal/httputil"
)

// ErrResolutionFailed is returned by HandleResolve when a parameter does not
// resolve. The failure itself has already been written to the output.
var ErrResolutionFailed = errors.New("request parameters did not resolve")

// paramList collects repeated --param location.name=value flags.
type paramList []string

func (p *paramList) String() string {
	return strings.Join(*p, ", ")
}

func (p *paramList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

// ResolveFlags contains flags for the resolve command
type ResolveFlags struct {
	Operation   string
	Method      string
	Path        string
	Params      paramList
	Body        string
	BodyFile    string
	ContentType string
	Format      string
}

// SetupResolveFlags creates and configures a FlagSet for the resolve command.
// Returns the FlagSet and a ResolveFlags struct with bound flag variables.
func SetupResolveFlags() (*flag.FlagSet, *ResolveFlags) {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	flags := &ResolveFlags{}

	fs.StringVar(&flags.Operation, "operation", "", "operationId to resolve (or use --path)")
	fs.StringVar(&flags.Method, "method", "GET", "HTTP method used with --path")
	fs.StringVar(&flags.Path, "path", "", "concrete request path, matched against the path templates")
	fs.Var(&flags.Params, "param", "raw value as location.name=value (repeatable), e.g. query.limit=5")
	fs.StringVar(&flags.Body, "body", "", "raw request body")
	fs.StringVar(&flags.BodyFile, "body-file", "", "read the request body from a file")
	fs.StringVar(&flags.ContentType, "content-type", "application/json", "media type of the request body")
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")

	fs.Usage = func() {
		output := fs.Output()
		Writef(output, "Usage: oasbind resolve [flags] <file|->\n\n")
		Writef(output, "Resolve the parameters of one operation from raw values, as a server would.\n\n")
		Writef(output, "Flags:\n")
		fs.PrintDefaults()
		Writef(output, "\nExamples:\n")
		Writef(output, "  oasbind resolve --operation findPets --param query.limit=5 --param header.X-Request-Id=r1 openapi.yaml\n")
		Writef(output, "  oasbind resolve --method PATCH --path /api/pets/fido --body '{\"Name\":\"Fido\"}' openapi.yaml\n")
		Writef(output, "\nExit Codes:\n")
		Writef(output, "  0    Every parameter resolved\n")
		Writef(output, "  1    A parameter was missing or invalid, or the command failed\n")
	}

	return fs, flags
}

// ResolvedParam is one resolved parameter in command output.
type ResolvedParam struct {
	In        string   `json:"in" yaml:"in"`
	Name      string   `json:"name" yaml:"name"`
	Value     any      `json:"value" yaml:"value"`
	Absent    bool     `json:"absent,omitempty" yaml:"absent,omitempty"`
	Defaulted bool     `json:"defaulted,omitempty" yaml:"defaulted,omitempty"`
	Warnings  []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// ResolveOutput is the result of the resolve command.
type ResolveOutput struct {
	Operation  string                `json:"operation" yaml:"operation"`
	Parameters []ResolvedParam       `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Problem    *binder.ProblemDetail `json:"problem,omitempty" yaml:"problem,omitempty"`
}

// NewResolveOutput converts resolver results, and the error if any, for output.
func NewResolveOutput(op *binder.Operation, results []binder.Resolution, err error) ResolveOutput {
	out := ResolveOutput{Operation: op.Name()}
	for _, res := range results {
		rp := ResolvedParam{
			In:        string(res.Descriptor.Location),
			Name:      res.Descriptor.Name,
			Value:     res.Value,
			Absent:    res.Absent,
			Defaulted: res.Defaulted,
		}
		for _, w := range res.Warnings {
			rp.Warnings = append(rp.Warnings, w.Detail(res.Descriptor.Name))
		}
		out.Parameters = append(out.Parameters, rp)
	}
	if err != nil {
		pd := binder.NewProblemDetail(err)
		out.Problem = &pd
	}
	return out
}

// BuildRequest turns location.name=value pairs into a MapRequest.
func BuildRequest(params []string, body []byte, contentType string) (*binder.MapRequest, error) {
	rc := binder.NewMapRequest()
	for _, p := range params {
		key, value, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --param %q: expected location.name=value", p)
		}
		locName, name, ok := strings.Cut(key, ".")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --param %q: expected location.name=value", p)
		}
		loc, err := binder.ParseLocation(locName)
		if err != nil {
			return nil, fmt.Errorf("invalid --param %q: %w", p, err)
		}
		if loc == binder.LocationBody {
			return nil, fmt.Errorf("invalid --param %q: use --body for the request body", p)
		}
		rc.Set(loc, name, value)
	}
	if body != nil {
		rc.SetBody(body, contentType)
	}
	return rc, nil
}

// HandleResolve executes the resolve command
func HandleResolve(args []string, env Env) error {
	fs, flags := SetupResolveFlags()
	fs.SetOutput(env.Stderr)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("resolve command requires exactly one file path or '-' for stdin")
	}
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}
	if (flags.Operation == "") == (flags.Path == "") {
		return fmt.Errorf("exactly one of --operation or --path is required")
	}
	if flags.Body != "" && flags.BodyFile != "" {
		return fmt.Errorf("--body and --body-file cannot be used together")
	}

	var body []byte
	switch {
	case flags.Body != "":
		body = []byte(flags.Body)
	case flags.BodyFile != "":
		data, err := os.ReadFile(flags.BodyFile)
		if err != nil {
			return fmt.Errorf("reading body file: %w", err)
		}
		body = data
	}

	spec, _, err := LoadSpec(fs.Arg(0), env.Stdin, env.Logger)
	if err != nil {
		return err
	}

	rc, err := BuildRequest(flags.Params, body, flags.ContentType)
	if err != nil {
		return err
	}

	var op *binder.Operation
	if flags.Operation != "" {
		var ok bool
		if op, ok = spec.Operation(flags.Operation); !ok {
			return fmt.Errorf("operation %q not found", flags.Operation)
		}
	} else {
		var pathParams map[string]string
		var ok bool
		method := httputil.NormalizeMethod(flags.Method)
		op, pathParams, ok = spec.Match(method, flags.Path)
		if !ok {
			return fmt.Errorf("no operation matches %s %s", method, flags.Path)
		}
		for name, value := range pathParams {
			rc.Set(binder.LocationPath, name, value)
		}
	}

	resolver, err := binder.New(binder.WithLogger(env.Logger))
	if err != nil {
		return err
	}
	results, resolveErr := resolver.ResolveAll(context.Background(), op, rc)
	out := NewResolveOutput(op, results, resolveErr)

	if flags.Format != FormatText {
		if err := OutputStructured(env.Stdout, out, flags.Format); err != nil {
			return err
		}
	} else {
		writeResolution(env.Stdout, env.Stderr, out)
	}

	if resolveErr != nil {
		return ErrResolutionFailed
	}
	return nil
}

func writeResolution(stdout, stderr io.Writer, out ResolveOutput) {
	Writef(stdout, "%s\n", out.Operation)
	for _, p := range out.Parameters {
		var note string
		switch {
		case p.Absent:
			note = " (absent)"
		case p.Defaulted:
			note = " (default)"
		}
		Writef(stdout, "  %-8s %-20s = %s%s\n", p.In, p.Name, renderValue(p.Value), note)
		for _, w := range p.Warnings {
			Writef(stdout, "      ⚠ %s\n", w)
		}
	}
	if out.Problem != nil {
		Writef(stderr, "✗ %d %s: %s\n", out.Problem.Status, out.Problem.Title, out.Problem.Detail)
	}
}

// renderValue prints strings as-is and everything else as JSON.
func renderValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.MarshalWithOption(v, json.DisableHTMLEscape())
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
