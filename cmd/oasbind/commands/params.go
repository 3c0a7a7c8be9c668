package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/erraggy/oasbind/binder"
	"github.com/erraggy/oasbind/parser"
)

// ParamsFlags contains flags for the params command
type ParamsFlags struct {
	Operation string
	Format    string
	Quiet     bool
}

// SetupParamsFlags creates and configures a FlagSet for the params command.
// Returns the FlagSet and a ParamsFlags struct with bound flag variables.
func SetupParamsFlags() (*flag.FlagSet, *ParamsFlags) {
	fs := flag.NewFlagSet("params", flag.ContinueOnError)
	flags := &ParamsFlags{}

	fs.StringVar(&flags.Operation, "operation", "", "only list the operation with this operationId")
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: omit the specification header")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: omit the specification header")

	fs.Usage = func() {
		output := fs.Output()
		Writef(output, "Usage: oasbind params [flags] <file|->\n\n")
		Writef(output, "List the compiled parameter descriptors of every operation.\n\n")
		Writef(output, "Flags:\n")
		fs.PrintDefaults()
		Writef(output, "\nExamples:\n")
		Writef(output, "  oasbind params openapi.yaml\n")
		Writef(output, "  oasbind params --operation updatePet --format json openapi.yaml\n")
		Writef(output, "  cat openapi.yaml | oasbind params -q -\n")
	}

	return fs, flags
}

// OperationOutput describes one compiled operation.
type OperationOutput struct {
	Operation  string             `json:"operation" yaml:"operation"`
	Method     string             `json:"method" yaml:"method"`
	Path       string             `json:"path" yaml:"path"`
	Parameters []DescriptorOutput `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// DescriptorOutput describes one compiled parameter.
type DescriptorOutput struct {
	Name             string   `json:"name" yaml:"name"`
	In               string   `json:"in" yaml:"in"`
	Type             string   `json:"type,omitempty" yaml:"type,omitempty"`
	Format           string   `json:"format,omitempty" yaml:"format,omitempty"`
	Required         bool     `json:"required,omitempty" yaml:"required,omitempty"`
	Default          any      `json:"default,omitempty" yaml:"default,omitempty"`
	CollectionFormat string   `json:"collectionFormat,omitempty" yaml:"collectionFormat,omitempty"`
	MediaTypes       []string `json:"mediaTypes,omitempty" yaml:"mediaTypes,omitempty"`
}

// DescribeOperation converts a compiled operation for output.
func DescribeOperation(op *binder.Operation) OperationOutput {
	out := OperationOutput{Operation: op.Name(), Method: op.Method, Path: op.Path}
	for _, d := range op.Params {
		do := DescriptorOutput{
			Name:       d.Name,
			In:         string(d.Location),
			Type:       string(d.Type()),
			Required:   d.Required,
			MediaTypes: d.MediaTypes,
		}
		if d.Type() == parser.TypeArray {
			do.CollectionFormat = d.CollectionFormat
		}
		if d.Schema != nil {
			do.Format = d.Schema.Format
			if d.Schema.HasDefault() {
				do.Default = d.Schema.Default.Value
				if d.Schema.Default.Kind == parser.DefaultEncoded {
					do.Default = d.Schema.Default.Text
				}
			}
		}
		out.Parameters = append(out.Parameters, do)
	}
	return out
}

// HandleParams executes the params command
func HandleParams(args []string, env Env) error {
	fs, flags := SetupParamsFlags()
	fs.SetOutput(env.Stderr)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("params command requires exactly one file path or '-' for stdin")
	}
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}

	specPath := fs.Arg(0)
	spec, result, err := LoadSpec(specPath, env.Stdin, env.Logger)
	if err != nil {
		return err
	}

	ops := spec.Operations()
	if flags.Operation != "" {
		op, ok := spec.Operation(flags.Operation)
		if !ok {
			return fmt.Errorf("operation %q not found", flags.Operation)
		}
		ops = []*binder.Operation{op}
	}

	described := make([]OperationOutput, 0, len(ops))
	for _, op := range ops {
		described = append(described, DescribeOperation(op))
	}

	if flags.Format != FormatText {
		return OutputStructured(env.Stdout, described, flags.Format)
	}

	if !flags.Quiet {
		OutputSpecHeader(env.Stderr, specPath, result)
		Writef(env.Stderr, "Operations: %d\n\n", len(described))
	}
	writeOperations(env.Stdout, described)
	return nil
}

func writeOperations(w io.Writer, ops []OperationOutput) {
	for i, op := range ops {
		if i > 0 {
			Writef(w, "\n")
		}
		Writef(w, "%s %s (%s)\n", op.Method, op.Path, op.Operation)
		if len(op.Parameters) == 0 {
			Writef(w, "  (no parameters)\n")
			continue
		}
		for _, p := range op.Parameters {
			var attrs []string
			if p.Required {
				attrs = append(attrs, "required")
			}
			if p.Format != "" {
				attrs = append(attrs, "format="+p.Format)
			}
			if p.CollectionFormat != "" {
				attrs = append(attrs, "collectionFormat="+p.CollectionFormat)
			}
			if p.Default != nil {
				attrs = append(attrs, fmt.Sprintf("default=%v", p.Default))
			}
			if len(p.MediaTypes) > 0 {
				attrs = append(attrs, "consumes="+strings.Join(p.MediaTypes, ","))
			}
			typ := p.Type
			if typ == "" {
				typ = "any"
			}
			Writef(w, "  %-8s %-20s %-8s %s\n", p.In, p.Name, typ, strings.Join(attrs, " "))
		}
	}
}
