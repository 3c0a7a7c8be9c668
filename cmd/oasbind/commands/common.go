// Package commands provides CLI command handlers for oasbind.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oasbind"
	"github.com/erraggy/oasbind/binder"
	"github.com/erraggy/oasbind/parser"
)

// Output format constants
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// StdinFilePath is the special file path used to indicate reading from stdin.
const StdinFilePath = "-"

// Env holds the streams and logger a command runs with.
type Env struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger parser.Logger
}

// DefaultEnv returns an Env bound to the process streams. Logging is
// discarded until main installs a logger.
func DefaultEnv() Env {
	return Env{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr, Logger: parser.NopLogger{}}
}

// ValidateOutputFormat validates an output format and returns an error if invalid.
func ValidateOutputFormat(format string) error {
	if format != FormatText && format != FormatJSON && format != FormatYAML {
		return fmt.Errorf("invalid format '%s'. Valid formats: %s, %s, %s", format, FormatText, FormatJSON, FormatYAML)
	}
	return nil
}

// OutputStructured writes data to w in the specified format (json or yaml).
func OutputStructured(w io.Writer, data any, format string) error {
	var bytes []byte
	var err error

	switch format {
	case FormatJSON:
		bytes, err = json.MarshalIndent(data, "", "  ")
	case FormatYAML:
		bytes, err = yaml.Marshal(data)
	default:
		return fmt.Errorf("invalid format for structured output: %s", format)
	}

	if err != nil {
		return fmt.Errorf("marshaling to %s: %w", format, err)
	}

	Writef(w, "%s\n", bytes)
	return nil
}

// FormatSpecPath returns a display-friendly path for the specification.
// Returns "<stdin>" if the path is StdinFilePath, otherwise returns the path as-is.
func FormatSpecPath(specPath string) string {
	if specPath == StdinFilePath {
		return "<stdin>"
	}
	return specPath
}

// Writef writes formatted output to the writer.
// If the write fails, it logs to stderr (useful for debugging).
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}

// LoadSpec parses the document at specPath (or stdin for "-") and compiles
// its binding model. Compile warnings are logged.
func LoadSpec(specPath string, stdin io.Reader, logger parser.Logger) (*binder.Spec, *parser.ParseResult, error) {
	opts := []parser.Option{parser.WithLogger(logger)}
	if specPath == StdinFilePath {
		opts = append(opts, parser.WithReader(stdin), parser.WithSourceName("<stdin>"))
	} else {
		opts = append(opts, parser.WithFilePath(specPath))
	}

	result, err := parser.ParseWithOptions(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", FormatSpecPath(specPath), err)
	}

	spec, err := binder.Compile(result)
	if err != nil {
		return nil, nil, fmt.Errorf("compiling %s: %w", FormatSpecPath(specPath), err)
	}
	for _, w := range spec.Warnings {
		logger.Warn("parameter serialization not fully supported", "detail", w)
	}
	return spec, result, nil
}

// OutputSpecHeader writes the common specification header to w.
func OutputSpecHeader(w io.Writer, specPath string, result *parser.ParseResult) {
	Writef(w, "oasbind version: %s\n", oasbind.Version())
	Writef(w, "Specification: %s\n", FormatSpecPath(specPath))
	Writef(w, "OAS Version: %s\n", result.Version)
}
