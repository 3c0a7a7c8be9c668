package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/erraggy/oasbind/oaserrors"
	"go.yaml.in/yaml/v4"
)

// DefaultMaxFileSize caps the size of documents read from files or readers.
const DefaultMaxFileSize int64 = 32 << 20

// Parser loads OpenAPI documents. The zero value is usable.
type Parser struct {
	// Logger receives warnings about constructs that bind loosely.
	// Nil means NopLogger.
	Logger Logger
	// MaxFileSize limits document size in bytes. 0 means DefaultMaxFileSize.
	MaxFileSize int64
	// MaxSchemaDepth limits schema nesting. 0 means DefaultMaxSchemaDepth.
	MaxSchemaDepth int
}

// New creates a Parser with default settings.
func New() *Parser {
	return &Parser{}
}

func (p *Parser) log() Logger {
	if p.Logger == nil {
		return NopLogger{}
	}
	return p.Logger
}

func (p *Parser) maxFileSize() int64 {
	if p.MaxFileSize <= 0 {
		return DefaultMaxFileSize
	}
	return p.MaxFileSize
}

// ParseResult is the immutable parameter model of one document.
type ParseResult struct {
	// SourcePath is the file the document was read from, or a caller-chosen name.
	SourcePath string
	// Version is the declared "swagger" or "openapi" value.
	Version    string
	OASVersion OASVersion
	// Title and APIVersion come from the info object.
	Title      string
	APIVersion string
	// Paths maps path templates to their operations.
	Paths map[string]*PathItem
	// Consumes is the OAS 2.0 document-level consumes list.
	Consumes []string
	// Warnings lists constructs the parser accepted but cannot bind fully.
	Warnings []string
	// SourceSize is the document size in bytes.
	SourceSize int64
	// LoadTime is how long parsing took.
	LoadTime time.Duration
}

// Operations returns every operation sorted by path, then by method order.
func (r *ParseResult) Operations() []*Operation {
	var ops []*Operation
	for _, tmpl := range r.PathTemplates() {
		ops = append(ops, r.Paths[tmpl].Operations()...)
	}
	return ops
}

// PathTemplates returns the declared path templates in sorted order.
func (r *ParseResult) PathTemplates() []string {
	out := make([]string, 0, len(r.Paths))
	for tmpl := range r.Paths {
		out = append(out, tmpl)
	}
	sort.Strings(out)
	return out
}

// Parse reads and parses the document at path.
func (p *Parser) Parse(path string) (*ParseResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &oaserrors.ParseError{Path: path, Message: "cannot read file", Cause: err}
	}
	if info.Size() > p.maxFileSize() {
		return nil, &oaserrors.ResourceLimitError{ResourceType: "file_size", Limit: p.maxFileSize(), Actual: info.Size()}
	}

	data, err := os.ReadFile(path) //nolint:gosec // the caller chooses which document to load
	if err != nil {
		return nil, &oaserrors.ParseError{Path: path, Message: "cannot read file", Cause: err}
	}
	return p.parse(data, path)
}

// ParseReader parses a document from r.
func (p *Parser) ParseReader(r io.Reader) (*ParseResult, error) {
	limit := p.maxFileSize()
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, &oaserrors.ParseError{Path: "reader", Message: "cannot read input", Cause: err}
	}
	if int64(len(data)) > limit {
		return nil, &oaserrors.ResourceLimitError{ResourceType: "file_size", Limit: limit}
	}
	return p.parse(data, "reader")
}

// ParseBytes parses a document held in memory.
func (p *Parser) ParseBytes(data []byte) (*ParseResult, error) {
	return p.parse(data, "bytes")
}

func (p *Parser) parse(data []byte, source string) (*ParseResult, error) {
	start := time.Now()
	log := p.log().With("source", source)

	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &oaserrors.ParseError{Path: source, Message: "invalid YAML or JSON", Cause: err}
	}
	if root == nil {
		return nil, &oaserrors.ParseError{Path: source, Message: "document is empty"}
	}

	declared, version, err := detectVersion(root)
	if err != nil {
		return nil, &oaserrors.ParseError{Path: source, Message: err.Error()}
	}

	b := newBuilder(root, version, p.MaxSchemaDepth, log)
	paths, err := b.buildPaths(root, stringList(root["consumes"]))
	if err != nil {
		return nil, wrapBuildError(source, err)
	}

	info := mapField(root, "info")
	result := &ParseResult{
		SourcePath: source,
		Version:    declared,
		OASVersion: version,
		Title:      stringField(info, "title"),
		APIVersion: stringField(info, "version"),
		Paths:      paths,
		Consumes:   stringList(root["consumes"]),
		Warnings:   b.warnings,
		SourceSize: int64(len(data)),
		LoadTime:   time.Since(start),
	}
	log.Debug("parsed document", "version", declared, "paths", len(paths), "duration", result.LoadTime)
	return result, nil
}

// wrapBuildError keeps typed reference and limit errors intact and wraps
// everything else as a ParseError.
func wrapBuildError(source string, err error) error {
	var refErr *oaserrors.ReferenceError
	var limitErr *oaserrors.ResourceLimitError
	if errors.As(err, &refErr) || errors.As(err, &limitErr) {
		return fmt.Errorf("parser: %s: %w", source, err)
	}
	return &oaserrors.ParseError{Path: source, Cause: err}
}

func detectVersion(root map[string]any) (string, OASVersion, error) {
	declared := stringField(root, "swagger")
	if declared == "" {
		declared = stringField(root, "openapi")
	}
	if declared == "" {
		return "", Unknown, errors.New(`document must declare swagger: "2.0" or openapi: "3.x.y"`)
	}
	v, ok := ParseVersion(declared)
	if !ok {
		return declared, Unknown, fmt.Errorf("unsupported OpenAPI version %q", declared)
	}
	return declared, v, nil
}
