package parser

import (
	"errors"
	"fmt"
	"io"
)

// Option configures ParseWithOptions.
type Option func(*parseConfig) error

type parseConfig struct {
	// Exactly one input source must be set.
	filePath *string
	reader   io.Reader
	bytes    []byte

	logger         Logger
	maxFileSize    int64
	maxSchemaDepth int
	sourceName     *string
}

// ParseWithOptions parses a document using functional options.
//
//	result, err := parser.ParseWithOptions(
//	    parser.WithFilePath("petstore.yaml"),
//	    parser.WithLogger(parser.NewSlogAdapter(slog.Default())),
//	)
func ParseWithOptions(opts ...Option) (*ParseResult, error) {
	cfg := &parseConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("parser: invalid options: %w", err)
		}
	}

	sources := 0
	if cfg.filePath != nil {
		sources++
	}
	if cfg.reader != nil {
		sources++
	}
	if cfg.bytes != nil {
		sources++
	}
	if sources != 1 {
		return nil, fmt.Errorf("parser: invalid options: exactly one input source is required, got %d", sources)
	}

	p := &Parser{
		Logger:         cfg.logger,
		MaxFileSize:    cfg.maxFileSize,
		MaxSchemaDepth: cfg.maxSchemaDepth,
	}

	var (
		result *ParseResult
		err    error
	)
	switch {
	case cfg.filePath != nil:
		result, err = p.Parse(*cfg.filePath)
	case cfg.reader != nil:
		result, err = p.ParseReader(cfg.reader)
	default:
		result, err = p.ParseBytes(cfg.bytes)
	}
	if err != nil {
		return nil, err
	}

	if cfg.sourceName != nil {
		result.SourcePath = *cfg.sourceName
	}
	return result, nil
}

// WithFilePath reads the document from a local file.
func WithFilePath(path string) Option {
	return func(c *parseConfig) error {
		if path == "" {
			return errors.New("file path cannot be empty")
		}
		c.filePath = &path
		return nil
	}
}

// WithReader reads the document from r.
func WithReader(r io.Reader) Option {
	return func(c *parseConfig) error {
		if r == nil {
			return errors.New("reader cannot be nil")
		}
		c.reader = r
		return nil
	}
}

// WithBytes parses an in-memory document.
func WithBytes(data []byte) Option {
	return func(c *parseConfig) error {
		if data == nil {
			return errors.New("bytes cannot be nil")
		}
		c.bytes = data
		return nil
	}
}

// WithLogger sets the logger used for parse warnings.
func WithLogger(l Logger) Option {
	return func(c *parseConfig) error {
		c.logger = l
		return nil
	}
}

// WithMaxFileSize limits the document size in bytes.
func WithMaxFileSize(n int64) Option {
	return func(c *parseConfig) error {
		if n < 0 {
			return fmt.Errorf("max file size cannot be negative: %d", n)
		}
		c.maxFileSize = n
		return nil
	}
}

// WithMaxSchemaDepth limits schema nesting.
func WithMaxSchemaDepth(n int) Option {
	return func(c *parseConfig) error {
		if n < 0 {
			return fmt.Errorf("max schema depth cannot be negative: %d", n)
		}
		c.maxSchemaDepth = n
		return nil
	}
}

// WithSourceName overrides ParseResult.SourcePath, useful for reader and byte inputs.
func WithSourceName(name string) Option {
	return func(c *parseConfig) error {
		c.sourceName = &name
		return nil
	}
}
