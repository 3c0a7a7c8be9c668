package binder

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/erraggy/oasbind/constraint"
	"github.com/erraggy/oasbind/parser"
)

// DefaultMaxBodySize is the request body limit applied by the HTTP adapter.
const DefaultMaxBodySize int64 = 10 << 20

const tracerName = "github.com/erraggy/oasbind/binder"

// Option is a functional option for configuring a Resolver.
type Option func(*config) error

type config struct {
	validator       ConstraintValidator
	headerValidator ConstraintValidator
	redactHeaders   bool
	logger          parser.Logger
	tracer          trace.Tracer
	metrics         *Metrics
	maxBodySize     int64
	errorHandler    ErrorHandler
}

func defaultConfig() *config {
	return &config{
		validator:    constraint.New(),
		logger:       parser.NopLogger{},
		tracer:       otel.Tracer(tracerName),
		maxBodySize:  DefaultMaxBodySize,
		errorHandler: ProblemHandler,
	}
}

// WithValidator replaces the constraint validator for every location.
func WithValidator(v ConstraintValidator) Option {
	return func(c *config) error {
		if v == nil {
			return fmt.Errorf("binder: validator cannot be nil")
		}
		c.validator = v
		c.headerValidator = v
		return nil
	}
}

// WithRedactedHeaders keeps header values out of error messages, for
// deployments where headers carry credentials. Enum failures then read
// "No enum match" without the rejected value. A validator set with
// WithValidator is still used for headers.
func WithRedactedHeaders() Option {
	return func(c *config) error {
		c.redactHeaders = true
		return nil
	}
}

// WithLogger sets the logger. Default: parser.NopLogger.
func WithLogger(l parser.Logger) Option {
	return func(c *config) error {
		if l == nil {
			l = parser.NopLogger{}
		}
		c.logger = l
		return nil
	}
}

// WithTracer sets the tracer used for resolution spans. Default: the
// global tracer provider.
func WithTracer(t trace.Tracer) Option {
	return func(c *config) error {
		if t == nil {
			return fmt.Errorf("binder: tracer cannot be nil")
		}
		c.tracer = t
		return nil
	}
}

// WithMetrics records resolution outcomes. Default: no metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *config) error {
		c.metrics = m
		return nil
	}
}

// WithMaxBodySize limits the request body the HTTP adapter reads.
// Default: 10 MiB.
func WithMaxBodySize(n int64) Option {
	return func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("binder: max body size must be positive, got %d", n)
		}
		c.maxBodySize = n
		return nil
	}
}

// WithErrorHandler sets how the middleware reports failures.
// Default: ProblemHandler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(c *config) error {
		if h == nil {
			return fmt.Errorf("binder: error handler cannot be nil")
		}
		c.errorHandler = h
		return nil
	}
}
