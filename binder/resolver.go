package binder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/erraggy/oasbind/constraint"
	"github.com/erraggy/oasbind/oaserrors"
	"github.com/erraggy/oasbind/parser"
)

// State is a step of the resolution pipeline.
type State int

const (
	StateExtracting State = iota
	StateDefaultResolving
	StateCoercing
	StateValidating
	StateResolved
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateExtracting:
		return "Extracting"
	case StateDefaultResolving:
		return "DefaultResolving"
	case StateCoercing:
		return "Coercing"
	case StateValidating:
		return "Validating"
	case StateResolved:
		return "Resolved"
	case StateFailed:
		return "Failed"
	}
	return "Unknown"
}

// Resolution is the outcome of resolving one parameter. State is
// StateResolved or StateFailed; a failed resolution never carries a value.
type Resolution struct {
	Descriptor *Descriptor
	Value      any
	// Absent is set for optional parameters that were not sent and have no
	// default. Nothing is stored for them.
	Absent bool
	// Defaulted is set when the schema default replaced a missing value.
	Defaulted bool
	// Warnings are non-blocking violations, such as lenient format checks.
	Warnings []constraint.Violation
	State    State
}

// Resolver runs the extract, default, coerce and validate pipeline. It
// holds no per-request state and is safe for concurrent use.
type Resolver struct {
	validator       ConstraintValidator
	headerValidator ConstraintValidator
	redactHeaders   bool
	logger          parser.Logger
	tracer          trace.Tracer
	metrics         *Metrics
	maxBodySize     int64
	errorHandler    ErrorHandler
}

// New creates a Resolver.
func New(opts ...Option) (*Resolver, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	headerValidator := cfg.headerValidator
	if headerValidator == nil {
		headerValidator = cfg.validator
		if cfg.redactHeaders {
			headerValidator = constraint.New(constraint.WithRedactedValues())
		}
	}
	return &Resolver{
		validator:       cfg.validator,
		headerValidator: headerValidator,
		redactHeaders:   cfg.redactHeaders,
		logger:          cfg.logger,
		tracer:          cfg.tracer,
		metrics:         cfg.metrics,
		maxBodySize:     cfg.maxBodySize,
		errorHandler:    cfg.errorHandler,
	}, nil
}

// Resolve resolves one parameter from rc. On success the value is stored
// back into rc, unless the parameter was absent.
//
// Request errors are *oaserrors.ResolutionError. Any other error means the
// schema could not be evaluated and is an *oaserrors.ConfigError.
func (r *Resolver) Resolve(ctx context.Context, d *Descriptor, rc RequestContext) (Resolution, error) {
	_, span := r.tracer.Start(ctx, "binder.Resolve", trace.WithAttributes(
		attribute.String("oasbind.parameter.location", string(d.Location)),
		attribute.String("oasbind.parameter.name", d.Name),
	))
	defer span.End()

	res, err := r.resolve(d, rc)
	outcome := outcomeOf(res, err)
	span.SetAttributes(attribute.String("oasbind.outcome", outcome))
	r.metrics.observeResolution(d.Location, outcome)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		if outcome == OutcomeConfigError {
			r.logger.Warn("parameter schema could not be evaluated", "location", d.Location, "name", d.Name, "error", err)
		} else {
			r.logger.Debug("parameter rejected", "location", d.Location, "name", d.Name, "outcome", outcome)
		}
		return res, err
	}

	for _, w := range res.Warnings {
		r.logger.Debug("parameter warning", "location", d.Location, "name", d.Name, "path", w.Path, "message", w.Message)
	}
	r.logger.Debug("parameter resolved", "location", d.Location, "name", d.Name, "outcome", outcome)
	return res, nil
}

func (r *Resolver) resolve(d *Descriptor, rc RequestContext) (Resolution, error) {
	res := Resolution{Descriptor: d, State: StateExtracting}
	raw := Extract(d, rc)

	res.State = StateDefaultResolving
	candidate, defaulted := ResolveDefault(d, raw)
	res.Defaulted = defaulted
	if candidate.IsAbsent() {
		if d.Required {
			res.State = StateFailed
			return res, oaserrors.NewMissingParameter(string(d.Location), d.Name)
		}
		res.State = StateResolved
		res.Absent = true
		return res, nil
	}

	res.State = StateCoercing
	value, err := Coerce(d, candidate)
	if err != nil {
		res.State = StateFailed
		detail := err.Error()
		var ce *CoercionError
		if errors.As(err, &ce) && r.redactHeaders && d.Location == LocationHeader {
			detail = ce.Redacted()
		}
		return res, oaserrors.NewInvalidFormat(string(d.Location), d.Name, detail, err)
	}

	res.State = StateValidating
	if d.Schema != nil {
		violations, err := r.validatorFor(d).Validate(value, d.Schema, d.Name)
		if err != nil {
			res.State = StateFailed
			return res, asConfigError(d, err)
		}
		if blocking := constraint.Blocking(violations); len(blocking) > 0 {
			res.State = StateFailed
			return res, oaserrors.NewSchemaValidation(string(d.Location), d.Name, blocking)
		}
		res.Warnings = violations
	}

	res.State = StateResolved
	res.Value = value
	rc.Store(d.Location, d.Name, value)
	return res, nil
}

// ResolveAll resolves every parameter of op in declared order and stops at
// the first failure.
func (r *Resolver) ResolveAll(ctx context.Context, op *Operation, rc RequestContext) ([]Resolution, error) {
	ctx, span := r.tracer.Start(ctx, "binder.ResolveAll", trace.WithAttributes(
		attribute.String("oasbind.operation", op.Name()),
		attribute.Int("oasbind.parameter.count", len(op.Params)),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		r.metrics.observeDuration(op.Name(), time.Since(start).Seconds())
	}()

	out := make([]Resolution, 0, len(op.Params))
	for _, d := range op.Params {
		res, err := r.Resolve(ctx, d, rc)
		if err != nil {
			span.SetStatus(codes.Error, "parameter resolution failed")
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}

func (r *Resolver) validatorFor(d *Descriptor) ConstraintValidator {
	if d.Location == LocationHeader {
		return r.headerValidator
	}
	return r.validator
}

func asConfigError(d *Descriptor, err error) error {
	var cfgErr *oaserrors.ConfigError
	if errors.As(err, &cfgErr) {
		return fmt.Errorf("binder: %s: %w", d, err)
	}
	return &oaserrors.ConfigError{
		Option:  "validator",
		Value:   d.String(),
		Message: "constraint validator failed",
		Cause:   err,
	}
}

func outcomeOf(res Resolution, err error) string {
	var resErr *oaserrors.ResolutionError
	switch {
	case errors.As(err, &resErr):
		switch resErr.Kind {
		case oaserrors.KindMissingRequired:
			return OutcomeMissing
		case oaserrors.KindInvalidFormat:
			return OutcomeInvalidFormat
		}
		return OutcomeSchemaValidation
	case err != nil:
		return OutcomeConfigError
	case res.Absent:
		return OutcomeAbsent
	case res.Defaulted:
		return OutcomeDefaulted
	}
	return OutcomeResolved
}
