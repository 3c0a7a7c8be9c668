package binder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/erraggy/oasbind/oaserrors"
)

type paramsKey struct{}

// WithParams returns a context carrying p.
func WithParams(ctx context.Context, p *Params) context.Context {
	return context.WithValue(ctx, paramsKey{}, p)
}

// ParamsFrom returns the resolved parameters stored by the middleware, or
// nil. Params accessors are safe to call on nil.
func ParamsFrom(ctx context.Context) *Params {
	p, _ := ctx.Value(paramsKey{}).(*Params)
	return p
}

// Middleware resolves every parameter of op before calling next. Failures
// are passed to the configured ErrorHandler and next is not called.
func (r *Resolver) Middleware(op *Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx, span := r.tracer.Start(req.Context(), "binder.Middleware", trace.WithAttributes(
				attribute.String("oasbind.operation", op.Name()),
			))
			defer span.End()
			req = req.WithContext(ctx)

			hr, err := NewHTTPRequest(req, r.maxBodySize)
			if err != nil {
				r.reject(w, req, op, span, bodyFailure(op, err))
				return
			}
			if _, err := r.ResolveAll(ctx, op, hr); err != nil {
				r.reject(w, req, op, span, err)
				return
			}
			next.ServeHTTP(w, req.WithContext(WithParams(ctx, hr.Params())))
		})
	}
}

// bodyFailure turns an undecodable form into a 400 for the body parameter.
func bodyFailure(op *Operation, err error) error {
	if !errors.Is(err, ErrMalformedForm) {
		return err
	}
	name := DefaultBodyName
	if body := op.Body(); body != nil {
		name = body.Name
	}
	return oaserrors.NewInvalidFormat(string(LocationBody), name, "malformed form data", err)
}

func (r *Resolver) reject(w http.ResponseWriter, req *http.Request, op *Operation, span trace.Span, err error) {
	status := oaserrors.HTTPStatus(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, http.StatusText(status))
	r.metrics.observeRejection(op.Name(), status)

	if status >= http.StatusInternalServerError {
		r.logger.Error("request parameters could not be resolved", "operation", op.Name(), "status", status, "error", err)
	} else {
		var resErr *oaserrors.ResolutionError
		if errors.As(err, &resErr) {
			r.logger.Info("request rejected", "operation", op.Name(), "location", resErr.Location, "name", resErr.Name, "kind", resErr.Kind)
		} else {
			r.logger.Info("request rejected", "operation", op.Name(), "status", status, "error", err)
		}
	}
	r.errorHandler(w, req, err)
}

// Mount registers a handler for each operation in spec that has one in
// handlers, keyed by operationId (or "METHOD /path" when there is none),
// wrapped in Middleware. A handler key that names no operation is an error.
func (r *Resolver) Mount(router chi.Router, spec *Spec, handlers map[string]http.Handler) error {
	used := make(map[string]bool, len(handlers))
	for _, op := range spec.Operations() {
		h, ok := handlers[op.Name()]
		if !ok {
			r.logger.Debug("operation has no handler", "operation", op.Name())
			continue
		}
		used[op.Name()] = true
		router.With(r.Middleware(op)).Method(op.Method, op.Path, h)
	}

	var unknown []string
	for name := range handlers {
		if !used[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return &oaserrors.ConfigError{
			Option:  "handlers",
			Value:   unknown,
			Message: fmt.Sprintf("%d handler(s) match no operation", len(unknown)),
		}
	}
	return nil
}
