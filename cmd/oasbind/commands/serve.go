package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/joeshaw/envdecode"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/erraggy/oasbind"
	"github.com/erraggy/oasbind/binder"
	"github.com/erraggy/oasbind/parser"
)

// ServeConfig is the process configuration of the serve command. Each field
// can be set from the environment and overridden by the matching flag.
type ServeConfig struct {
	// Addr is the listen address. ENV: OASBIND_ADDR
	Addr string `env:"OASBIND_ADDR,default=:8080"`
	// MaxBodySize caps request bodies in bytes. ENV: OASBIND_MAX_BODY_SIZE
	MaxBodySize int64 `env:"OASBIND_MAX_BODY_SIZE,default=10485760"`
	// MetricsPath serves Prometheus metrics; empty disables it. ENV: OASBIND_METRICS_PATH
	MetricsPath string `env:"OASBIND_METRICS_PATH,default=/metrics"`
	// ShutdownTimeout bounds graceful shutdown. ENV: OASBIND_SHUTDOWN_TIMEOUT
	ShutdownTimeout time.Duration `env:"OASBIND_SHUTDOWN_TIMEOUT,default=10s"`
}

// LoadServeConfig reads ServeConfig from the environment.
func LoadServeConfig() (ServeConfig, error) {
	var cfg ServeConfig
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return cfg, fmt.Errorf("reading environment: %w", err)
	}
	return cfg, nil
}

// SetupServeFlags creates and configures a FlagSet for the serve command.
// Flag defaults come from cfg so the environment sets them and flags win.
func SetupServeFlags(cfg *ServeConfig) *flag.FlagSet {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address (env OASBIND_ADDR)")
	fs.Int64Var(&cfg.MaxBodySize, "max-body-size", cfg.MaxBodySize, "maximum request body size in bytes (env OASBIND_MAX_BODY_SIZE)")
	fs.StringVar(&cfg.MetricsPath, "metrics-path", cfg.MetricsPath, "path serving Prometheus metrics, empty to disable (env OASBIND_METRICS_PATH)")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "graceful shutdown timeout (env OASBIND_SHUTDOWN_TIMEOUT)")

	fs.Usage = func() {
		output := fs.Output()
		Writef(output, "Usage: oasbind serve [flags] <file>\n\n")
		Writef(output, "Serve every operation of the document. Each request is resolved and the\n")
		Writef(output, "resolved parameters are echoed back as JSON; failures are answered with\n")
		Writef(output, "application/problem+json.\n\n")
		Writef(output, "Flags:\n")
		fs.PrintDefaults()
		Writef(output, "\nExamples:\n")
		Writef(output, "  oasbind serve openapi.yaml\n")
		Writef(output, "  OASBIND_ADDR=127.0.0.1:9000 oasbind serve --max-body-size 65536 openapi.yaml\n")
	}

	return fs
}

// EchoResponse is the body written by the serve command's handlers.
type EchoResponse struct {
	Operation  string         `json:"operation"`
	Parameters map[string]any `json:"parameters"`
}

func echoHandler(op *binder.Operation) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := EchoResponse{
			Operation:  op.Name(),
			Parameters: binder.ParamsFrom(r.Context()).Flatten(),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})
}

// NewServeHandler builds the HTTP handler for spec: every operation mounted
// behind the resolver middleware, plus the metrics endpoint.
func NewServeHandler(spec *binder.Spec, cfg ServeConfig, logger parser.Logger) (http.Handler, error) {
	reg := prometheus.NewRegistry()

	resolver, err := binder.New(
		binder.WithLogger(logger),
		binder.WithMetrics(binder.NewMetricsWithRegistry(reg)),
		binder.WithMaxBodySize(cfg.MaxBodySize),
	)
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID, middleware.Recoverer, middleware.SetHeader("Server", oasbind.UserAgent()))

	handlers := make(map[string]http.Handler)
	for _, op := range spec.Operations() {
		handlers[op.Name()] = otelhttp.WithRouteTag(op.Path, echoHandler(op))
	}
	if err := resolver.Mount(router, spec, handlers); err != nil {
		return nil, err
	}

	if cfg.MetricsPath != "" {
		router.Handle(cfg.MetricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		}))
	}

	return otelhttp.NewHandler(router, "oasbind"), nil
}

// RunServer serves h on ls until ctx is done, then shuts down gracefully.
func RunServer(ctx context.Context, ls net.Listener, h http.Handler, shutdownTimeout time.Duration) error {
	server := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return server.Serve(ls)
	})
	eg.Go(func() error {
		<-egCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err := eg.Wait()
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// HandleServe executes the serve command
func HandleServe(args []string, env Env) error {
	cfg, err := LoadServeConfig()
	if err != nil {
		return err
	}
	fs := SetupServeFlags(&cfg)
	fs.SetOutput(env.Stderr)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 || fs.Arg(0) == StdinFilePath {
		fs.Usage()
		return fmt.Errorf("serve command requires exactly one file path")
	}

	spec, _, err := LoadSpec(fs.Arg(0), env.Stdin, env.Logger)
	if err != nil {
		return err
	}
	h, err := NewServeHandler(spec, cfg, env.Logger)
	if err != nil {
		return err
	}

	ls, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Addr, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env.Logger.Info("serving", "addr", ls.Addr().String(), "operations", len(spec.Operations()), "metrics", cfg.MetricsPath)
	return RunServer(ctx, ls, h, cfg.ShutdownTimeout)
}
