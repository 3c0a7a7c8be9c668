package commands

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasbind"
	"github.com/erraggy/oasbind/binder"
	"github.com/erraggy/oasbind/internal/testutil"
	"github.com/erraggy/oasbind/parser"
)

func clearServeEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"OASBIND_ADDR", "OASBIND_MAX_BODY_SIZE", "OASBIND_METRICS_PATH", "OASBIND_SHUTDOWN_TIMEOUT"} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func TestLoadServeConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		clearServeEnv(t)
		cfg, err := LoadServeConfig()
		require.NoError(t, err)
		assert.Equal(t, ServeConfig{
			Addr:            ":8080",
			MaxBodySize:     10 << 20,
			MetricsPath:     "/metrics",
			ShutdownTimeout: 10 * time.Second,
		}, cfg)
	})

	t.Run("environment", func(t *testing.T) {
		clearServeEnv(t)
		t.Setenv("OASBIND_ADDR", "127.0.0.1:9000")
		t.Setenv("OASBIND_MAX_BODY_SIZE", "1024")
		t.Setenv("OASBIND_SHUTDOWN_TIMEOUT", "3s")
		cfg, err := LoadServeConfig()
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
		assert.Equal(t, int64(1024), cfg.MaxBodySize)
		assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	})

	t.Run("invalid", func(t *testing.T) {
		clearServeEnv(t)
		t.Setenv("OASBIND_MAX_BODY_SIZE", "lots")
		_, err := LoadServeConfig()
		assert.Error(t, err)
	})
}

func TestSetupServeFlags_OverrideEnvironment(t *testing.T) {
	cfg := ServeConfig{Addr: ":8080", MaxBodySize: 100, MetricsPath: "/metrics"}
	fs := SetupServeFlags(&cfg)
	require.NoError(t, fs.Parse([]string{"--addr", ":9999", "--metrics-path", ""}))
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, int64(100), cfg.MaxBodySize)
	assert.Empty(t, cfg.MetricsPath)
}

func newServeTestServer(t *testing.T, cfg ServeConfig) *httptest.Server {
	t.Helper()
	spec, _, err := LoadSpec(StdinFilePath, strings.NewReader(testutil.PetStore20), parser.NopLogger{})
	require.NoError(t, err)
	h, err := NewServeHandler(spec, cfg, parser.NopLogger{})
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewServeHandler(t *testing.T) {
	srv := newServeTestServer(t, ServeConfig{MaxBodySize: 1024, MetricsPath: "/metrics"})

	t.Run("echoes resolved parameters", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/pets?tags=a,b", nil)
		require.NoError(t, err)
		req.Header.Set("X-Request-Id", "r1")

		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, oasbind.UserAgent(), resp.Header.Get("Server"))

		var echo EchoResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&echo))
		assert.Equal(t, "findPets", echo.Operation)
		assert.Equal(t, []any{"a", "b"}, echo.Parameters["query.tags"])
		assert.EqualValues(t, 20, echo.Parameters["query.limit"])
		assert.Equal(t, "r1", echo.Parameters["header.X-Request-Id"])
	})

	t.Run("rejects with problem details", func(t *testing.T) {
		resp, err := srv.Client().Get(srv.URL + "/api/pets")
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, binder.ProblemContentType, resp.Header.Get("Content-Type"))

		var pd binder.ProblemDetail
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&pd))
		assert.Equal(t, `Missing required header parameter "X-Request-Id"`, pd.Detail)
	})

	t.Run("serves metrics", func(t *testing.T) {
		warmup, err := srv.Client().Get(srv.URL + "/api/pets")
		require.NoError(t, err)
		_ = warmup.Body.Close()

		resp, err := srv.Client().Get(srv.URL + "/metrics")
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "oasbind_")
	})
}

func TestRunServer(t *testing.T) {
	ls, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- RunServer(ctx, ls, http.NotFoundHandler(), time.Second)
	}()

	resp, err := http.Get("http://" + ls.Addr().String() + "/")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestHandleServe_RejectsStdin(t *testing.T) {
	clearServeEnv(t)
	env := newTestEnv(testutil.PetStore20)
	err := HandleServe([]string{StdinFilePath}, env.Env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one file path")
}
