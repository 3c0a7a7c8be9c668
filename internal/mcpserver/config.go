package mcpserver

import (
	"errors"
	"log/slog"
	"time"

	"github.com/joeshaw/envdecode"
)

// serverConfig holds all configurable MCP server defaults.
// Loaded once at startup from environment variables via loadConfig().
type serverConfig struct {
	// Cache settings.
	CacheEnabled       bool          `env:"OASBIND_MCP_CACHE_ENABLED,default=true"`
	CacheMaxSize       int           `env:"OASBIND_MCP_CACHE_MAX_SIZE,default=10"`
	CacheFileTTL       time.Duration `env:"OASBIND_MCP_CACHE_FILE_TTL,default=15m"`
	CacheContentTTL    time.Duration `env:"OASBIND_MCP_CACHE_CONTENT_TTL,default=15m"`
	CacheSweepInterval time.Duration `env:"OASBIND_MCP_CACHE_SWEEP_INTERVAL,default=60s"`

	// list_parameters defaults.
	ListLimit int `env:"OASBIND_MCP_LIST_LIMIT,default=100"`
	MaxLimit  int `env:"OASBIND_MCP_MAX_LIMIT,default=1000"`

	// Input limits.
	MaxInlineSize int64 `env:"OASBIND_MCP_MAX_INLINE_SIZE,default=10485760"`
	MaxBodySize   int64 `env:"OASBIND_MAX_BODY_SIZE,default=10485760"`
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

func defaultConfig() *serverConfig {
	return &serverConfig{
		CacheEnabled:       true,
		CacheMaxSize:       10,
		CacheFileTTL:       15 * time.Minute,
		CacheContentTTL:    15 * time.Minute,
		CacheSweepInterval: 60 * time.Second,
		ListLimit:          100,
		MaxLimit:           1000,
		MaxInlineSize:      10 * 1024 * 1024,
		MaxBodySize:        10 * 1024 * 1024,
	}
}

// loadConfig reads configuration from OASBIND_* environment variables.
// A value that does not parse logs a warning and every setting falls back
// to its default; a non-positive size or limit falls back individually.
func loadConfig() *serverConfig {
	defaults := defaultConfig()

	var c serverConfig
	if err := envdecode.Decode(&c); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		slog.Warn("invalid OASBIND_* environment, using defaults", "error", err)
		return defaults
	}

	if c.CacheMaxSize <= 0 {
		c.CacheMaxSize = positiveFallback("OASBIND_MCP_CACHE_MAX_SIZE", c.CacheMaxSize, defaults.CacheMaxSize)
	}
	if c.ListLimit <= 0 {
		c.ListLimit = positiveFallback("OASBIND_MCP_LIST_LIMIT", c.ListLimit, defaults.ListLimit)
	}
	if c.MaxLimit <= 0 {
		c.MaxLimit = positiveFallback("OASBIND_MCP_MAX_LIMIT", c.MaxLimit, defaults.MaxLimit)
	}
	if c.MaxInlineSize <= 0 {
		c.MaxInlineSize = int64(positiveFallback("OASBIND_MCP_MAX_INLINE_SIZE", int(c.MaxInlineSize), int(defaults.MaxInlineSize)))
	}
	if c.MaxBodySize <= 0 {
		c.MaxBodySize = int64(positiveFallback("OASBIND_MAX_BODY_SIZE", int(c.MaxBodySize), int(defaults.MaxBodySize)))
	}
	return &c
}

func positiveFallback(key string, value, fallback int) int {
	slog.Warn("non-positive env var, using default", "key", key, "value", value, "default", fallback)
	return fallback
}
