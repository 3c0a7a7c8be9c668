package mcpserver

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// clearOASBINDEnv unsets the OASBIND_* variables the server reads so tests
// are isolated from the ambient environment.
func clearOASBINDEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OASBIND_MCP_CACHE_ENABLED", "OASBIND_MCP_CACHE_MAX_SIZE",
		"OASBIND_MCP_CACHE_FILE_TTL", "OASBIND_MCP_CACHE_CONTENT_TTL",
		"OASBIND_MCP_CACHE_SWEEP_INTERVAL",
		"OASBIND_MCP_LIST_LIMIT", "OASBIND_MCP_MAX_LIMIT",
		"OASBIND_MCP_MAX_INLINE_SIZE", "OASBIND_MAX_BODY_SIZE",
	} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearOASBINDEnv(t)

	c := loadConfig()

	assert.Equal(t, defaultConfig(), c)
	assert.True(t, c.CacheEnabled)
	assert.Equal(t, 10, c.CacheMaxSize)
	assert.Equal(t, 15*time.Minute, c.CacheFileTTL)
	assert.Equal(t, 15*time.Minute, c.CacheContentTTL)
	assert.Equal(t, 60*time.Second, c.CacheSweepInterval)
	assert.Equal(t, 100, c.ListLimit)
	assert.Equal(t, 1000, c.MaxLimit)
	assert.Equal(t, int64(10*1024*1024), c.MaxInlineSize)
	assert.Equal(t, int64(10*1024*1024), c.MaxBodySize)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearOASBINDEnv(t)
	t.Setenv("OASBIND_MCP_CACHE_ENABLED", "false")
	t.Setenv("OASBIND_MCP_CACHE_MAX_SIZE", "50")
	t.Setenv("OASBIND_MCP_CACHE_FILE_TTL", "30m")
	t.Setenv("OASBIND_MCP_CACHE_CONTENT_TTL", "10m")
	t.Setenv("OASBIND_MCP_CACHE_SWEEP_INTERVAL", "30s")
	t.Setenv("OASBIND_MCP_LIST_LIMIT", "200")
	t.Setenv("OASBIND_MCP_MAX_LIMIT", "500")
	t.Setenv("OASBIND_MCP_MAX_INLINE_SIZE", "5242880")
	t.Setenv("OASBIND_MAX_BODY_SIZE", "1024")

	c := loadConfig()

	assert.False(t, c.CacheEnabled)
	assert.Equal(t, 50, c.CacheMaxSize)
	assert.Equal(t, 30*time.Minute, c.CacheFileTTL)
	assert.Equal(t, 10*time.Minute, c.CacheContentTTL)
	assert.Equal(t, 30*time.Second, c.CacheSweepInterval)
	assert.Equal(t, 200, c.ListLimit)
	assert.Equal(t, 500, c.MaxLimit)
	assert.Equal(t, int64(5242880), c.MaxInlineSize)
	assert.Equal(t, int64(1024), c.MaxBodySize)
}

func TestLoadConfig_InvalidValues_UseDefaults(t *testing.T) {
	clearOASBINDEnv(t)
	t.Setenv("OASBIND_MCP_CACHE_MAX_SIZE", "banana")
	t.Setenv("OASBIND_MCP_CACHE_FILE_TTL", "not-a-duration")
	t.Setenv("OASBIND_MCP_LIST_LIMIT", "42")

	c := loadConfig()

	assert.Equal(t, defaultConfig(), c, "an unparsable value resets every setting")
}

func TestLoadConfig_NonPositiveFallsBackIndividually(t *testing.T) {
	clearOASBINDEnv(t)
	t.Setenv("OASBIND_MCP_LIST_LIMIT", "-5")
	t.Setenv("OASBIND_MCP_MAX_LIMIT", "0")
	t.Setenv("OASBIND_MAX_BODY_SIZE", "-1")
	t.Setenv("OASBIND_MCP_CACHE_MAX_SIZE", "3")

	c := loadConfig()

	assert.Equal(t, 100, c.ListLimit)
	assert.Equal(t, 1000, c.MaxLimit)
	assert.Equal(t, int64(10*1024*1024), c.MaxBodySize)
	assert.Equal(t, 3, c.CacheMaxSize, "valid settings are kept")
}

func TestLoadConfig_PartialOverrides(t *testing.T) {
	clearOASBINDEnv(t)
	t.Setenv("OASBIND_MCP_LIST_LIMIT", "42")

	c := loadConfig()

	assert.Equal(t, 42, c.ListLimit)
	assert.Equal(t, 15*time.Minute, c.CacheFileTTL)
	assert.True(t, c.CacheEnabled)
}
