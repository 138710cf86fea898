package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/mapstyle/pkg/errors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvPath, EnvSchema, EnvLogLevel, EnvAddr, EnvCache, EnvRedisAddr} {
		t.Setenv(k, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "default", cfg.Schema)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, CacheFile, cfg.Server.Cache)
	assert.Empty(t, cfg.Path)
	assert.Empty(t, cfg.StylePaths)

	ttl, err := cfg.TTL()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, ttl)
	d, err := cfg.ShutdownTimeout()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, d)
}

const sample = `
schema = "light"
style_paths = ["/srv/styles"]
log_level = "debug"

[overrides]
font = "verdana"

[overrides.contour]
labels = true

[server]
addr = ":9090"
cache = "redis"
cache_ttl = "1h"
redis_addr = "redis:6379"
`

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "light", cfg.Schema)
	assert.Equal(t, []string{"/srv/styles"}, cfg.StylePaths)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, CacheRedis, cfg.Server.Cache)
	assert.Equal(t, DefaultRedisPrefix, cfg.Server.RedisPrefix, "unset keys keep defaults")
	ttl, _ := cfg.TTL()
	assert.Equal(t, time.Hour, ttl)

	s, err := cfg.LoadSchema()
	require.NoError(t, err)
	assert.Equal(t, "verdana", s.Font)
	assert.Equal(t, true, s.Contour["labels"])
}

func TestLoad_DefaultPathFile(t *testing.T) {
	clearEnv(t)
	dir := os.Getenv("XDG_CONFIG_HOME")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "mapstyle"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mapstyle", "config.toml"), []byte(`schema = "ecmwf"`), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "ecmwf", cfg.Schema)
	assert.NotEmpty(t, cfg.Path)
}

func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvPath, "/a"+string(os.PathListSeparator)+"/b")
	t.Setenv(EnvSchema, "light")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvAddr, ":7000")
	t.Setenv(EnvCache, "none")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`style_paths = ["/c"]`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b", "/c"}, cfg.StylePaths)
	assert.Equal(t, "light", cfg.Schema)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, CacheNone, cfg.Server.Cache)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"syntax", `schema = `},
		{"unknown key", `colour = "red"`},
		{"log level", `log_level = "loud"`},
		{"cache", "[server]\ncache = \"memcached\""},
		{"ttl", "[server]\ncache_ttl = \"soon\""},
		{"negative timeout", "[server]\nshutdown_timeout = \"-1s\""},
		{"redis without addr", "[server]\ncache = \"redis\"\nredis_addr = \"\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), "test.toml")
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "%v", err)
		})
	}
}

func TestParse_Overrides(t *testing.T) {
	doc := "[overrides.legend]\nlocation = \"right\"\n[overrides.natural_earth.land]\ncolor = \"#eeeeee\"\n"
	cfg, err := Parse([]byte(doc), "test.toml")
	require.NoError(t, err)
	s, err := cfg.LoadSchema()
	require.NoError(t, err)
	assert.Equal(t, "right", s.Legend["location"])

	_, err = Parse([]byte(doc+"[server]\noverrides = 1\n"), "test.toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.overrides")
	assert.NotContains(t, err.Error(), "overrides.legend")
}

func TestLoadSchema_Errors(t *testing.T) {
	cfg := Default()
	cfg.Schema = "nope"
	_, err := cfg.LoadSchema()
	assert.True(t, errors.Is(err, errors.ErrCodeSchemaNotFound))

	cfg = Default()
	cfg.Overrides = map[string]any{"cmap": "not_a_cmap"}
	_, err = cfg.LoadSchema()
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
}
