// Package config loads the mapstyle configuration file.
//
// The file is TOML, read from $XDG_CONFIG_HOME/mapstyle/config.toml unless a
// path is given. Environment variables override file values:
//
//	MAPSTYLE_PATH        extra style directories (prepended to style_paths)
//	MAPSTYLE_SCHEMA      defaults schema name or file
//	MAPSTYLE_LOG_LEVEL   debug, info, warn or error
//	MAPSTYLE_ADDR        server listen address
//	MAPSTYLE_CACHE       server cache: none, file or redis
//	MAPSTYLE_REDIS_ADDR  Redis address for the redis cache
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mapstyle/pkg/errors"
	"github.com/matzehuels/mapstyle/pkg/schema"
)

// Environment variables read by Load.
const (
	EnvPath      = "MAPSTYLE_PATH"
	EnvSchema    = "MAPSTYLE_SCHEMA"
	EnvLogLevel  = "MAPSTYLE_LOG_LEVEL"
	EnvAddr      = "MAPSTYLE_ADDR"
	EnvCache     = "MAPSTYLE_CACHE"
	EnvRedisAddr = "MAPSTYLE_REDIS_ADDR"
)

// Cache backends for the server.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Defaults.
const (
	DefaultAddr            = ":8080"
	DefaultLogLevel        = "info"
	DefaultCacheTTL        = 24 * time.Hour
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRedisAddr       = "localhost:6379"
	DefaultRedisPrefix     = "mapstyle:"
)

// Config holds every setting of the CLI and server.
type Config struct {
	Schema     string         `toml:"schema"`
	StylePaths []string       `toml:"style_paths"`
	LogLevel   string         `toml:"log_level"`
	Overrides  map[string]any `toml:"overrides"`
	Server     Server         `toml:"server"`

	// Path is the file the configuration was read from, empty when no file
	// existed.
	Path string `toml:"-"`
}

// Server configures `mapstyle serve`.
type Server struct {
	Addr            string `toml:"addr"`
	Cache           string `toml:"cache"`
	CacheTTL        string `toml:"cache_ttl"`
	RedisAddr       string `toml:"redis_addr"`
	RedisPassword   string `toml:"redis_password"`
	RedisDB         int    `toml:"redis_db"`
	RedisPrefix     string `toml:"redis_prefix"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Schema:   schema.DefaultName,
		LogLevel: DefaultLogLevel,
		Server: Server{
			Addr:            DefaultAddr,
			Cache:           CacheFile,
			CacheTTL:        DefaultCacheTTL.String(),
			RedisAddr:       DefaultRedisAddr,
			RedisPrefix:     DefaultRedisPrefix,
			ShutdownTimeout: DefaultShutdownTimeout.String(),
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/mapstyle/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "locate config directory")
	}
	return filepath.Join(dir, "mapstyle", "config.toml"), nil
}

// CacheDir returns the directory of the file cache.
func CacheDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "locate cache directory")
	}
	return filepath.Join(dir, "mapstyle"), nil
}

// Load reads the configuration file at path, applies environment overrides
// and validates the result. An empty path means [DefaultPath], which may be
// missing; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.decode(data, path); err != nil {
			return nil, err
		}
		cfg.Path = path
	case os.IsNotExist(err) && !explicit:
	case os.IsNotExist(err):
		return nil, errors.New(errors.ErrCodeFileNotFound, "config file %s does not exist", path)
	default:
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a configuration document over the defaults without reading
// the environment.
func Parse(data []byte, name string) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(data, name); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte, name string) error {
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", name)
	}
	var keys []string
	for _, k := range md.Undecoded() {
		// Schema overrides are free-form; the schema validates them.
		if len(k) > 0 && k[0] == "overrides" {
			continue
		}
		keys = append(keys, k.String())
	}
	if len(keys) > 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "config %s: unknown keys %s", name, strings.Join(keys, ", "))
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvPath); v != "" {
		var paths []string
		for _, p := range filepath.SplitList(v) {
			if p != "" {
				paths = append(paths, p)
			}
		}
		c.StylePaths = append(paths, c.StylePaths...)
	}
	if v := os.Getenv(EnvSchema); v != "" {
		c.Schema = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvCache); v != "" {
		c.Server.Cache = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Server.RedisAddr = v
	}
}

// Validate checks enumerated values, durations and paths.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}
	switch c.Server.Cache {
	case CacheNone, CacheFile, CacheRedis:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "server.cache must be none, file or redis, got %q", c.Server.Cache)
	}
	if c.Server.Cache == CacheRedis && c.Server.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.redis_addr is required for the redis cache")
	}
	if _, err := c.TTL(); err != nil {
		return err
	}
	if _, err := c.ShutdownTimeout(); err != nil {
		return err
	}
	for _, p := range c.StylePaths {
		if err := errors.ValidatePath(p); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "style_paths")
		}
	}
	return nil
}

// TTL returns the parsed server.cache_ttl.
func (c *Config) TTL() (time.Duration, error) {
	return parseDuration("server.cache_ttl", c.Server.CacheTTL, DefaultCacheTTL)
}

// ShutdownTimeout returns the parsed server.shutdown_timeout.
func (c *Config) ShutdownTimeout() (time.Duration, error) {
	return parseDuration("server.shutdown_timeout", c.Server.ShutdownTimeout, DefaultShutdownTimeout)
}

func parseDuration(key, s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidConfig, "%s must be a positive duration, got %q", key, s)
	}
	return d, nil
}

// LoadSchema loads the configured schema and applies the overrides table.
func (c *Config) LoadSchema() (*schema.Schema, error) {
	name := c.Schema
	if name == "" {
		name = schema.DefaultName
	}
	s, err := schema.Use(name)
	if err != nil {
		return nil, err
	}
	return s.With(c.Overrides)
}
