// Package cli implements the mapstyle command-line interface.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mapstyle/pkg/buildinfo"
	"github.com/matzehuels/mapstyle/pkg/cache"
	"github.com/matzehuels/mapstyle/pkg/catalog"
	"github.com/matzehuels/mapstyle/pkg/config"
	"github.com/matzehuels/mapstyle/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "mapstyle"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Global flags.
	configPath string
	schemaName string
	stylePaths []string
	verbose    bool

	// cfg is loaded by the root command before any subcommand runs.
	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Mapstyle picks plotting styles for weather map fields",
		Long: `Mapstyle matches dataset metadata against a catalog of style records and
resolves the winning style into a complete set of plotting parameters.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/mapstyle/config.toml)")
	flags.StringVar(&c.schemaName, "schema", "", "defaults schema name or file")
	flags.StringArrayVarP(&c.stylePaths, "style-path", "p", nil, "extra style directory or file (repeatable, later wins)")

	root.AddCommand(c.matchCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.stylesCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.schemaCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the configuration, applies the global flags on top of it and
// attaches the logger to the command context.
func (c *CLI) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.schemaName != "" {
		cfg.Schema = c.schemaName
	}
	cfg.StylePaths = append(cfg.StylePaths, c.stylePaths...)
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = LogInfo
	}
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)
	if cfg.Path != "" {
		c.Logger.Debug("config loaded", "path", cfg.Path)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}

// config returns the loaded configuration, falling back to the defaults
// when setup did not run.
func (c *CLI) config() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// =============================================================================
// Runner Factory
// =============================================================================

// loadCatalog loads the built-in styles followed by the configured style
// paths.
func (c *CLI) loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	paths := c.config().StylePaths
	prog := newProgress(c.Logger)
	cat, err := catalog.LoadPaths(ctx, paths...)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("catalog loaded", "records", cat.Len(), "sources", strings.Join(cat.Sources(), ", "), "took", prog.elapsed())
	return cat, nil
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg := c.config()
	cat, err := c.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	s, err := cfg.LoadSchema()
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(cat, s, newCache(noCache, c.Logger), newKeyer(), c.Logger)
	if ttl, err := cfg.TTL(); err == nil {
		r.TTL = ttl
	}
	return r, nil
}

// newCache returns the file cache under the user cache directory, or a
// null cache when disabled or when the directory is unusable.
func newCache(noCache bool, logger *log.Logger) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	dir, err := config.CacheDir()
	if err != nil {
		logger.Debug("cache disabled", "err", err)
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		logger.Debug("cache disabled", "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// newKeyer scopes cache keys by release, so entries written by an older
// resolver are never served.
func newKeyer() cache.Keyer {
	return cache.NewScopedKeyer(nil, appName+"-"+buildinfo.Version)
}
