package cli

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mapstyle/pkg/cache"
	"github.com/matzehuels/mapstyle/pkg/config"
	"github.com/matzehuels/mapstyle/pkg/observability"
	"github.com/matzehuels/mapstyle/pkg/pipeline"
	"github.com/matzehuels/mapstyle/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		cacheKind string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve style lookups over HTTP",
		Long: `Serve runs the HTTP service. The catalog and schema are loaded once at
startup; restart the service to pick up style changes.

Resolved results are cached according to server.cache in the config file:
"file" uses the local cache directory, "redis" shares results between
instances, "none" disables caching.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config()
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if cacheKind != "" {
				cfg.Server.Cache = cacheKind
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return c.serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&cacheKind, "cache", "", "result cache: none, file or redis")

	return cmd
}

func (c *CLI) serve(ctx context.Context, cfg *config.Config) error {
	logger := loggerFromContext(ctx)

	hooks := observability.NewLogHooks(logger)
	observability.SetResolveHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	cat, err := c.loadCatalog(ctx)
	if err != nil {
		return err
	}
	s, err := cfg.LoadSchema()
	if err != nil {
		return err
	}
	store, err := c.serverCache(ctx, cfg)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(cat, s, store, newKeyer(), logger)
	if ttl, err := cfg.TTL(); err == nil {
		runner.TTL = ttl
	}
	defer runner.Close()

	logger.Info("catalog ready", "records", cat.Len(), "schema", s.Name, "cache", cfg.Server.Cache)
	srv := server.New(cfg.Server.Addr, runner, logger)

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout, _ := cfg.ShutdownTimeout()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	logger.Info("shutting down", "timeout", timeout)
	return srv.Shutdown(shutdownCtx)
}

// serverCache builds the result cache named by server.cache.
func (c *CLI) serverCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch cfg.Server.Cache {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		prog := newProgress(c.Logger)
		rc, err := cache.NewRedisCache(ctx, redisConfig(cfg))
		if err != nil {
			return nil, err
		}
		prog.done("Connected to redis at " + cfg.Server.RedisAddr)
		return rc, nil
	}
	return newCache(false, c.Logger), nil
}

func redisConfig(cfg *config.Config) cache.RedisConfig {
	return cache.RedisConfig{
		Addr:     cfg.Server.RedisAddr,
		Password: cfg.Server.RedisPassword,
		DB:       cfg.Server.RedisDB,
		Prefix:   cfg.Server.RedisPrefix,
	}
}
