package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/blogshell/app"
	"github.com/vango-dev/blogshell/internal/config"
	"github.com/vango-dev/blogshell/pkg/lazy"
	"github.com/vango-dev/blogshell/pkg/middleware"
	"github.com/vango-dev/blogshell/pkg/posts"
	"github.com/vango-dev/blogshell/pkg/router"
	"github.com/vango-dev/blogshell/pkg/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server.

Settings are read from blogshell.yaml, BLOGSHELL_* environment variables
and the flags below, in increasing order of precedence.

Examples:
  blogshell serve
  blogshell serve --port=8080 --preload
  BLOGSHELL_POSTS_BACKEND=sqlite blogshell serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().IntP("port", "p", config.DefaultPort, "Port to listen on")
	cmd.Flags().StringP("host", "H", "", "Host to bind to")
	cmd.Flags().Bool("streaming", true, "Flush the fallback before deferred pages resolve")
	cmd.Flags().String("log-level", "info", "Log level: debug, info, warn, error")
	cmd.Flags().Bool("preload", false, "Load every deferred page before accepting requests")
	cmd.Flags().String("backend", config.BackendHTTP, "Posts backend: http, sqlite, s3")

	return cmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	opts := []config.Option{config.WithFlags(cmd.Flags())}
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		opts = append(opts, config.WithFile(path))
	}
	return config.Load(opts...)
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func runServe(ctx context.Context, cfg *config.Config, logOut io.Writer) error {
	logger := newLogger(cfg, logOut)
	slog.SetDefault(logger)

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(middleware.WithRegistry(registry))

	mws := []router.Middleware{metrics.Middleware()}
	if cfg.Tracing.Enabled {
		mws = append(mws, middleware.Tracing(middleware.WithTracerName(cfg.Tracing.ServiceName)))
	}

	application, err := app.New(store, app.Options{
		Title:        cfg.Server.Title,
		FallbackText: cfg.Views.FallbackText,
		LoadTimeout:  cfg.Views.LoadTimeout,
		Observers:    []lazy.Observer{metrics},
		Middleware:   mws,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	if cfg.Views.Preload {
		if err := application.Router.Preload(ctx); err != nil {
			return fmt.Errorf("preload: %w", err)
		}
		logger.Info("deferred pages preloaded")
	}

	srvConfig := &server.Config{
		Address:           cfg.Address(),
		Streaming:         cfg.Server.Streaming,
		Title:             cfg.Server.Title,
		Gatherer:          registry,
		Sessions:          metrics,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
		Logger:            logger,
	}
	if cfg.Metrics.Enabled {
		srvConfig.MetricsPath = cfg.Metrics.Path
	}

	if cfg.File != "" {
		logger.Info("configuration loaded", "file", cfg.File)
	}
	logger.Info("posts backend ready", "backend", cfg.Posts.Backend)

	return server.New(application.Router, srvConfig).Run(ctx)
}

// openStore builds the configured posts backend.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (posts.Store, func(), error) {
	noop := func() {}

	switch cfg.Posts.Backend {
	case config.BackendHTTP:
		return posts.NewHTTPStore(cfg.Posts.HTTP.BaseURL, nil, cfg.Posts.HTTP.Timeout), noop, nil

	case config.BackendSQLite:
		store, err := posts.OpenSQLite(ctx, cfg.Posts.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Posts.SQLite.Seed {
			if err := store.Seed(ctx, posts.SamplePosts()); err != nil {
				store.Close()
				return nil, nil, err
			}
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Warn("closing sqlite store", "error", err)
			}
		}, nil

	case config.BackendS3:
		client := posts.NewS3Client(posts.S3Options{
			Region:    cfg.Posts.S3.Region,
			Endpoint:  cfg.Posts.S3.Endpoint,
			Anonymous: cfg.Posts.S3.Anonymous,

			AccessKeyID:     cfg.Posts.S3.AccessKeyID,
			SecretAccessKey: cfg.Posts.S3.SecretAccessKey,
		})
		return posts.NewS3Store(client, cfg.Posts.S3.Bucket, cfg.Posts.S3.Prefix), noop, nil
	}
	return nil, nil, fmt.Errorf("unknown posts backend %q", cfg.Posts.Backend)
}
