package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/flowscope/flowscope/internal/config"
	"github.com/flowscope/flowscope/internal/server"
	"github.com/flowscope/flowscope/internal/telemetry"
	"github.com/flowscope/flowscope/pkg/cache"
	"github.com/flowscope/flowscope/pkg/errors"
	"github.com/flowscope/flowscope/pkg/layout/layered"
	"github.com/flowscope/flowscope/pkg/pipeline"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the flowscope HTTP API",
		Long: `Serve the flowscope HTTP API: stateless rendering plus capture,
storage, and artifact endpoints for stored workflow graphs.

Configuration is read from the TOML file given with --config; every
section falls back to built-in defaults (in-memory store, file cache,
listen on :8080). The server drains in-flight requests on SIGINT and
SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to TOML config file")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Telemetry.Enabled {
		if err := telemetry.Register(); err != nil {
			return err
		}
		c.Logger.Debug("telemetry hooks registered")
	}

	prog := newProgress(c.Logger)
	st, err := cfg.Store.Open(ctx)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	// The first ping can race a store container that is still starting.
	err = cache.RetryWithBackoff(ctx, func() error {
		if err := st.Ping(ctx); err != nil {
			return cache.Retryable(err)
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "%s store unreachable", cfg.Store.Backend)
	}
	prog.done("Connected to store", "backend", cfg.Store.Backend)

	artifacts, err := cfg.Cache.Open()
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(artifacts, &layered.Engine{}, c.Logger)
	defer runner.Close()

	c.Logger.Info("starting server",
		"addr", cfg.Server.Addr,
		"store", cfg.Store.Backend,
		"cache", cfg.Cache.Backend)
	return server.New(cfg, st, runner, c.Logger).Run(ctx)
}
