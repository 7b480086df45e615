package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/guimove/binfit/internal/api"
	"github.com/guimove/binfit/internal/simulation"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the packing engine over HTTP",
	Long: `Starts an HTTP API exposing the packing algorithms:

  GET  /api/health       liveness
  GET  /api/algorithms   available algorithms
  POST /api/pack         pack tasks with one algorithm
  POST /api/compare      pack with several algorithms and rank the plans
  GET  /metrics          Prometheus metrics

Requests carry their tasks and either a capacity or an instance_type. The
server shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.String("addr", "", "listen address (default from config, :8080)")
	f.Float64("rate-limit", 0, "requests per second; 0 keeps the configured limit")
	f.Bool("no-cache", false, "disable the instance type cache")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if rps, _ := cmd.Flags().GetFloat64("rate-limit"); cmd.Flags().Changed("rate-limit") {
		cfg.Server.RateLimitRPS = rps
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	metrics, err := newMetrics(true)
	if err != nil {
		return err
	}

	engine := simulation.NewEngine(simulation.NewScorer(cfg.ScoringWeights()))
	engine.Metrics = metrics
	engine.Logger = logger

	opts := []api.HandlerOption{api.WithMaxTasks(cfg.Server.MaxTasks)}
	noCache, _ := cmd.Flags().GetBool("no-cache")
	if provider, err := newProvider(ctx, noCache); err != nil {
		logger.Warn("instance_type requests disabled", zap.Error(err))
	} else {
		opts = append(opts, api.WithResolver(provider))
	}

	handler := api.NewHandler(engine, opts...)
	router := api.NewRouter(handler, logger,
		api.WithLogging(cfg.Server.RequestLogging),
		api.WithRateLimit(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst),
		api.WithMetrics(metrics),
	)
	srv := api.NewServer(cfg.Server, router)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("grace_period", cfg.Server.ShutdownGracePeriod))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGracePeriod)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
