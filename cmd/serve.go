package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	qhttp "cultivar/http"
	"cultivar/ml"
	"cultivar/monitoring"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port int

	serveCmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		Short:   "Start the HTTP prediction service",
		Long: `Load the model artifacts once and serve predictions over HTTP.

The service starts even when the artifacts fail to load; /api/health then reports
model_loaded=false and every /predict request fails until the process is restarted
with valid artifacts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Http.Port = port
			}
			rt, err := bootstrapWith(cfg, false)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), rt)
		},
	}
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port (overrides config)")
	return serveCmd
}

func runServe(ctx context.Context, rt *runtime) error {
	defer rt.logger.Sync()

	if !rt.artifacts.Ready() {
		rt.logger.Warnw("Serving without a model; predictions will fail until restart",
			"dir", rt.artifacts.Dir,
			"error", rt.artifacts.Err)
	}

	if rt.config.Artifacts.Watch {
		watcher, err := ml.NewArtifactWatcher(rt.config.ArtifactDir(), artifactFiles(rt.config), rt.logger, nil)
		if err != nil {
			rt.logger.Warnw("Artifact watcher disabled", "error", err)
		} else {
			watcher.Start()
			defer watcher.Stop()
		}
	}

	handlers := qhttp.NewHandlers(
		rt.pipeline,
		monitoring.NewMetricsCollector(),
		rt.logger,
		qhttp.ModelInfo{Algorithm: rt.config.Model.Algorithm, Accuracy: rt.config.Model.Accuracy},
		rt.config.Http.MaxBodyBytes,
	)
	server := qhttp.NewServer(qhttp.ServerConfig{
		Port:           rt.config.Http.Port,
		Timeout:        rt.config.Http.Timeout,
		AllowedOrigins: rt.config.Http.AllowedOrigins,
		RateLimit:      rt.config.Http.RateLimit,
		RateBurst:      rt.config.Http.RateBurst,
	}, handlers, rt.logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	rt.logger.Infow("Shutting down")
	if err := server.Stop(); err != nil {
		rt.logger.Errorw("Server forced to shutdown", "error", err)
		return err
	}
	rt.logger.Infow("Exiting")
	return nil
}
