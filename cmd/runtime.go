package cmd

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cultivar/config"
	"cultivar/logging"
	"cultivar/ml"
	"cultivar/pipeline"
)

// runtime is everything a command needs after startup.
type runtime struct {
	config    *config.Config
	logger    *zap.SugaredLogger
	artifacts *ml.Artifacts
	pipeline  *pipeline.Pipeline
}

// loadConfig reads the env file and the config file, then applies command line
// overrides. Default paths may be absent; explicitly passed ones must exist.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	if opts.envFile != "" {
		if err := config.LoadDotEnv(opts.envFile, !cmd.Flags().Changed("env-file")); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(opts.configPath, !cmd.Flags().Changed("config"))
	if err != nil {
		return nil, err
	}
	if opts.modelDir != "" {
		cfg.Artifacts.Dir = opts.modelDir
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	return cfg, nil
}

// bootstrap loads config, logger, artifacts and pipeline. One-shot commands stay
// silent unless --verbose is set so that their output is only the result.
func bootstrap(cmd *cobra.Command, opts *rootOptions, oneShot bool) (*runtime, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}
	return bootstrapWith(cfg, oneShot && !opts.verbose)
}

func bootstrapWith(cfg *config.Config, quiet bool) (*runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := zap.NewNop().Sugar()
	if !quiet {
		var err error
		logger, err = logging.New(cfg.Log)
		if err != nil {
			return nil, errors.Wrap(err, "failed to initialize logger")
		}
	}

	artifacts := ml.LoadArtifacts(cfg.ArtifactDir(), artifactFiles(cfg), logger)

	p, err := pipeline.New(artifacts, pipeline.Options{CacheSize: cfg.Model.CacheSize})
	if err != nil {
		return nil, errors.Wrap(err, "failed to build pipeline")
	}
	return &runtime{config: cfg, logger: logger, artifacts: artifacts, pipeline: p}, nil
}

func artifactFiles(cfg *config.Config) ml.ArtifactFiles {
	return ml.ArtifactFiles{
		Model:    cfg.Artifacts.ModelFile,
		Scaler:   cfg.Artifacts.ScalerFile,
		Features: cfg.Artifacts.FeaturesFile,
	}
}
