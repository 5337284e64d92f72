// Package cmd holds the cultivar command line: the HTTP server and one-shot commands
// that run the same prediction pipeline from a terminal.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootOptions are the flags shared by every command.
type rootOptions struct {
	configPath string
	envFile    string
	modelDir   string
	logLevel   string
	verbose    bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "cultivar",
		Short: "Wine cultivar prediction service",
		Long: `cultivar serves a pre-trained wine cultivar classifier over HTTP.

Available commands:
  serve     - Start the HTTP prediction service
  features  - Show the loaded feature schema and artifact status
  predict   - Run one prediction from key=value arguments
  evaluate  - Score the loaded model against a labeled CSV file

Examples:
  cultivar serve --port 5000
  cultivar features --model-dir ./model
  cultivar predict alcohol=13.5 malic_acid=2.3
  cultivar evaluate --data wine.csv`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "config.yaml", "Path to the YAML config file")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Env file with CULTIVAR_* overrides")
	root.PersistentFlags().StringVar(&opts.modelDir, "model-dir", "", "Artifact directory (overrides config)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (overrides config)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log artifact loading in one-shot commands")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newFeaturesCmd(opts))
	root.AddCommand(newPredictCmd(opts))
	root.AddCommand(newEvaluateCmd(opts))
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
