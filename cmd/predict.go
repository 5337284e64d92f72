package cmd

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"cultivar/pipeline"
)

func newPredictCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "predict feature=value ...",
		Short: "Run one prediction from key=value arguments",
		Long: `Run the prediction pipeline once and print the response as JSON.

Features that are not given default to 0, exactly as in POST /predict.`,
		Example: "  cultivar predict alcohol=13.5 malic_acid=2.3 color_intensity=5.1",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := parseAssignments(args)
			if err != nil {
				return err
			}
			rt, err := bootstrap(cmd, opts, true)
			if err != nil {
				return err
			}
			return runPredict(cmd.OutOrStdout(), rt, raw)
		},
	}
}

// parseAssignments turns feature=value arguments into a raw input. Values stay strings
// and are converted by the feature extractor.
func parseAssignments(args []string) (pipeline.RawInput, error) {
	raw := make(pipeline.RawInput, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.Newf("expected feature=value, got %q", arg)
		}
		if _, dup := raw[name]; dup {
			return nil, errors.Newf("feature %q given more than once", name)
		}
		raw[name] = value
	}
	return raw, nil
}

// runPredict prints the success or failure payload. A failed prediction is also
// returned as an error so the process exits non-zero.
func runPredict(w io.Writer, rt *runtime, raw pipeline.RawInput) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	resp, err := rt.pipeline.Run(raw)
	if err != nil {
		if encErr := enc.Encode(pipeline.FormatError(err)); encErr != nil {
			return errors.Wrap(encErr, "write response")
		}
		return err
	}
	return errors.Wrap(enc.Encode(resp), "write response")
}
