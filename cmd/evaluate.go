package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"cultivar/pipeline"
)

func newEvaluateCmd(opts *rootOptions) *cobra.Command {
	var (
		dataPath    string
		labelColumn string
	)

	evaluateCmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score the loaded model against a labeled CSV file",
		Long: `Run every row of a CSV file through the prediction pipeline and report accuracy
with per-cultivar precision and recall. The label column holds the zero-based class
index; the other columns are feature values.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(dataPath)
			if err != nil {
				return errors.Wrapf(err, "open %s", dataPath)
			}
			defer file.Close()

			samples, err := pipeline.ReadLabeledCSV(file, labelColumn)
			if err != nil {
				return err
			}
			rt, err := bootstrap(cmd, opts, true)
			if err != nil {
				return err
			}
			if !rt.artifacts.Ready() {
				return errors.Wrap(rt.artifacts.Err, "cannot evaluate")
			}
			return printEvaluation(cmd.OutOrStdout(), rt.pipeline.Evaluate(samples))
		},
	}
	evaluateCmd.Flags().StringVarP(&dataPath, "data", "d", "", "Labeled CSV file")
	evaluateCmd.Flags().StringVar(&labelColumn, "label-column", "cultivar", "Name of the class index column")
	_ = evaluateCmd.MarkFlagRequired("data")
	return evaluateCmd
}

func printEvaluation(w io.Writer, eval pipeline.Evaluation) error {
	data := pterm.TableData{{"Cultivar", "Precision", "Recall", "Support"}}
	for _, c := range eval.Classes {
		data = append(data, []string{
			c.Label,
			fmt.Sprintf("%.3f", c.Precision),
			fmt.Sprintf("%.3f", c.Recall),
			fmt.Sprintf("%d", c.Support),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, "render evaluation table")
	}
	fmt.Fprintln(w, table)

	if eval.Failed > 0 {
		fmt.Fprint(w, pterm.Warning.Sprintf("%d of %d samples were rejected by the pipeline\n", eval.Failed, eval.Samples))
	}
	fmt.Fprint(w, pterm.Success.Sprintf("accuracy=%.4f (%d/%d)\n", eval.Accuracy, eval.Correct, eval.Samples))
	return nil
}
