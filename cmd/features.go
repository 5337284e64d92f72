package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newFeaturesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "features",
		Short: "Show the loaded feature schema and artifact status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd, opts, true)
			if err != nil {
				return err
			}
			return printFeatures(cmd.OutOrStdout(), rt)
		},
	}
}

func printFeatures(w io.Writer, rt *runtime) error {
	a := rt.artifacts
	fmt.Fprintf(w, "Artifacts: %s\n", a.Dir)
	fmt.Fprintf(w, "Model loaded: %t\nScaler loaded: %t\n", a.ModelLoaded(), a.ScalerLoaded())

	if a.Err != nil {
		fmt.Fprint(w, pterm.Error.Sprintln(a.Err.Error()))
		if hint := errors.FlattenHints(a.Err); hint != "" {
			fmt.Fprint(w, pterm.Info.Sprintln(hint))
		}
		return nil
	}

	data := pterm.TableData{{"#", "Feature"}}
	for i, name := range a.Schema() {
		data = append(data, []string{strconv.Itoa(i + 1), name})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, "render feature table")
	}
	fmt.Fprintln(w, table)
	fmt.Fprint(w, pterm.Success.Sprintf("%d features, %s (accuracy %.4f)\n",
		len(a.Features), rt.config.Model.Algorithm, rt.config.Model.Accuracy))
	return nil
}
