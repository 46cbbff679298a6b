package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapprice/internal/cli/output"
	"github.com/leapstack-labs/leapprice/internal/engine"
)

// maxListedColumns caps the column names printed per alignment line.
const maxListedColumns = 8

// NewInferCommand creates the infer command.
func NewInferCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "infer",
		Short: "Predict sale prices for unseen houses",
		Long: `Prepare raw rows with the feature pipeline, align them to the columns of
the reference table the model was trained on and write predictions.

Reference columns missing from the input are filled with 0. Input columns
the reference does not know are dropped. The output has two columns:
Id and SalePrice_Predicted. Rows without an Id column are numbered from 0.`,
		Example: `  # Predict data/test.csv with models/model.gob
  leapprice infer

  # Explicit paths
  leapprice infer -i test.csv -m model.gob -r prep.csv -o predictions.csv`,
		Args: cobra.NoArgs,
		RunE: runInfer,
	}

	cmd.Flags().StringP("input", "i", "", "Raw CSV file to score (default: data.test)")
	cmd.Flags().StringP("model", "m", "", "Model artifact (default: data.model)")
	cmd.Flags().StringP("reference", "r", "", "Prepared training CSV defining the feature columns (default: data.prepared)")
	cmd.Flags().StringP("output", "o", "", "Predictions CSV file (default: data.predictions)")

	return cmd
}

func runInfer(cmd *cobra.Command, _ []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	data := cmdCtx.Cfg.Data
	in := pathFlag(cmd, "input", data.Test)
	modelPath := pathFlag(cmd, "model", data.Model)
	reference := pathFlag(cmd, "reference", data.Prepared)
	out := pathFlag(cmd, "output", data.Predictions)

	res, err := cmdCtx.Engine.Infer(cmd.Context(), in, modelPath, reference, out)
	if err != nil {
		return fmt.Errorf("infer failed: %w", err)
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(output.InferOutput{
			RunID:   res.RunID,
			Input:   in,
			Output:  out,
			Rows:    res.Rows,
			Filled:  nonNil(res.Filled),
			Dropped: nonNil(res.Dropped),
		})
	}

	renderInfer(r, in, modelPath, out, res)
	return nil
}

func renderInfer(r *output.Renderer, in, modelPath, out string, res *engine.InferResult) {
	r.Header(2, "Infer")
	r.KeyValue("Run", res.RunID)
	r.KeyValue("Input", in)
	r.KeyValue("Model", modelPath)
	r.KeyValue("Filled columns", listColumns(res.Filled))
	r.KeyValue("Dropped columns", listColumns(res.Dropped))
	if n := len(res.Predictions); n > 0 {
		var sum float64
		for _, p := range res.Predictions {
			sum += p
		}
		r.KeyValue("Mean prediction", output.FormatPrice(sum/float64(n)))
	}
	r.Println()

	r.Success(fmt.Sprintf("Wrote %d predictions to %s", res.Rows, out))
}

func listColumns(cols []string) string {
	switch {
	case len(cols) == 0:
		return "none"
	case len(cols) <= maxListedColumns:
		return fmt.Sprintf("%d (%s)", len(cols), strings.Join(cols, ", "))
	default:
		return fmt.Sprintf("%d (%s, ...)", len(cols), strings.Join(cols[:maxListedColumns], ", "))
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
