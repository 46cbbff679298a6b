package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapprice/internal/cli/output"
	"github.com/leapstack-labs/leapprice/internal/engine"
)

// NewTrainCommand creates the train command.
func NewTrainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Fit the price model on a prepared table",
		Long: `Fit a random forest on the prepared feature table and save the model.

Rows are split 80/20 into train and test sets. A grid search with k-fold
cross-validation selects the hyperparameters by mean absolute error on the
log price; the test error is reported in sale price units.

The search grid is read from the train.grid section of leapprice.yaml.`,
		Example: `  # Train on data/prep.csv and save models/model.gob
  leapprice train

  # Faster search with 3 folds on 4 workers
  leapprice train --folds 3 --workers 4

  # Explicit paths
  leapprice train -i prep.csv -o model.gob`,
		Args: cobra.NoArgs,
		RunE: runTrain,
	}

	cmd.Flags().StringP("input", "i", "", "Prepared CSV file (default: data.prepared)")
	cmd.Flags().StringP("output", "o", "", "Model artifact path (default: data.model)")
	cmd.Flags().Int("folds", 0, "Cross-validation folds (default: train.folds)")
	cmd.Flags().Int("workers", 0, "Concurrent fits, 0 for one per CPU (default: train.workers)")
	cmd.Flags().Float64("test-size", 0, "Hold-out fraction (default: train.test_size)")
	cmd.Flags().Int64("seed", 0, "Split and search seed (default: train.seed)")

	return cmd
}

func runTrain(cmd *cobra.Command, _ []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	in := pathFlag(cmd, "input", cmdCtx.Cfg.Data.Prepared)
	out := pathFlag(cmd, "output", cmdCtx.Cfg.Data.Model)

	res, err := cmdCtx.Engine.Train(cmd.Context(), in, out)
	if err != nil {
		return fmt.Errorf("train failed: %w", err)
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(output.TrainOutput{
			RunID:      res.RunID,
			Input:      in,
			Model:      out,
			Rows:       res.Rows,
			TrainRows:  res.TrainRows,
			TestRows:   res.TestRows,
			Features:   len(res.Features),
			Candidates: res.Candidates,
			BestParams: map[string]int{
				"n_estimators":      res.Best.NEstimators,
				"max_depth":         res.Best.MaxDepth,
				"min_samples_split": res.Best.MinSamplesSplit,
				"min_samples_leaf":  res.Best.MinSamplesLeaf,
			},
			CVMAELog:   res.CVScore,
			TestMAE:    res.TestMAE,
			DurationMS: res.Elapsed.Milliseconds(),
		})
	}

	renderTrain(r, in, out, res)
	return nil
}

func renderTrain(r *output.Renderer, in, out string, res *engine.TrainResult) {
	r.Header(2, "Train")
	r.KeyValue("Run", res.RunID)
	r.KeyValue("Input", in)
	r.KeyValue("Rows", fmt.Sprintf("%d (train %d, test %d)", res.Rows, res.TrainRows, res.TestRows))
	r.KeyValue("Features", fmt.Sprint(len(res.Features)))
	r.KeyValue("Candidates", fmt.Sprint(res.Candidates))
	r.Println()

	depth := "none"
	if res.Best.MaxDepth > 0 {
		depth = fmt.Sprint(res.Best.MaxDepth)
	}
	r.Header(3, "Best parameters")
	r.Table([]string{"Parameter", "Value"}, [][]string{
		{"n_estimators", fmt.Sprint(res.Best.NEstimators)},
		{"max_depth", depth},
		{"min_samples_split", fmt.Sprint(res.Best.MinSamplesSplit)},
		{"min_samples_leaf", fmt.Sprint(res.Best.MinSamplesLeaf)},
	})
	r.Println()

	r.KeyValue("CV MAE (log)", output.FormatFloat(res.CVScore, 4))
	r.KeyValue("Test MAE", output.FormatPrice(res.TestMAE))
	r.KeyValue("Time", output.FormatDuration(res.Elapsed))
	r.Println()

	r.Success("Saved model to " + out)
}
