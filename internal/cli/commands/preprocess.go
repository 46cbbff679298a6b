package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapprice/internal/cli/output"
	"github.com/leapstack-labs/leapprice/internal/engine"
	"github.com/leapstack-labs/leapprice/internal/features"
)

// NewPreprocessCommand creates the preprocess command.
func NewPreprocessCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preprocess",
		Short: "Turn raw housing data into a numeric feature table",
		Long: `Run the feature pipeline over a raw CSV file and write the prepared table.

Stages run in order: nulls_pre, ordinal, nominal, target, nulls_final.
The target stage is skipped when the input has no SalePrice column.
A stage that leaves no rows fails the command.`,
		Example: `  # Prepare the configured raw file (data/raw.csv -> data/prep.csv)
  leapprice preprocess

  # Explicit paths
  leapprice preprocess -i train.csv -o prep.csv

  # Stage report as JSON
  leapprice preprocess --format json

  # Re-run whenever the raw file changes (Ctrl-C to stop)
  leapprice preprocess --watch`,
		Args: cobra.NoArgs,
		RunE: runPreprocess,
	}

	cmd.Flags().StringP("input", "i", "", "Raw CSV file (default: data.raw)")
	cmd.Flags().StringP("output", "o", "", "Prepared CSV file (default: data.prepared)")
	cmd.Flags().BoolP("watch", "w", false, "Re-run when the input file changes")

	return cmd
}

func runPreprocess(cmd *cobra.Command, _ []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	in := pathFlag(cmd, "input", cmdCtx.Cfg.Data.Raw)
	out := pathFlag(cmd, "output", cmdCtx.Cfg.Data.Prepared)

	watch, _ := cmd.Flags().GetBool("watch")
	if !watch {
		return preprocessOnce(cmd.Context(), cmdCtx, in, out)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if err := preprocessOnce(ctx, cmdCtx, in, out); err != nil {
		cmdCtx.Renderer.Error(err.Error())
	}
	cmdCtx.Renderer.Muted("Watching " + in + " for changes")
	return watchFile(ctx, in, watchDebounce, cmdCtx.Logger, func() error {
		return preprocessOnce(ctx, cmdCtx, in, out)
	})
}

func preprocessOnce(ctx context.Context, cmdCtx *CommandContext, in, out string) error {
	res, err := cmdCtx.Engine.Preprocess(ctx, in, out)
	if err != nil {
		return fmt.Errorf("preprocess failed: %w", err)
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(output.PreprocessOutput{
			RunID:   res.RunID,
			Input:   in,
			Output:  out,
			RowsIn:  res.RowsIn,
			RowsOut: res.RowsOut,
			Columns: len(res.Columns),
			Stages:  stageInfos(res.Stages),
		})
	}

	renderPreprocess(r, in, out, res)
	return nil
}

func renderPreprocess(r *output.Renderer, in, out string, res *engine.PreprocessResult) {
	r.Header(2, "Preprocess")
	r.KeyValue("Run", res.RunID)
	r.KeyValue("Input", in)
	r.KeyValue("Output", out)
	r.Println()

	rows := make([][]string, 0, len(res.Stages))
	for _, s := range res.Stages {
		rows = append(rows, []string{
			s.Name,
			strconv.Itoa(s.RowsIn),
			strconv.Itoa(s.RowsOut),
			strconv.Itoa(s.RowsIn - s.RowsOut),
			strconv.Itoa(len(s.Table.Columns)),
			output.FormatDuration(s.Elapsed),
		})
	}
	r.Table([]string{"Stage", "Rows In", "Rows Out", "Dropped", "Columns", "Time"}, rows)
	r.Println()

	r.Success(fmt.Sprintf("Wrote %d rows x %d columns to %s", res.RowsOut, len(res.Columns), out))
}

func stageInfos(stages []features.StageResult) []output.StageInfo {
	infos := make([]output.StageInfo, 0, len(stages))
	for _, s := range stages {
		infos = append(infos, output.StageInfo{
			Stage:      s.Name,
			RowsIn:     s.RowsIn,
			RowsOut:    s.RowsOut,
			Columns:    len(s.Table.Columns),
			DurationMS: s.Elapsed.Milliseconds(),
		})
	}
	return infos
}
