package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapprice/internal/cli/output"
	"github.com/leapstack-labs/leapprice/pkg/core"
)

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent preprocess, train and infer runs",
		Long: `List the run history kept in the state database, newest first.

Use --stages to include the per-stage row counts of the latest run.`,
		Example: `  # Last 20 runs
  leapprice runs

  # Last 5 runs as JSON
  leapprice runs --limit 5 --format json`,
		Args: cobra.NoArgs,
		RunE: runRuns,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to show (0 for all)")
	cmd.Flags().Bool("stages", false, "Show stage row counts of the latest run")

	return cmd
}

func runRuns(cmd *cobra.Command, _ []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	limit, _ := cmd.Flags().GetInt("limit")
	showStages, _ := cmd.Flags().GetBool("stages")

	store := cmdCtx.Engine.Store()
	runs, err := store.ListRuns(limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		infos := make([]output.RunInfo, 0, len(runs))
		for _, run := range runs {
			infos = append(infos, runInfo(run))
		}
		return r.JSON(infos)
	}

	r.Header(2, "Runs")
	if len(runs) == 0 {
		r.Muted("No runs recorded yet")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		duration := "-"
		if run.CompletedAt != nil {
			duration = output.FormatDuration(run.CompletedAt.Sub(run.StartedAt))
		}
		rows = append(rows, []string{
			shortID(run.ID),
			string(run.Kind),
			string(run.Status),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			duration,
			run.Input,
		})
	}
	r.Table([]string{"ID", "Kind", "Status", "Started", "Duration", "Input"}, rows)

	if showStages {
		latest := runs[0]
		stages, err := store.GetStagesForRun(latest.ID)
		if err != nil {
			return fmt.Errorf("failed to load stages: %w", err)
		}
		r.Println()
		r.Header(3, "Stages of "+shortID(latest.ID))
		stageRows := make([][]string, 0, len(stages))
		for _, s := range stages {
			stageRows = append(stageRows, []string{
				s.Stage,
				fmt.Sprint(s.RowsIn),
				fmt.Sprint(s.RowsOut),
				fmt.Sprint(s.RowsDropped()),
				fmt.Sprint(s.Columns),
			})
		}
		r.Table([]string{"Stage", "Rows In", "Rows Out", "Dropped", "Columns"}, stageRows)
	}

	for _, run := range runs {
		if run.Status == core.RunStatusFailed && run.Error != "" {
			r.Println()
			r.Warning(fmt.Sprintf("%s %s: %s", shortID(run.ID), run.Kind, run.Error))
			break
		}
	}
	return nil
}

func runInfo(run *core.Run) output.RunInfo {
	return output.RunInfo{
		ID:          run.ID,
		Kind:        string(run.Kind),
		Status:      string(run.Status),
		Input:       run.Input,
		Output:      run.Output,
		StartedAt:   run.StartedAt,
		CompletedAt: run.CompletedAt,
		Error:       run.Error,
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
