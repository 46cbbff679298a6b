package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapprice/internal/cli/config"
	"github.com/leapstack-labs/leapprice/internal/cli/output"
	"github.com/leapstack-labs/leapprice/internal/engine"
	"github.com/leapstack-labs/leapprice/internal/metrics"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
	Metrics  *metrics.Collector
}

// NewCommandContext creates a CommandContext with engine and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cmdCtx, err := NewCommandContextWithoutEngine(cmd)
	if err != nil {
		return nil, nil, err
	}

	collector := metrics.NewCollector(nil)
	eng, err := createEngine(cmdCtx.Cfg, collector, cmdCtx.Logger)
	if err != nil {
		return nil, nil, err
	}
	cmdCtx.Engine = eng
	cmdCtx.Metrics = collector

	cleanup := func() {
		_ = eng.Close()
		if path := cmdCtx.Cfg.MetricsFile; path != "" {
			if err := collector.WriteTextfile(path); err != nil {
				cmdCtx.Logger.Warn("metrics not written", "path", path, "error", err)
			}
		}
	}

	return cmdCtx, cleanup, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that don't need the state store.
func NewCommandContextWithoutEngine(cmd *cobra.Command) (*CommandContext, error) {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return nil, err
	}
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}, nil
}

func createEngine(cfg *config.Config, collector *metrics.Collector, logger *slog.Logger) (*engine.Engine, error) {
	stateDir := filepath.Dir(cfg.StatePath)
	if cfg.StatePath != ":memory:" && stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	return engine.New(engine.Config{
		StatePath:  cfg.StatePath,
		Train:      cfg.TrainOptions(),
		NullTokens: cfg.NullTokens,
		Metrics:    collector,
		Logger:     logger,
	})
}

// pathFlag returns the value of a path flag, or fallback when the flag was
// not set on the command line.
func pathFlag(cmd *cobra.Command, name, fallback string) string {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		return f.Value.String()
	}
	return fallback
}
