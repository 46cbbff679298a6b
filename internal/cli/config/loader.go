package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/leapprice/internal/engine"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// configKey is used to store config in context.
type configKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

var configFileUsed string

// flagKeys maps flag names to config keys. Flags not listed here are read
// by the commands themselves.
var flagKeys = map[string]string{
	"state":        "state_path",
	"verbose":      "verbose",
	"format":       "format",
	"metrics-file": "metrics_file",
	"folds":        "train.folds",
	"workers":      "train.workers",
	"test-size":    "train.test_size",
	"seed":         "train.seed",
}

func defaults() map[string]any {
	opts := engine.DefaultTrainOptions()
	return map[string]any{
		"state_path":                   DefaultStateFile,
		"verbose":                      false,
		"format":                       DefaultOutput,
		"metrics_file":                 "",
		"data.raw":                     DefaultRaw,
		"data.prepared":                DefaultPrepared,
		"data.test":                    DefaultTest,
		"data.predictions":             DefaultPredictions,
		"data.model":                   DefaultModel,
		"train.folds":                  opts.Folds,
		"train.workers":                opts.Workers,
		"train.test_size":              opts.TestSize,
		"train.seed":                   opts.Seed,
		"train.grid.n_estimators":      opts.Grid.NEstimators,
		"train.grid.max_depth":         opts.Grid.MaxDepth,
		"train.grid.min_samples_split": opts.Grid.MinSamplesSplit,
		"train.grid.min_samples_leaf":  opts.Grid.MinSamplesLeaf,
	}
}

// findProjectRootUpward searches upward from startDir for a config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func findProjectRootUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if _, err := os.Stat(filepath.Join(dir, ConfigFileName)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty, ":memory:" or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// LoadConfig loads configuration from defaults, the config file, environment
// variables and flags. Precedence (highest to lowest): flags > env vars >
// config file > defaults.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	configFileUsed = ""

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file: explicit path, else searched upward from CWD
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	projectRoot := cwd
	if cfgFile == "" {
		if root := findProjectRootUpward(cwd); root != "" {
			projectRoot = root
			cfgFile = filepath.Join(root, ConfigFileName)
		}
	} else if abs, err := filepath.Abs(cfgFile); err == nil {
		projectRoot = filepath.Dir(abs)
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
		configFileUsed = cfgFile
	}

	// 3. Environment: LEAPPRICE_STATE_PATH -> state_path,
	// LEAPPRICE_TRAIN__FOLDS -> train.folds
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Explicitly set flags
	flagPaths := map[string]bool{}
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			if key == "state_path" {
				flagPaths[key] = true
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Env values arrive as strings; "NA,?" fills a list and "10,20" an []int.
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToWeakSliceHookFunc(","),
				mapstructure.StringToTimeDurationHookFunc(),
			),
			Result:           &cfg,
			TagName:          "koanf",
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Paths from flags are relative to CWD; everything else to the project root.
	cfg.ProjectRoot = projectRoot
	if flagPaths["state_path"] {
		cfg.StatePath = resolvePathRelativeTo(cfg.StatePath, cwd)
	} else {
		cfg.StatePath = resolvePathRelativeTo(cfg.StatePath, projectRoot)
	}
	cfg.MetricsFile = resolvePathRelativeTo(cfg.MetricsFile, projectRoot)
	cfg.Data.Raw = resolvePathRelativeTo(cfg.Data.Raw, projectRoot)
	cfg.Data.Prepared = resolvePathRelativeTo(cfg.Data.Prepared, projectRoot)
	cfg.Data.Test = resolvePathRelativeTo(cfg.Data.Test, projectRoot)
	cfg.Data.Predictions = resolvePathRelativeTo(cfg.Data.Predictions, projectRoot)
	cfg.Data.Model = resolvePathRelativeTo(cfg.Data.Model, projectRoot)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
			return l
		}
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// WithConfig returns a copy of ctx carrying cfg.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config loaded by the root command. Outside a
// command run it falls back to the layered config without flags.
func FromContext(ctx context.Context) (*Config, error) {
	if ctx != nil {
		if c, ok := ctx.Value(configKey{}).(*Config); ok {
			return c, nil
		}
	}
	return LoadConfig("", nil)
}
