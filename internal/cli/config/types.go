// Package config provides configuration management for the leapprice CLI.
//
// Values are layered with koanf: built-in defaults, then leapprice.yaml,
// then LEAPPRICE_* environment variables, then explicitly set flags.
package config

import (
	"github.com/leapstack-labs/leapprice/internal/engine"
	"github.com/leapstack-labs/leapprice/internal/model"
)

// Config holds all CLI configuration options.
type Config struct {
	StatePath    string      `koanf:"state_path"`
	Verbose      bool        `koanf:"verbose"`
	OutputFormat string      `koanf:"format"`
	MetricsFile  string      `koanf:"metrics_file"`
	NullTokens   []string    `koanf:"null_tokens"`
	Data         DataConfig  `koanf:"data"`
	Train        TrainConfig `koanf:"train"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// DataConfig holds the default file locations used by the commands.
type DataConfig struct {
	Raw         string `koanf:"raw"`
	Prepared    string `koanf:"prepared"`
	Test        string `koanf:"test"`
	Predictions string `koanf:"predictions"`
	Model       string `koanf:"model"`
}

// TrainConfig holds model selection settings.
type TrainConfig struct {
	Folds    int        `koanf:"folds"`
	Workers  int        `koanf:"workers"`
	TestSize float64    `koanf:"test_size"`
	Seed     int64      `koanf:"seed"`
	Grid     GridConfig `koanf:"grid"`
}

// GridConfig lists the searched hyperparameter values. A max_depth of 0
// means unlimited.
type GridConfig struct {
	NEstimators     []int `koanf:"n_estimators"`
	MaxDepth        []int `koanf:"max_depth"`
	MinSamplesSplit []int `koanf:"min_samples_split"`
	MinSamplesLeaf  []int `koanf:"min_samples_leaf"`
}

// TrainOptions converts the train settings for the engine.
func (c *Config) TrainOptions() *engine.TrainOptions {
	return &engine.TrainOptions{
		Grid: model.Grid{
			NEstimators:     c.Train.Grid.NEstimators,
			MaxDepth:        c.Train.Grid.MaxDepth,
			MinSamplesSplit: c.Train.Grid.MinSamplesSplit,
			MinSamplesLeaf:  c.Train.Grid.MinSamplesLeaf,
		},
		Folds:    c.Train.Folds,
		Workers:  c.Train.Workers,
		TestSize: c.Train.TestSize,
		Seed:     c.Train.Seed,
	}
}

// Default configuration values.
const (
	ConfigFileName     = "leapprice.yaml"
	EnvPrefix          = "LEAPPRICE_"
	DefaultStateFile   = ".leapprice/state.db"
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultRaw         = "data/raw.csv"
	DefaultPrepared    = "data/prep.csv"
	DefaultTest        = "data/test.csv"
	DefaultPredictions = "data/predictions.csv"
	DefaultModel       = "models/model.gob"
)

// OutputFormats are the accepted values of the format setting.
var OutputFormats = []string{"auto", "text", "markdown", "json"}
