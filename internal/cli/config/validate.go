package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains(OutputFormats, c.OutputFormat) {
		errs = append(errs, fmt.Errorf("format must be one of %s, got %q", strings.Join(OutputFormats, ", "), c.OutputFormat))
	}
	if c.StatePath == "" {
		errs = append(errs, errors.New("state_path is required"))
	}

	t := c.Train
	if t.Folds < 2 {
		errs = append(errs, fmt.Errorf("train.folds must be at least 2, got %d", t.Folds))
	}
	if t.Workers < 0 {
		errs = append(errs, fmt.Errorf("train.workers must not be negative, got %d", t.Workers))
	}
	if t.TestSize <= 0 || t.TestSize >= 1 {
		errs = append(errs, fmt.Errorf("train.test_size must be between 0 and 1, got %g", t.TestSize))
	}

	errs = append(errs, checkAxis("n_estimators", t.Grid.NEstimators, 1)...)
	errs = append(errs, checkAxis("max_depth", t.Grid.MaxDepth, 0)...)
	errs = append(errs, checkAxis("min_samples_split", t.Grid.MinSamplesSplit, 2)...)
	errs = append(errs, checkAxis("min_samples_leaf", t.Grid.MinSamplesLeaf, 1)...)

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func checkAxis(name string, values []int, lowest int) []error {
	if len(values) == 0 {
		return []error{fmt.Errorf("train.grid.%s must list at least one value", name)}
	}
	var errs []error
	for _, v := range values {
		if v < lowest {
			errs = append(errs, fmt.Errorf("train.grid.%s values must be >= %d, got %d", name, lowest, v))
		}
	}
	return errs
}
