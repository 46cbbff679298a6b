// Package main provides tests for the leapprice CLI.
package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapprice/internal/cli"
	"github.com/leapstack-labs/leapprice/internal/testutil"
)

const smallGridConfig = `format: markdown
train:
  folds: 3
  grid:
    n_estimators: [5]
    max_depth: [4]
    min_samples_split: [2]
    min_samples_leaf: [1]
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "leapprice v")
}

func TestHelpCommand(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)

	for _, expected := range []string{"preprocess", "train", "infer", "runs", "schema", "completion"} {
		assert.Contains(t, out, expected)
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "leapprice")

	_, err = run(t, "completion", "tcsh")
	assert.Error(t, err)
}

func TestFullWorkflow(t *testing.T) {
	dir := testutil.SetupTestProject(t, 60, 12)
	testutil.WriteFile(t, dir, "leapprice.yaml", smallGridConfig)
	t.Chdir(dir)

	out, err := run(t, "preprocess")
	require.NoError(t, err, out)
	assert.Contains(t, out, "## Preprocess")
	assert.FileExists(t, filepath.Join(dir, "data", "prep.csv"))

	out, err = run(t, "train", "--seed", "7")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Saved model to")
	assert.FileExists(t, filepath.Join(dir, "models", "model.gob"))

	out, err = run(t, "infer", "--metrics-file", "metrics.prom")
	require.NoError(t, err, out)
	assert.FileExists(t, filepath.Join(dir, "metrics.prom"))

	f, err := os.Open(filepath.Join(dir, "data", "predictions.csv"))
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Equal(t, []string{"Id", "SalePrice_Predicted"}, records[0])

	out, err = run(t, "runs", "--format", "json")
	require.NoError(t, err, out)
	assert.Equal(t, 3, strings.Count(out, `"status": "completed"`))
	assert.DirExists(t, filepath.Join(dir, ".leapprice"))
}

func TestInvalidFormatFlag(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := run(t, "runs", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
