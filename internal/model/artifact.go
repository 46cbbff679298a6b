package model

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/leapstack-labs/leapprice/pkg/core"
)

// ArtifactVersion is bumped whenever the encoded layout changes.
const ArtifactVersion = 1

// Artifact is the persisted output of train: the fitted forest plus the
// feature order it was trained on.
type Artifact struct {
	Version       int
	SchemaVersion string
	Features      []string
	Target        string
	Params        Params
	Forest        *Forest
	TrainedAt     time.Time
	TrainRows     int
	CVScore       float64 // mean k-fold MAE in log space
	TestMAE       float64 // hold-out MAE in original units
}

// Predict runs the forest on X. columns names the columns of X and must
// equal a.Features element-wise.
func (a *Artifact) Predict(columns []string, X mat.Matrix) ([]float64, error) {
	if a.Forest == nil {
		return nil, errors.New("artifact has no model")
	}
	if !slices.Equal(columns, a.Features) {
		return nil, fmt.Errorf("feature columns do not match the trained model (%d given, %d expected)",
			len(columns), len(a.Features))
	}
	if r, _ := dims(X); r == 0 {
		return []float64{}, nil
	}
	return a.Forest.Predict(X)
}

// Encode writes the artifact with gob.
func (a *Artifact) Encode(w io.Writer) error {
	return gob.NewEncoder(w).Encode(a)
}

// DecodeArtifact reads a gob-encoded artifact.
func DecodeArtifact(r io.Reader) (*Artifact, error) {
	var a Artifact
	if err := gob.NewDecoder(r).Decode(&a); err != nil {
		return nil, err
	}
	if a.Version != ArtifactVersion {
		return nil, fmt.Errorf("unsupported artifact version %d", a.Version)
	}
	if a.Forest == nil || len(a.Forest.Trees) == 0 {
		return nil, errors.New("artifact holds no trees")
	}
	return &a, nil
}

// Save writes the artifact to path atomically.
func (a *Artifact) Save(path string) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create model directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".model-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set model permissions: %w", err)
	}
	if err = a.Encode(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to encode model: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move model into place: %w", err)
	}
	return nil
}

// LoadArtifact reads a model from path. A missing file yields
// core.MissingInputFileError, an unreadable one core.ModelLoadError.
func LoadArtifact(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &core.MissingInputFileError{Path: path}
		}
		return nil, &core.ModelLoadError{Path: path, Cause: err}
	}
	defer func() { _ = f.Close() }()

	a, err := DecodeArtifact(f)
	if err != nil {
		return nil, &core.ModelLoadError{Path: path, Cause: err}
	}
	return a, nil
}
