package core

import "time"

// Store defines the interface for run history operations.
type Store interface {
	Open(path string) error
	Close() error
	InitSchema() error

	// Run operations
	CreateRun(kind RunKind, input string) (*Run, error)
	GetRun(id string) (*Run, error)
	CompleteRun(id string, status RunStatus, output string, errMsg string) error
	GetLatestRun(kind RunKind) (*Run, error)
	ListRuns(limit int) ([]*Run, error)

	// Stage operations
	RecordStage(stage *StageRun) error
	GetStagesForRun(runID string) ([]*StageRun, error)

	// Column snapshot operations
	SaveColumnSnapshot(runID string, columns []string) error
	GetColumnSnapshot(runID string) ([]string, error)
}

// RunKind names the command that produced a run.
type RunKind string

// Run kinds.
const (
	RunKindPreprocess RunKind = "preprocess"
	RunKindTrain      RunKind = "train"
	RunKindInfer      RunKind = "infer"
)

// RunStatus represents the status of a run.
type RunStatus string

// Run status constants.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run represents one preprocess, train or infer invocation.
type Run struct {
	ID          string
	Kind        RunKind
	Input       string
	Output      string
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// StageRun records the row counts observed at one pipeline stage.
type StageRun struct {
	RunID    string
	Seq      int
	Stage    string
	RowsIn   int
	RowsOut  int
	Columns  int
	Duration time.Duration
}

// RowsDropped returns the number of rows the stage removed.
func (s *StageRun) RowsDropped() int { return s.RowsIn - s.RowsOut }
