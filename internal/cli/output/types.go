package output

import "time"

// StageInfo is one pipeline stage in JSON output.
type StageInfo struct {
	Stage      string `json:"stage"`
	RowsIn     int    `json:"rows_in"`
	RowsOut    int    `json:"rows_out"`
	Columns    int    `json:"columns"`
	DurationMS int64  `json:"duration_ms"`
}

// PreprocessOutput is the JSON output of preprocess.
type PreprocessOutput struct {
	RunID   string      `json:"run_id"`
	Input   string      `json:"input"`
	Output  string      `json:"output"`
	RowsIn  int         `json:"rows_in"`
	RowsOut int         `json:"rows_out"`
	Columns int         `json:"columns"`
	Stages  []StageInfo `json:"stages"`
}

// TrainOutput is the JSON output of train.
type TrainOutput struct {
	RunID      string         `json:"run_id"`
	Input      string         `json:"input"`
	Model      string         `json:"model"`
	Rows       int            `json:"rows"`
	TrainRows  int            `json:"train_rows"`
	TestRows   int            `json:"test_rows"`
	Features   int            `json:"features"`
	Candidates int            `json:"candidates"`
	BestParams map[string]int `json:"best_params"`
	CVMAELog   float64        `json:"cv_mae_log"`
	TestMAE    float64        `json:"test_mae"`
	DurationMS int64          `json:"duration_ms"`
}

// InferOutput is the JSON output of infer.
type InferOutput struct {
	RunID   string   `json:"run_id"`
	Input   string   `json:"input"`
	Output  string   `json:"output"`
	Rows    int      `json:"rows"`
	Filled  []string `json:"filled_columns"`
	Dropped []string `json:"dropped_columns"`
}

// RunInfo is one run in JSON output.
type RunInfo struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Status      string     `json:"status"`
	Input       string     `json:"input"`
	Output      string     `json:"output,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}
