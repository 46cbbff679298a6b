// Package core defines the shared language of the leapprice system.
//
// This package contains:
//   - Tabular data (Value, Row, Table)
//   - Error kinds shared by the pipeline, the model boundary and the CLI
//   - Run history entities and the Store interface
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
