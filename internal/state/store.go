// Package state persists leapprice run history in SQLite: one row per
// preprocess, train or infer invocation, the row counts of every pipeline
// stage, and the feature columns a run produced.
package state

import "github.com/leapstack-labs/leapprice/pkg/core"

// Ensure SQLiteStore implements core.Store.
var _ core.Store = (*SQLiteStore)(nil)
