// Package features turns raw housing rows into a model-ready feature table
// and reconciles inference-time tables against the training schema.
//
// The transformation is a fixed sequence of stages:
//
//	raw -> PreEncodePolicy -> EncodeOrdinal -> EncodeNominal
//	    -> TransformTarget (only when the target is present) -> FinalSweepPolicy
//
// Every stage returns a new core.Table; inputs are never modified, so each
// intermediate table can be inspected through Result.Stages.
//
// Two error policies coexist on purpose. EncodeOrdinal is strict: a value
// outside the declared category list fails with core.UnknownCategoryError.
// Align is tolerant: missing reference columns are filled with 0 and extra
// columns are dropped without error.
package features
