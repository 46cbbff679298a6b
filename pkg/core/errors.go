package core

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is against these; the structured types below
// match them through their Is methods.
var (
	ErrMissingInputFile = errors.New("input file does not exist")
	ErrMissingColumn    = errors.New("required column is missing")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrEmptyResult      = errors.New("stage produced zero rows")
	ErrModelLoad        = errors.New("model artifact could not be loaded")
	ErrNonNumeric       = errors.New("non-numeric value in feature matrix")
)

// MissingInputFileError is returned when an input path does not exist.
type MissingInputFileError struct {
	Path string
}

func (e *MissingInputFileError) Error() string {
	return fmt.Sprintf("input file %q does not exist", e.Path)
}

// Is matches ErrMissingInputFile.
func (e *MissingInputFileError) Is(target error) bool { return target == ErrMissingInputFile }

// MissingColumnError is returned when a required column is absent.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column %q is not in the table", e.Column)
}

// Is matches ErrMissingColumn.
func (e *MissingColumnError) Is(target error) bool { return target == ErrMissingColumn }

// UnknownCategoryError is returned when an ordinal value is outside the
// declared category list of its column.
type UnknownCategoryError struct {
	Column string
	Value  string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q in ordinal column %q", e.Value, e.Column)
}

// Is matches ErrUnknownCategory.
func (e *UnknownCategoryError) Is(target error) bool { return target == ErrUnknownCategory }

// EmptyResultError is returned when a stage leaves no rows.
type EmptyResultError struct {
	Stage string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("stage %s produced zero rows", e.Stage)
}

// Is matches ErrEmptyResult.
func (e *EmptyResultError) Is(target error) bool { return target == ErrEmptyResult }

// ModelLoadError wraps the cause of an unreadable or corrupt model artifact.
type ModelLoadError struct {
	Path  string
	Cause error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("failed to load model %q: %v", e.Path, e.Cause)
}

// Is matches ErrModelLoad.
func (e *ModelLoadError) Is(target error) bool { return target == ErrModelLoad }

func (e *ModelLoadError) Unwrap() error { return e.Cause }

// NonNumericError is returned when a string cell reaches matrix assembly.
type NonNumericError struct {
	Column string
	Value  any
}

func (e *NonNumericError) Error() string {
	return fmt.Sprintf("column %q holds non-numeric value %v", e.Column, e.Value)
}

// Is matches ErrNonNumeric.
func (e *NonNumericError) Is(target error) bool { return target == ErrNonNumeric }
