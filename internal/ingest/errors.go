package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrLoadInProgress is returned when Load is called while a previous
	// load has not completed. The running load is left alone.
	ErrLoadInProgress = errors.New("snapshot load already in progress")

	ErrEmptySource = errors.New("no snapshot source configured")
)

type Stage string

const (
	StageFetch    Stage = "fetch"
	StageDecode   Stage = "decode"
	StageValidate Stage = "validate"
)

// LoadError describes why a snapshot could not be loaded. Its message is
// what the store records as the load error.
type LoadError struct {
	Source string
	Stage  Stage
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %s: %v", e.Source, e.Stage, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
