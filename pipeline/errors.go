package pipeline

import (
	"errors"
	"fmt"
)

// ErrTimeout signals a stage exceeded its configured timeout.
var ErrTimeout = errors.New("pipeline: stage timed out")

// ErrCancelled signals the pipeline was aborted via Pipeline.Abort.
var ErrCancelled = errors.New("pipeline: execution cancelled")

// ErrBuilding signals addStage/use/updateConfig was called while the
// pipeline is executing.
var ErrBuilding = errors.New("pipeline: cannot modify a pipeline while it is executing")

// StageError wraps a failure from a single stage, after all retries
// were exhausted.
type StageError struct {
	Stage    string
	Attempts int
	Cause    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline: stage %q: %v", e.Stage, e.Cause)
}

func (e *StageError) Unwrap() error { return e.Cause }

// PipelineError wraps the StageError that aborted execution, together
// with the diagnostics accumulated up to that point.
type PipelineError struct {
	RunID       string
	StageError  *StageError
	Diagnostics []GenericDiagnostic
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline: run %s: %v", e.RunID, e.StageError)
}

func (e *PipelineError) Unwrap() error { return e.StageError }
