package reconcile

import (
	"errors"
	"fmt"
)

// ErrNoItems is returned when a run is started without line items.
var ErrNoItems = errors.New("no line items")

// Pipeline stage names used in StageError.
const (
	StageDrawing = "drawing"
	StageItems   = "items"
	StageMatch   = "match"
	StageOutput  = "output"
)

// StageError wraps a failure with the pipeline stage it happened in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
