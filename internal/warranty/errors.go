package warranty

import (
	"errors"
	"fmt"
)

var (
	ErrBodyTooLarge = errors.New("request body exceeds maximum upload size")
	ErrPanic        = errors.New("unexpected failure")
)

// Stage is a step of the submission pipeline.
type Stage string

const (
	StageReceived    Stage = "received"
	StageParsing     Stage = "parsing"
	StageComposing   Stage = "composing"
	StageDispatching Stage = "dispatching"
	StageResponded   Stage = "responded"
)

// StageError records the pipeline stage at which a submission failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf returns the stage recorded in err, or "" when err carries none.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

func failAt(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
