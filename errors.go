package figmaimport

import (
	"errors"
	"fmt"
)

// Error kinds of a failed import. Use errors.Is to classify an error returned by Run.
var (
	// ErrInputValidation means a required input was missing or malformed; no request was made.
	ErrInputValidation = errors.New("invalid input")
	// ErrTransport means the document or the image batch could not be fetched.
	ErrTransport = errors.New("transport error")
	// ErrNotFound means the frame node does not exist in the document or has no bounds.
	ErrNotFound = errors.New("frame not found")
	// ErrEmptySelection means the frame contains no renderable node.
	ErrEmptySelection = errors.New("no renderable nodes")
)

// ErrNoFrameBounds is the cause recorded when the frame exists but has no absolute bounding box.
var ErrNoFrameBounds = errors.New("frame has no absolute bounding box")

// State is a stage of the import pipeline.
type State int

// Import stages, in execution order. Aborted is terminal and reachable from any stage.
const (
	StateIdle State = iota
	StateValidatingInput
	StateFetchingDocument
	StateLocatingFrame
	StateCollectingRenderables
	StateResolvingImages
	StateEmittingPlacements
	StateDone
	StateAborted
)

var stateNames = [...]string{
	StateIdle:                  "Idle",
	StateValidatingInput:       "ValidatingInput",
	StateFetchingDocument:      "FetchingDocument",
	StateLocatingFrame:         "LocatingFrame",
	StateCollectingRenderables: "CollectingRenderables",
	StateResolvingImages:       "ResolvingImages",
	StateEmittingPlacements:    "EmittingPlacements",
	StateDone:                  "Done",
	StateAborted:               "Aborted",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// StageError is the error returned by Run when a stage aborts the import.
// It matches its Kind with errors.Is and unwraps to the underlying cause.
type StageError struct {
	Stage State
	Kind  error
	Err   error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the kind of this error.
func (e *StageError) Is(target error) bool {
	return e.Kind == target
}
