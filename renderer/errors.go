package renderer

import "errors"

var (
	ErrNoTracer        = errors.New("renderer: no tracer attached")
	ErrSceneNotDefined = errors.New("renderer: no scene defined")
	ErrTooFewChannels  = errors.New("renderer: rendered frame is missing channels")
	ErrInterrupted     = errors.New("renderer: interrupted while rendering")
)
