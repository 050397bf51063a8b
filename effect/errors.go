package effect

import "errors"

var (
	// ErrInvalidConfig is returned (wrapped) when a config fails validation.
	ErrInvalidConfig = errors.New("effect: invalid config")
	// ErrAborted is returned by a Renderer when an in-flight animation is aborted.
	ErrAborted = errors.New("effect: animation aborted")
)
