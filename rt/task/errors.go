package task

import "errors"

var (
	// ErrNilTarget is returned by Start when target is nil.
	ErrNilTarget = errors.New("task: nil target")
	// ErrRenderFailed wraps a renderer or dispatcher failure. It is logged and recorded
	// in Status.LastError, never returned from Start.
	ErrRenderFailed = errors.New("task: render failed")
)
