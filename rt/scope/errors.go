package scope

import "errors"

var (
	// ErrInvalidName indicates an invalid effect name.
	ErrInvalidName = errors.New("scope: invalid name")
	// ErrInvalidOwner indicates an empty owner id.
	ErrInvalidOwner = errors.New("scope: invalid owner")
	// ErrClosed is returned by Start on a registry that has been disposed.
	ErrClosed = errors.New("scope: registry closed")
)
