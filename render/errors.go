package render

import "errors"

// ErrLoopClosed is returned by Loop.Do after Close.
var ErrLoopClosed = errors.New("render: loop closed")
