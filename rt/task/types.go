package task

import (
	"context"
	"fmt"
	"time"

	"github.com/evan-idocoding/fxkit/effect"
)

// ContinueFunc is an optional caller predicate checked at every cancellation point,
// e.g. "is the target still visible". Returning false ends the effect.
type ContinueFunc func() bool

// Task is one cancellable effect instance.
type Task interface {
	// Name returns the name the task was created with.
	Name() string
	// Kind returns the effect family the task runs.
	Kind() effect.Kind

	// Start runs the effect over target and blocks until it ends.
	//
	// It returns an error only for a nil target or an invalid/mismatched config; runtime
	// failures are reported, not returned. If ctx is nil, it is treated as
	// context.Background().
	Start(ctx context.Context, target effect.Target, cfg effect.Config, cont ContinueFunc) error

	// Stop requests termination and waits up to the stop grace period or ctx.
	// It reports whether the task is Terminated.
	Stop(ctx context.Context) bool

	// Dispose terminates the task synchronously (best effort).
	Dispose()

	// IsRunning reports whether the task is in StateRunning.
	IsRunning() bool
	State() State
	Status() Status

	// Done is closed once the task is Terminated.
	Done() <-chan struct{}
}

// State is the lifecycle state of a task.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopping
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// EndReason records why a task terminated.
type EndReason int

const (
	EndNone EndReason = iota
	// EndCompleted: the effect ran to its natural end.
	EndCompleted
	// EndBypassed: the gate bypassed the effect; the end-state was applied directly.
	EndBypassed
	// EndStopped: Stop was called.
	EndStopped
	// EndDisposed: Dispose was called.
	EndDisposed
	// EndHalted: the ContinueFunc returned false.
	EndHalted
	// EndCanceled: the ctx passed to Start was canceled.
	EndCanceled
	// EndFailed: the renderer or dispatcher failed.
	EndFailed
)

func (r EndReason) String() string {
	switch r {
	case EndNone:
		return "none"
	case EndCompleted:
		return "completed"
	case EndBypassed:
		return "bypassed"
	case EndStopped:
		return "stopped"
	case EndDisposed:
		return "disposed"
	case EndHalted:
		return "halted"
	case EndCanceled:
		return "canceled"
	case EndFailed:
		return "failed"
	default:
		return fmt.Sprintf("EndReason(%d)", int(r))
	}
}

func (r EndReason) restoresBaseline() bool {
	return r != EndCompleted && r != EndBypassed && r != EndNone
}

// Status is a point-in-time view of a task.
type Status struct {
	Name   string
	Kind   effect.Kind
	State  State
	Target string

	StartedAt time.Time
	EndedAt   time.Time
	End       EndReason

	// Cycles counts completed expand/contract pairs (Pulse only).
	Cycles int

	// LastError is the renderer failure that ended the task, if any.
	LastError string
}
