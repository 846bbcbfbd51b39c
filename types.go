package mvi

import (
	"errors"
	"fmt"
	"log/slog"
)

// Lifecycle is the coarse state of a Store
type Lifecycle int

const (
	// LifecycleUninitialized - built and seeded, event loop not started yet
	LifecycleUninitialized Lifecycle = iota
	// LifecycleRunning - event loop is consuming intents
	LifecycleRunning
	// LifecycleTornDown - terminal; no further intents are applied
	LifecycleTornDown
)

func (l Lifecycle) String() string {
	switch l {
	case LifecycleUninitialized:
		return "uninitialized"
	case LifecycleRunning:
		return "running"
	case LifecycleTornDown:
		return "torn_down"
	default:
		return fmt.Sprintf("lifecycle(%d)", int(l))
	}
}

var (
	// ErrStopped is returned by operations on a torn-down store or subscription
	ErrStopped = errors.New("mvi: store stopped")
	// ErrAlreadyStarted is returned when Start is called twice
	ErrAlreadyStarted = errors.New("mvi: store already started")
	// ErrNoInitialState is returned by Validate when no initial state function is set
	ErrNoInitialState = errors.New("mvi: no initial state defined")
	// ErrNoReducer is returned by Validate when no reducer is set
	ErrNoReducer = errors.New("mvi: no reducer defined")
)

// ReducerPanicError reports a reducer that panicked while applying an intent.
// The state is left unchanged.
type ReducerPanicError struct {
	Intent any
	Value  any
}

func (e *ReducerPanicError) Error() string {
	return fmt.Sprintf("mvi: reducer panicked on intent %T: %v", e.Intent, e.Value)
}

// Logger is the default logger used when none is provided
var Logger = slog.Default()
