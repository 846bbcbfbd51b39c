package mvi

import (
	"fmt"

	"github.com/google/uuid"
)

// Definition holds the feature's initial state and reducer before building a Store
type Definition[S, I any] struct {
	initial func() S
	reduce  func(S, I) S
}

// NewDefinition creates a new store definition builder
func NewDefinition[S, I any]() *Definition[S, I] {
	return &Definition[S, I]{}
}

// Initial sets the function producing the starting state.
// It is called exactly once, by Build.
func (d *Definition[S, I]) Initial(fn func() S) *Definition[S, I] {
	d.initial = fn
	return d
}

// Reducer sets the pure transition function.
// It must handle every intent for every reachable state without blocking.
func (d *Definition[S, I]) Reducer(fn func(S, I) S) *Definition[S, I] {
	d.reduce = fn
	return d
}

// Validate checks the definition for errors
func (d *Definition[S, I]) Validate() error {
	if d.initial == nil {
		return ErrNoInitialState
	}
	if d.reduce == nil {
		return ErrNoReducer
	}
	return nil
}

// Build creates a Store from the definition and seeds it with the initial
// state. The event loop is not running until Start is called; intents
// dispatched in between are queued.
func (d *Definition[S, I]) Build(opts ...StoreOption) (*Store[S, I], error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid definition: %w", err)
	}

	cfg := storeConfig{
		name:   "store",
		logger: Logger,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Store[S, I]{
		reduce:  d.reduce,
		id:      uuid.NewString(),
		name:    cfg.name,
		intents: newQueue[envelope[S, I]](),
		subs:    make(map[*Subscription[S]]struct{}),
		timers:  make(map[string]*timerEntry[I]),
		done:    make(chan struct{}),
	}
	s.logger = cfg.logger.With("store", s.name, "id", s.id)

	s.current = d.initial()
	s.logger.Debug("store built", "state", s.current)

	return s, nil
}
