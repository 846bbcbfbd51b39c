// Package counter is a single-screen counter feature built on an mvi.Store.
package counter

import (
	"fmt"
	"time"

	"github.com/librescoot/mvi"
)

// State is the counter screen's state
type State struct {
	Counter int
}

func (s State) String() string {
	return fmt.Sprintf("counter=%d", s.Counter)
}

// Intent is one of Increment, Decrement or Reset
type Intent interface {
	isIntent()
}

// Increment adds one
type Increment struct{}

// Decrement subtracts one
type Decrement struct{}

// Reset returns the counter to zero
type Reset struct{}

func (Increment) isIntent() {}
func (Decrement) isIntent() {}
func (Reset) isIntent()     {}

func (Increment) String() string { return "increment" }
func (Decrement) String() string { return "decrement" }
func (Reset) String() string     { return "reset" }

// Initial is the starting state, {Counter: 0}
func Initial() State {
	return State{}
}

// Reduce applies one intent. Unknown intents leave the state unchanged.
func Reduce(s State, intent Intent) State {
	switch intent.(type) {
	case Increment:
		s.Counter++
	case Decrement:
		s.Counter--
	case Reset:
		s.Counter = 0
	}
	return s
}

// Store is the counter's state container
type Store = mvi.Store[State, Intent]

type options struct {
	start     int
	storeOpts []mvi.StoreOption
}

// Option configures New
type Option func(*options)

// WithStart seeds the counter with n instead of zero
func WithStart(n int) Option {
	return func(o *options) {
		o.start = n
	}
}

// WithStoreOptions passes options through to the underlying store
func WithStoreOptions(opts ...mvi.StoreOption) Option {
	return func(o *options) {
		o.storeOpts = append(o.storeOpts, opts...)
	}
}

// New builds a counter store. The caller starts and stops it.
func New(opts ...Option) (*Store, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	initial := Initial
	if o.start != 0 {
		start := o.start
		initial = func() State { return State{Counter: start} }
	}

	storeOpts := append([]mvi.StoreOption{mvi.WithName("counter")}, o.storeOpts...)
	return mvi.NewDefinition[State, Intent]().
		Initial(initial).
		Reducer(Reduce).
		Build(storeOpts...)
}

// AutoIncrementTimer is the name of the ticker started by AutoIncrement
const AutoIncrementTimer = "auto_increment"

// AutoIncrement dispatches Increment every interval until the store stops.
// A non-positive interval stops a running ticker.
func AutoIncrement(store *Store, interval time.Duration) {
	if interval <= 0 {
		store.StopTimer(AutoIncrementTimer)
		return
	}
	store.StartTicker(AutoIncrementTimer, interval, Increment{})
}
