package mvi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Store is the runtime state container: one current state, one intent queue
// and one reducer, applied serially by a single event loop.
type Store[S, I any] struct {
	reduce func(S, I) S
	id     string
	name   string

	mu        sync.RWMutex
	current   S
	seq       uint64
	lifecycle Lifecycle
	subs      map[*Subscription[S]]struct{}

	intents *queue[envelope[S, I]]

	timers       map[string]*timerEntry[I]
	timersClosed bool
	timerMu      sync.Mutex

	logger       *slog.Logger
	onTransition TransitionCallback[S, I]

	cancel       context.CancelFunc
	teardownOnce sync.Once
	done         chan struct{}
}

type storeConfig struct {
	name   string
	logger *slog.Logger
}

// StoreOption is a functional option for configuring a Store
type StoreOption func(*storeConfig)

// WithLogger sets the logger for the store
func WithLogger(logger *slog.Logger) StoreOption {
	return func(c *storeConfig) {
		c.logger = logger
	}
}

// WithName sets the name attached to every log line of the store
func WithName(name string) StoreOption {
	return func(c *storeConfig) {
		c.name = name
	}
}

// OnTransition sets a callback invoked after each applied intent.
// Can be called after Build() but before Start().
func (s *Store[S, I]) OnTransition(fn TransitionCallback[S, I]) {
	s.onTransition = fn
}

// ID returns the random instance ID of the store
func (s *Store[S, I]) ID() string {
	return s.id
}

// Name returns the configured store name
func (s *Store[S, I]) Name() string {
	return s.name
}

// Start begins the event loop. Cancelling ctx tears the store down.
func (s *Store[S, I]) Start(ctx context.Context) error {
	s.mu.Lock()
	switch s.lifecycle {
	case LifecycleRunning:
		s.mu.Unlock()
		return ErrAlreadyStarted
	case LifecycleTornDown:
		s.mu.Unlock()
		return ErrStopped
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.lifecycle = LifecycleRunning
	s.mu.Unlock()

	s.logger.Debug("store started", "pending", s.intents.len())
	go s.eventLoop(loopCtx)
	return nil
}

// Stop tears the store down and waits for the event loop to exit. An intent
// already inside the reducer completes; pending intents are discarded and
// later dispatches are dropped. Subscriptions are closed. Calling Stop more
// than once is harmless.
func (s *Store[S, I]) Stop() error {
	s.mu.Lock()
	lc := s.lifecycle
	cancel := s.cancel
	s.lifecycle = LifecycleTornDown
	s.mu.Unlock()

	switch lc {
	case LifecycleUninitialized:
		s.teardown()
	case LifecycleRunning:
		// Close the queue before cancelling so the loop cannot pick up the
		// backlog or intents still arriving from producers.
		if n := s.discardPending(); n > 0 {
			s.logger.Debug("discarded pending intents", "dropped", n)
		}
		cancel()
	}
	<-s.done
	return nil
}

// Done returns a channel closed once teardown has completed
func (s *Store[S, I]) Done() <-chan struct{} {
	return s.done
}

// Lifecycle returns the current lifecycle phase
func (s *Store[S, I]) Lifecycle() Lifecycle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lifecycle
}

// Dispatch queues an intent for asynchronous processing. It never blocks.
// Intents dispatched after teardown are dropped.
func (s *Store[S, I]) Dispatch(intent I) {
	if !s.intents.push(envelope[S, I]{intent: intent}) {
		s.logger.Debug("store stopped, dropping intent", "intent", intentName(intent))
	}
}

// DispatchSync queues an intent and waits until it has been applied,
// returning the state it produced.
func (s *Store[S, I]) DispatchSync(ctx context.Context, intent I) (S, error) {
	var zero S
	done := make(chan syncResult[S], 1)
	if !s.intents.push(envelope[S, I]{intent: intent, done: done}) {
		return zero, ErrStopped
	}
	select {
	case res := <-done:
		return res.state, res.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Pending returns the number of queued intents not yet applied
func (s *Store[S, I]) Pending() int {
	return s.intents.len()
}

// State returns the latest published state
func (s *Store[S, I]) State() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Seq returns the number of intents applied so far
func (s *Store[S, I]) Seq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq
}

// Subscribe attaches a new subscriber. The first value it receives is the
// current state, followed by every later state in order.
func (s *Store[S, I]) Subscribe() *Subscription[S] {
	sub := &Subscription[S]{q: newQueue[S]()}

	s.mu.Lock()
	sub.q.push(s.current)
	if s.lifecycle == LifecycleTornDown {
		sub.q.close(false)
	} else {
		s.subs[sub] = struct{}{}
		sub.detach = func() { s.unsubscribe(sub) }
	}
	n := len(s.subs)
	s.mu.Unlock()

	s.logger.Debug("subscriber attached", "subscribers", n)
	return sub
}

// Observe calls fn for the current state and every later one until ctx is
// done or the store is torn down. Teardown is not reported as an error.
func (s *Store[S, I]) Observe(ctx context.Context, fn func(S)) error {
	sub := s.Subscribe()
	defer sub.Close()

	for {
		state, err := sub.Next(ctx)
		if err != nil {
			if errors.Is(err, ErrStopped) {
				return nil
			}
			return err
		}
		fn(state)
	}
}

func (s *Store[S, I]) unsubscribe(sub *Subscription[S]) {
	s.mu.Lock()
	delete(s.subs, sub)
	n := len(s.subs)
	s.mu.Unlock()

	s.logger.Debug("subscriber detached", "subscribers", n)
}

// eventLoop applies intents one at a time until the queue closes or ctx is done
func (s *Store[S, I]) eventLoop(ctx context.Context) {
	defer s.teardown()

	for {
		env, err := s.intents.pop(ctx)
		if err != nil {
			s.logger.Debug("event loop exiting", "reason", err)
			return
		}
		s.applyTransition(env)
	}
}

// applyTransition reduces the latest state with one intent and publishes the
// result. Only the event loop calls it, so current is never written
// concurrently and the reducer can run outside the lock.
func (s *Store[S, I]) applyTransition(env envelope[S, I]) {
	from := s.current

	next, err := s.safeReduce(from, env.intent)
	if err != nil {
		s.logger.Error("reducer failed, state unchanged", "intent", intentName(env.intent), "error", err)
		if env.done != nil {
			env.done <- syncResult[S]{state: from, err: err}
		}
		return
	}

	s.mu.Lock()
	s.current = next
	s.seq++
	seq := s.seq
	for sub := range s.subs {
		sub.q.push(next)
	}
	s.mu.Unlock()

	s.logger.Debug("intent applied", "intent", intentName(env.intent), "seq", seq)

	if s.onTransition != nil {
		s.onTransition(Transition[S, I]{Seq: seq, Intent: env.intent, From: from, To: next})
	}
	if env.done != nil {
		env.done <- syncResult[S]{state: next}
	}
}

func (s *Store[S, I]) safeReduce(state S, intent I) (next S, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ReducerPanicError{Intent: intent, Value: r}
		}
	}()
	return s.reduce(state, intent), nil
}

// teardown releases the queue, timers and subscriptions. It runs once, either
// from the exiting event loop or from Stop on a store that never started.
func (s *Store[S, I]) teardown() {
	s.teardownOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}

		dropped := s.discardPending()

		s.closeTimers()

		s.mu.Lock()
		s.lifecycle = LifecycleTornDown
		subs := s.subs
		s.subs = make(map[*Subscription[S]]struct{})
		s.mu.Unlock()

		for sub := range subs {
			sub.q.close(false)
		}

		s.logger.Debug("store torn down", "dropped", dropped, "subscribers", len(subs))
		close(s.done)
	})
}

// discardPending closes the intent queue, drops what is still queued and
// releases DispatchSync callers waiting on it. Returns the number dropped.
func (s *Store[S, I]) discardPending() int {
	dropped := s.intents.close(true)
	for _, env := range dropped {
		if env.done != nil {
			env.done <- syncResult[S]{err: ErrStopped}
		}
	}
	return len(dropped)
}

func intentName(intent any) string {
	if st, ok := intent.(fmt.Stringer); ok {
		return st.String()
	}
	return fmt.Sprintf("%T", intent)
}
