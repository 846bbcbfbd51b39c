package mvi

import (
	"context"
	"sync"
)

// Subscription is one subscriber's ordered view of a store's state stream.
// States are buffered per subscriber, so a slow reader never holds up the
// event loop.
type Subscription[S any] struct {
	q         *queue[S]
	detach    func()
	closeOnce sync.Once
}

// Next returns the next state, suspending until one is published. After the
// store is torn down, Next returns the remaining buffered states and then
// ErrStopped. Next must be called from a single goroutine at a time.
func (sub *Subscription[S]) Next(ctx context.Context) (S, error) {
	return sub.q.drain(ctx)
}

// Buffered returns the number of states published but not yet read
func (sub *Subscription[S]) Buffered() int {
	return sub.q.len()
}

// Close detaches the subscription from its store and discards buffered states
func (sub *Subscription[S]) Close() {
	sub.closeOnce.Do(func() {
		if sub.detach != nil {
			sub.detach()
		}
		sub.q.close(true)
	})
}
