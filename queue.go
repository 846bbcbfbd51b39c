package mvi

import (
	"context"
	"sync"
)

// queue is an unbounded FIFO with any number of producers and a single
// consumer. push never blocks.
type queue[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool

	// wake holds at most one token; it is signalled whenever items goes
	// from empty to non-empty or the queue is closed.
	wake chan struct{}
}

func newQueue[T any]() *queue[T] {
	return &queue[T]{wake: make(chan struct{}, 1)}
}

// push appends v. It returns false if the queue has been closed, in which case
// v is dropped.
func (q *queue[T]) push(v T) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, v)
	q.mu.Unlock()

	q.signal()
	return true
}

// pop removes and returns the oldest value, suspending while the queue is
// empty. It returns ErrStopped once the queue is closed. A done ctx wins over
// buffered values.
func (q *queue[T]) pop(ctx context.Context) (T, error) {
	var zero T
	for {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return zero, ErrStopped
		}
		if len(q.items) > 0 {
			v := q.items[0]
			q.items[0] = zero
			q.items = q.items[1:]
			q.mu.Unlock()
			return v, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-q.wake:
		}
	}
}

// drain is like pop but keeps returning buffered values after close. Used by
// subscriptions, which must deliver every state published before teardown.
func (q *queue[T]) drain(ctx context.Context) (T, error) {
	var zero T
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			v := q.items[0]
			q.items[0] = zero
			q.items = q.items[1:]
			q.mu.Unlock()
			return v, nil
		}
		if q.closed {
			q.mu.Unlock()
			return zero, ErrStopped
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-q.wake:
		}
	}
}

// close marks the queue closed and wakes the consumer. If discard is set,
// pending values are dropped and returned.
func (q *queue[T]) close(discard bool) []T {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	var dropped []T
	if discard {
		dropped = q.items
		q.items = nil
	}
	q.mu.Unlock()

	q.signal()
	return dropped
}

func (q *queue[T]) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *queue[T]) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}
