// Package concurrency provides a slot limiter that bounds the number of
// in-flight operations. It acts as a semaphore with context support and
// state inspection, and is how the pipeline applies backpressure to its
// line source.
package concurrency

import (
	"context"
	"sync"

	"github.com/nmishr/recflow/pkg/common/validation"
)

// Limiter controls the number of concurrent operations that can happen at
// any given time.
type Limiter interface {
	// Acquire attempts to acquire a slot without blocking.
	// It returns true if a slot was available.
	Acquire() bool

	// Wait blocks until a slot is available or the context is done.
	Wait(ctx context.Context) error

	// Release returns a slot to the limiter.
	// It panics if more slots are released than were acquired.
	Release()

	// Capacity returns the maximum number of concurrent operations allowed.
	Capacity() int

	// Available returns the number of slots currently available.
	Available() int

	// InUse returns the number of slots currently in use.
	InUse() int
}

// limiter implements Limiter with a mutex-guarded counter and a FIFO
// queue of waiters.
type limiter struct {
	mu        sync.Mutex
	capacity  int
	available int
	inUse     int
	waiters   []chan struct{}
}

// New creates a limiter allowing at most capacity concurrent operations.
func New(capacity int) (Limiter, error) {
	if err := validation.ValidatePositive("concurrency", "capacity", capacity); err != nil {
		return nil, err
	}

	return &limiter{
		capacity:  capacity,
		available: capacity,
	}, nil
}

func (l *limiter) Acquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.available > 0 {
		l.available--
		l.inUse++
		return true
	}
	return false
}

func (l *limiter) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	l.mu.Lock()
	if l.available > 0 {
		l.available--
		l.inUse++
		l.mu.Unlock()
		return nil
	}

	ready := make(chan struct{})
	l.waiters = append(l.waiters, ready)
	l.mu.Unlock()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		l.mu.Lock()
		for i, w := range l.waiters {
			if w == ready {
				l.waiters = append(l.waiters[:i], l.waiters[i+1:]...)
				l.mu.Unlock()
				return ctx.Err()
			}
		}
		l.mu.Unlock()
		// The slot was handed over concurrently with cancellation;
		// give it back before reporting the cancellation.
		l.Release()
		return ctx.Err()
	}
}

func (l *limiter) Release() {
	l.mu.Lock()
	if l.inUse <= 0 {
		l.mu.Unlock()
		panic("concurrency: release without matching acquire")
	}

	if len(l.waiters) > 0 {
		// Hand the slot directly to the oldest waiter; inUse is unchanged.
		ready := l.waiters[0]
		l.waiters = l.waiters[1:]
		l.mu.Unlock()
		close(ready)
		return
	}

	l.inUse--
	l.available++
	l.mu.Unlock()
}

func (l *limiter) Capacity() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.capacity
}

func (l *limiter) Available() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.available
}

func (l *limiter) InUse() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inUse
}
