// Package future projects asynchronous work onto blocking and callback
// based consumers.
//
// A Future starts Pending and becomes Ready exactly once. Any number of
// goroutines may Wait on it, waiting never consumes the outcome. At most one
// callback can be registered. It runs on the completing goroutine, or
// synchronously on the registering one when the future is already Ready.
package future

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ErrCallbackAlreadySet is returned by SetCallback on a second registration.
var ErrCallbackAlreadySet = errors.New("callback already set")

// Outcome is the result of a finished task.
type Outcome[T any] struct {
	Value T
	Err   error
}

// Future is a single-assignment result slot.
type Future[T any] struct {
	mtx      sync.Mutex
	done     chan struct{}
	outcome  Outcome[T]
	ready    bool
	callback func()
	cbSet    bool
	freed    bool
}

func newPending[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Ready returns a future that is already resolved.
func Ready[T any](v T, err error) *Future[T] {
	f := newPending[T]()
	f.complete(Outcome[T]{Value: v, Err: err})
	return f
}

// complete moves the future to Ready. Only the first call has an effect, it
// reports whether it won.
func (f *Future[T]) complete(o Outcome[T]) bool {
	f.mtx.Lock()
	if f.ready {
		f.mtx.Unlock()
		return false
	}
	f.outcome = o
	f.ready = true
	cb := f.callback
	f.callback = nil
	close(f.done)
	f.mtx.Unlock()

	if cb != nil {
		cb()
	}
	return true
}

// IsReady reports whether the future has an outcome, without blocking.
func (f *Future[T]) IsReady() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the future is Ready and returns the outcome.
func (f *Future[T]) Wait() Outcome[T] {
	<-f.done
	return f.peek()
}

// WaitTimed blocks for at most d. The bool is false when the deadline
// passed first. A non-positive d polls.
func (f *Future[T]) WaitTimed(d time.Duration) (Outcome[T], bool) {
	if d <= 0 {
		if f.IsReady() {
			return f.peek(), true
		}
		return Outcome[T]{}, false
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-f.done:
		return f.peek(), true
	case <-timer.C:
		return Outcome[T]{}, false
	}
}

// Done is closed once the future is Ready.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

func (f *Future[T]) peek() Outcome[T] {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return f.outcome
}

// SetCallback registers cb. When the future is already Ready cb runs before
// SetCallback returns. Registering twice fails with ErrCallbackAlreadySet.
func (f *Future[T]) SetCallback(cb func()) error {
	f.mtx.Lock()
	if f.cbSet {
		f.mtx.Unlock()
		return ErrCallbackAlreadySet
	}
	f.cbSet = true
	if f.ready {
		f.mtx.Unlock()
		cb()
		return nil
	}
	if !f.freed {
		f.callback = cb
	}
	f.mtx.Unlock()
	return nil
}

// Free detaches a callback that has not started yet. The outcome stays
// readable for goroutines still holding the future.
func (f *Future[T]) Free() {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.freed = true
	f.callback = nil
}
