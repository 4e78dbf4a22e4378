package cache

import (
	"context"
	"sync"
)

// Future is the eventual result of an asynchronous computation. Until it
// completes, Placeholder is what callers should display.
type Future[T any] struct {
	placeholder T
	done        chan struct{}

	mu        sync.Mutex
	value     T
	err       error
	completed bool
	callbacks []func(T, error)
}

// NewFuture creates a pending future.
func NewFuture[T any](placeholder T) *Future[T] {
	return &Future[T]{
		placeholder: placeholder,
		done:        make(chan struct{}),
	}
}

// Completed returns an already resolved future.
func Completed[T any](value T, err error) *Future[T] {
	f := NewFuture(value)
	f.Complete(value, err)
	return f
}

// Placeholder returns the value to show while the future is pending.
func (f *Future[T]) Placeholder() T {
	return f.placeholder
}

// Done is closed once the future completes.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Result returns the outcome if the future has completed.
func (f *Future[T]) Result() (T, error, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.completed {
		return f.placeholder, nil, false
	}
	return f.value, f.err, true
}

// Wait blocks until the future completes or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.value, f.err
	case <-ctx.Done():
		return f.placeholder, ctx.Err()
	}
}

// OnDone registers cb. Callbacks registered before completion run once on the
// completing goroutine, in registration order; later ones run immediately on
// the caller's goroutine.
func (f *Future[T]) OnDone(cb func(T, error)) {
	f.mu.Lock()
	if !f.completed {
		f.callbacks = append(f.callbacks, cb)
		f.mu.Unlock()
		return
	}
	value, err := f.value, f.err
	f.mu.Unlock()
	cb(value, err)
}

// Complete publishes the result. Only the first call has any effect.
func (f *Future[T]) Complete(value T, err error) bool {
	f.mu.Lock()
	if f.completed {
		f.mu.Unlock()
		return false
	}
	f.value, f.err, f.completed = value, err, true
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb(value, err)
	}
	return true
}
