package domain

import (
	"context"
	"sync"
)

// Future is the completion handle returned by a send. It is resolved exactly
// once, either immediately or from a later scheduler tick.
type Future struct {
	once    sync.Once
	done    chan struct{}
	outcome Outcome
}

// NewFuture creates an unresolved Future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolve completes the future. Only the first call has an effect; it
// reports whether this call resolved the future.
func (f *Future) Resolve(o Outcome) bool {
	resolved := false
	f.once.Do(func() {
		f.outcome = o
		close(f.done)
		resolved = true
	})
	return resolved
}

// Done returns a channel closed once the future is resolved.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Outcome returns the outcome without blocking. The bool is false while the
// future is still pending.
func (f *Future) Outcome() (Outcome, bool) {
	select {
	case <-f.done:
		return f.outcome, true
	default:
		return nil, false
	}
}

// Wait blocks until the future resolves or ctx ends.
// The returned error is the context error; a Failure outcome is not an error here.
func (f *Future) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-f.done:
		return f.outcome, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result waits for the future and returns the body, or the Failure as error.
func (f *Future) Result(ctx context.Context) ([]byte, error) {
	o, err := f.Wait(ctx)
	if err != nil {
		return nil, err
	}
	return Result(o)
}
