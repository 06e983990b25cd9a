package async

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"
)

// Future represents the result of a computation running in its own goroutine.
type Future[T any] struct {
	result T
	err    error
	done   chan struct{}
}

// Go runs fn in a new goroutine and returns its Future.
// A panic inside fn completes the Future with a *PanicError.
// Abandoning a Future does not stop fn; cancel ctx for that.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				var zero T
				f.result = zero
				f.err = &PanicError{Value: r, Stack: debug.Stack()}
			}
		}()

		// Pre-cancelled contexts never reach fn
		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}

		f.result, f.err = fn(ctx)
	}()

	return f
}

// Done returns a channel closed when the computation finishes.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the computation finishes.
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.result, f.err
}

// AwaitContext waits for the computation or for ctx, whichever comes first.
// When ctx wins, the context error is returned and the computation keeps running.
func (f *Future[T]) AwaitContext(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// AwaitWithTimeout waits at most timeout for the computation.
// Returns ErrTimeout if the computation is still running after it.
func (f *Future[T]) AwaitWithTimeout(timeout time.Duration) (T, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-f.done:
		return f.result, f.err
	case <-timer.C:
		var zero T
		return zero, ErrTimeout
	}
}

// IsComplete reports whether the computation has finished without blocking.
func (f *Future[T]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// PanicError carries a value recovered from a panicking computation.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("async: recovered panic: %v", e.Value)
}

// Is makes errors.Is(err, ErrPanic) match any PanicError.
func (e *PanicError) Is(target error) bool {
	return target == ErrPanic
}
