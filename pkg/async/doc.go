// Package async runs a computation in its own goroutine and lets the caller
// race its completion against a context or a timeout.
//
// Go starts the function and returns a *Future. The caller waits with Await,
// AwaitContext or AwaitWithTimeout, or polls with IsComplete. Giving up on a
// Future only stops the waiting: the computation itself keeps running until
// it returns or observes the cancellation of the context it was given.
//
// Panics inside the computation are recovered and surface as *PanicError,
// which matches ErrPanic under errors.Is.
//
// # Usage
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	defer cancel()
//
//	f := async.Go(ctx, func(ctx context.Context) (string, error) {
//	    return fetchTranslation(ctx, "serendipity")
//	})
//
//	res, err := f.AwaitContext(ctx)
//	if errors.Is(err, context.DeadlineExceeded) {
//	    // stopped waiting, fetchTranslation still sees ctx.Done()
//	}
package async
