// Package async runs functions on their own goroutine and exposes the result
// as a Future with timeout support.
//
// It backs the bounded execution model of the handler package: a callable is
// started with Async (or Exec when only an error matters) and awaited with
// AwaitWithTimeout.
//
//	future := async.Async(ctx, 123, fetchUser)
//	user, err := future.AwaitWithTimeout(50 * time.Millisecond)
//	if errors.Is(err, async.ErrTimeout) {
//		log.Println("operation timed out")
//	}
//
// Panics inside the function are recovered and surface as errors wrapping
// ErrPanic. If the context is cancelled before the function starts, the
// future completes immediately with the context's error.
package async
