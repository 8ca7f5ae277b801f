package youversion

import (
	"context"
	"fmt"
)

// PanicError is what Await panics with when the call itself panicked.
// Value is the original panic value.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("youversion: async call panicked: %v", e.Value)
}

// Unwrap returns Value when it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// Future is the pending outcome of one AsyncClient call.
type Future[T any] struct {
	done     chan struct{}
	val      T
	err      error
	panicked any
}

// spawn runs fn on its own goroutine. fn performs exactly one round trip.
func spawn[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.panicked = r
			}
		}()
		f.val, f.err = fn(ctx)
	}()
	return f
}

// Done is closed once the call has finished.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Await blocks until the call finishes or ctx is done. Giving up on Await
// does not stop the call; cancel the context passed to the originating
// method for that. A panic inside the call is re-raised here as *PanicError.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		if f.panicked != nil {
			panic(&PanicError{Value: f.panicked})
		}
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
