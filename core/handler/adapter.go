package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrymomot/blueprint/pkg/async"
)

// ErrTimeout is returned (wrapped) when a callable adapted by Bounded
// does not finish in time.
var ErrTimeout = errors.New("handler timed out")

// Adapter normalizes callables to the execution model of an application.
// It is applied once per callable, when the callable is merged into the
// application's registries, never per request.
type Adapter interface {
	View(h HandlerFunc) HandlerFunc
	Before(f BeforeFunc) BeforeFunc
	After(f AfterFunc) AfterFunc
	Teardown(f TeardownFunc) TeardownFunc
	Error(h ErrorHandler) ErrorHandler
	FirstRequest(f FirstRequestFunc) FirstRequestFunc
}

// Direct returns the identity adapter: callables run inline on the request goroutine.
func Direct() Adapter { return direct{} }

type direct struct{}

func (direct) View(h HandlerFunc) HandlerFunc                   { return h }
func (direct) Before(f BeforeFunc) BeforeFunc                   { return f }
func (direct) After(f AfterFunc) AfterFunc                      { return f }
func (direct) Teardown(f TeardownFunc) TeardownFunc             { return f }
func (direct) Error(h ErrorHandler) ErrorHandler                { return h }
func (direct) FirstRequest(f FirstRequestFunc) FirstRequestFunc { return f }

// Bounded returns an adapter running every callable through async.Async and
// waiting at most timeout for it. Panics inside the callable are converted
// to errors instead of crashing the process. A non-positive timeout yields Direct.
//
// A view that times out has its context canceled with ErrTimeout as the
// cause, so it can stop early; it keeps running until it returns. Views get
// that context through ContextScoper when the Context implements it, so
// values stored with SetValue inside a bounded view stay local to the view.
// Hooks share the request context and are not canceled.
func Bounded(timeout time.Duration) Adapter {
	if timeout <= 0 {
		return Direct()
	}
	return bounded{timeout: timeout}
}

type bounded struct {
	timeout time.Duration
}

func (b bounded) View(h HandlerFunc) HandlerFunc {
	if h == nil {
		return nil
	}
	name := Name(h)
	return func(ctx Context) Response {
		vctx, cancel := scoped(ctx)
		timedOut := false
		defer func() {
			if timedOut {
				cancel(ErrTimeout)
			}
		}()

		resp, err := async.Async(vctx, vctx, func(_ context.Context, c Context) (Response, error) {
			return h(c), nil
		}).AwaitWithTimeout(b.timeout)
		if err != nil {
			timedOut = errors.Is(err, async.ErrTimeout)
			return failed(name, err)
		}
		return resp
	}
}

func (b bounded) Before(f BeforeFunc) BeforeFunc {
	if f == nil {
		return nil
	}
	name := Name(f)
	return func(ctx Context) Response {
		resp, err := async.Async(ctx, ctx, func(_ context.Context, c Context) (Response, error) {
			return f(c), nil
		}).AwaitWithTimeout(b.timeout)
		if err != nil {
			return failed(name, err)
		}
		return resp
	}
}

func (b bounded) After(f AfterFunc) AfterFunc {
	if f == nil {
		return nil
	}
	name := Name(f)
	return func(ctx Context, resp Response) Response {
		out, err := async.Async(ctx, resp, func(_ context.Context, r Response) (Response, error) {
			return f(ctx, r), nil
		}).AwaitWithTimeout(b.timeout)
		if err != nil {
			return failed(name, err)
		}
		return out
	}
}

func (b bounded) Teardown(f TeardownFunc) TeardownFunc {
	if f == nil {
		return nil
	}
	return func(ctx Context, err error) {
		// Teardown runs after the response is written; a late or failed
		// teardown has nothing left to report to.
		_ = async.Exec(context.WithoutCancel(ctx), err, func(_ context.Context, e error) error {
			f(ctx, e)
			return nil
		}).AwaitWithTimeout(b.timeout)
	}
}

func (b bounded) Error(h ErrorHandler) ErrorHandler {
	if h == nil {
		return nil
	}
	name := Name(h)
	return func(ctx Context, cause error) Response {
		resp, err := async.Async(context.WithoutCancel(ctx), cause, func(_ context.Context, e error) (Response, error) {
			return h(ctx, e), nil
		}).AwaitWithTimeout(b.timeout)
		if err != nil {
			return failed(name, errors.Join(cause, err))
		}
		return resp
	}
}

func (b bounded) FirstRequest(f FirstRequestFunc) FirstRequestFunc {
	if f == nil {
		return nil
	}
	return func(ctx context.Context) {
		_ = async.Exec(ctx, struct{}{}, func(c context.Context, _ struct{}) error {
			f(c)
			return nil
		}).AwaitWithTimeout(b.timeout)
	}
}

// ContextScoper is implemented by Context values that can be rebound to a
// narrower context.Context while keeping their concrete type.
type ContextScoper interface {
	WithContext(ctx context.Context) Context
}

// scoped derives a cancelable context for a single view call.
func scoped(ctx Context) (Context, context.CancelCauseFunc) {
	inner, cancel := context.WithCancelCause(ctx)
	if s, ok := ctx.(ContextScoper); ok {
		return s.WithContext(inner), cancel
	}
	return scopedContext{Context: ctx, ctx: inner}, cancel
}

// scopedContext overrides the cancellation and values of a Context.
type scopedContext struct {
	Context
	ctx context.Context
}

func (c scopedContext) Deadline() (time.Time, bool) { return c.ctx.Deadline() }
func (c scopedContext) Done() <-chan struct{}       { return c.ctx.Done() }
func (c scopedContext) Err() error                  { return c.ctx.Err() }
func (c scopedContext) Value(key any) any           { return c.ctx.Value(key) }

// failed turns an adapter failure into a response carrying the error,
// so the application's error handlers see it.
func failed(name string, err error) Response {
	if errors.Is(err, async.ErrTimeout) {
		err = &timeoutError{name: name}
	}
	return func(http.ResponseWriter, *http.Request) error {
		return err
	}
}

type timeoutError struct {
	name string
}

func (e *timeoutError) Error() string {
	if e.name == "" {
		return ErrTimeout.Error()
	}
	return fmt.Sprintf("%s: %s", ErrTimeout, e.name)
}

func (e *timeoutError) Unwrap() error { return ErrTimeout }

func (e *timeoutError) StatusCode() int { return http.StatusServiceUnavailable }
