package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/blueprint/core/handler"
	"github.com/dmitrymomot/blueprint/pkg/async"
)

type stubContext struct {
	context.Context
	w http.ResponseWriter
	r *http.Request
}

func newStubContext() *stubContext {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	return &stubContext{Context: r.Context(), w: httptest.NewRecorder(), r: r}
}

func (c *stubContext) Request() *http.Request              { return c.r }
func (c *stubContext) ResponseWriter() http.ResponseWriter { return c.w }
func (c *stubContext) Param(string) string                 { return "" }
func (c *stubContext) SetValue(any, any)                   {}
func (c *stubContext) Endpoint() string                    { return "stub" }
func (c *stubContext) Blueprint() string                   { return "" }
func (c *stubContext) ViewArgs() map[string]any            { return nil }

func render(t *testing.T, resp handler.Response) error {
	t.Helper()
	require.NotNil(t, resp)
	return resp(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func ok(handler.Context) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		w.WriteHeader(http.StatusOK)
		return nil
	}
}

func TestDirectIsIdentity(t *testing.T) {
	t.Parallel()

	a := handler.Direct()
	h := a.View(ok)
	assert.Equal(t, handler.Name(ok), handler.Name(h))
	assert.Nil(t, a.Before(nil))
}

func TestBoundedNonPositiveTimeoutIsDirect(t *testing.T) {
	t.Parallel()

	a := handler.Bounded(0)
	assert.Equal(t, handler.Name(ok), handler.Name(a.View(ok)))
}

func TestBoundedView(t *testing.T) {
	t.Parallel()

	a := handler.Bounded(time.Second)
	h := a.View(ok)
	assert.NoError(t, render(t, h(newStubContext())))
}

func TestBoundedViewTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)

	slow := func(handler.Context) handler.Response {
		<-release
		return nil
	}

	h := handler.Bounded(10 * time.Millisecond).View(slow)
	err := render(t, h(newStubContext()))
	require.Error(t, err)
	assert.ErrorIs(t, err, handler.ErrTimeout)

	var sc interface{ StatusCode() int }
	require.ErrorAs(t, err, &sc)
	assert.Equal(t, http.StatusServiceUnavailable, sc.StatusCode())
}

func TestBoundedViewTimeoutCancelsView(t *testing.T) {
	t.Parallel()

	stopped := make(chan error, 1)
	slow := func(ctx handler.Context) handler.Response {
		select {
		case <-ctx.Done():
			stopped <- context.Cause(ctx)
		case <-time.After(2 * time.Second):
			stopped <- nil
		}
		return nil
	}

	parent := newStubContext()
	h := handler.Bounded(10 * time.Millisecond).View(slow)
	require.ErrorIs(t, render(t, h(parent)), handler.ErrTimeout)

	select {
	case cause := <-stopped:
		assert.ErrorIs(t, cause, handler.ErrTimeout)
	case <-time.After(time.Second):
		t.Fatal("view context was not canceled")
	}
	assert.NoError(t, parent.Err())
}

func TestBoundedViewPanic(t *testing.T) {
	t.Parallel()

	boom := func(handler.Context) handler.Response { panic("boom") }

	h := handler.Bounded(time.Second).View(boom)
	err := render(t, h(newStubContext()))
	assert.ErrorIs(t, err, async.ErrPanic)
}

func TestBoundedAfterAndBefore(t *testing.T) {
	t.Parallel()

	a := handler.Bounded(time.Second)

	before := a.Before(func(handler.Context) handler.Response { return nil })
	assert.Nil(t, before(newStubContext()))

	after := a.After(func(ctx handler.Context, resp handler.Response) handler.Response {
		return func(w http.ResponseWriter, r *http.Request) error {
			w.Header().Set("X-After", "1")
			return resp(w, r)
		}
	})

	rec := httptest.NewRecorder()
	resp := after(newStubContext(), ok(nil))
	require.NoError(t, resp(rec, httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Equal(t, "1", rec.Header().Get("X-After"))
}

func TestBoundedTeardownWaits(t *testing.T) {
	t.Parallel()

	var got error
	sentinel := errors.New("request failed")

	td := handler.Bounded(time.Second).Teardown(func(_ handler.Context, err error) {
		got = err
	})
	td(newStubContext(), sentinel)

	assert.ErrorIs(t, got, sentinel)
}

func TestBoundedErrorHandler(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("not found")
	eh := handler.Bounded(time.Second).Error(func(_ handler.Context, err error) handler.Response {
		return func(w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusTeapot)
			return nil
		}
	})

	rec := httptest.NewRecorder()
	resp := eh(newStubContext(), sentinel)
	require.NoError(t, resp(rec, httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
