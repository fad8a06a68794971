package app_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/blueprint/app"
	"github.com/dmitrymomot/blueprint/core/blueprint"
	"github.com/dmitrymomot/blueprint/core/handler"
	"github.com/dmitrymomot/blueprint/core/registry"
	"github.com/dmitrymomot/blueprint/core/response"
	"github.com/dmitrymomot/blueprint/core/router"
)

var errBoom = errors.New("boom")

func TestDispatchOrder(t *testing.T) {
	t.Parallel()

	var calls []string
	rec := func(name string) { calls = append(calls, name) }

	bp := blueprint.New("admin", "example.com/admin", blueprint.WithURLPrefix("/admin"))
	bp.AddURLRule("/", "index", func(handler.Context) handler.Response {
		rec("view")
		return response.String("ok")
	})
	bp.URLValuePreprocessor(func(string, map[string]any) { rec("bp preprocess") })
	bp.BeforeRequest(func(handler.Context) handler.Response {
		rec("bp before")
		return nil
	})
	bp.AfterRequest(func(_ handler.Context, resp handler.Response) handler.Response {
		rec("bp after 1")
		return resp
	})
	bp.AfterRequest(func(_ handler.Context, resp handler.Response) handler.Response {
		rec("bp after 2")
		return resp
	})
	bp.TeardownRequest(func(handler.Context, error) { rec("bp teardown") })

	a := newTestApp(t)
	a.URLValuePreprocessor(func(string, map[string]any) { rec("app preprocess") })
	a.BeforeRequest(func(handler.Context) handler.Response {
		rec("app before")
		return nil
	})
	a.AfterRequest(func(_ handler.Context, resp handler.Response) handler.Response {
		rec("app after")
		return resp
	})
	a.TeardownRequest(func(handler.Context, error) { rec("app teardown 1") })
	a.TeardownRequest(func(handler.Context, error) { rec("app teardown 2") })
	require.NoError(t, a.RegisterBlueprint(bp))

	resp := get(a, "/admin/")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{
		"app preprocess",
		"bp preprocess",
		"app before",
		"bp before",
		"view",
		"bp after 2",
		"bp after 1",
		"app after",
		"app teardown 2",
		"app teardown 1",
		"bp teardown",
	}, calls)
}

func TestBlueprintHooksStayScoped(t *testing.T) {
	t.Parallel()

	var bpHits, appHits int
	bp := blueprint.New("admin", "example.com/admin", blueprint.WithURLPrefix("/admin"))
	bp.Get("/", index)
	bp.BeforeRequest(func(handler.Context) handler.Response {
		bpHits++
		return nil
	})
	bp.BeforeAppRequest(func(handler.Context) handler.Response {
		appHits++
		return nil
	})

	a := newTestApp(t)
	a.Get("/", about)
	require.NoError(t, a.RegisterBlueprint(bp))

	get(a, "/")
	assert.Equal(t, 0, bpHits)
	assert.Equal(t, 1, appHits)

	get(a, "/admin/")
	assert.Equal(t, 1, bpHits)
	assert.Equal(t, 2, appHits)
}

func TestBeforeRequestShortCircuits(t *testing.T) {
	t.Parallel()

	var viewCalled, afterCalled bool
	a := newTestApp(t)
	a.AddURLRule("/", "index", func(handler.Context) handler.Response {
		viewCalled = true
		return response.String("view")
	}, router.Options{})
	a.BeforeRequest(func(handler.Context) handler.Response {
		return response.StringWithStatus("denied", http.StatusForbidden)
	})
	a.BeforeRequest(func(handler.Context) handler.Response {
		t.Error("second before hook must not run")
		return nil
	})
	a.AfterRequest(func(_ handler.Context, resp handler.Response) handler.Response {
		afterCalled = true
		return response.WithHeaders(resp, map[string]string{"X-After": "yes"})
	})

	resp := get(a, "/")
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "denied", resp.Body.String())
	assert.Equal(t, "yes", resp.Header().Get("X-After"))
	assert.False(t, viewCalled)
	assert.True(t, afterCalled)
}

func TestRoutingErrors(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	a.Get("/", index)

	t.Run("not found", func(t *testing.T) {
		resp := get(a, "/missing")
		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, http.StatusText(http.StatusNotFound), resp.Body.String())
	})

	t.Run("method not allowed", func(t *testing.T) {
		resp := do(a, http.MethodPost, "/")
		assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)
		assert.Equal(t, "GET, HEAD, OPTIONS", resp.Header().Get("Allow"))
	})

	t.Run("automatic options", func(t *testing.T) {
		resp := do(a, http.MethodOptions, "/")
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "GET, HEAD, OPTIONS", resp.Header().Get("Allow"))
		assert.Empty(t, resp.Body.String())
	})

	t.Run("head served by get rule", func(t *testing.T) {
		resp := do(a, http.MethodHead, "/")
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Empty(t, resp.Body.String())
	})
}

func TestErrorHandlers(t *testing.T) {
	t.Parallel()

	failing := func(handler.Context) handler.Response {
		return response.Error(errBoom)
	}

	bp := blueprint.New("api", "example.com/api", blueprint.WithURLPrefix("/api"))
	bp.AddURLRule("/fail", "fail", failing)
	bp.RegisterErrorHandler(errBoom, func(_ handler.Context, err error) handler.Response {
		return response.StringWithStatus("api: "+err.Error(), http.StatusBadGateway)
	})

	a := newTestApp(t)
	a.AddURLRule("/fail", "fail", failing, router.Options{})
	a.RegisterErrorHandler(errBoom, func(_ handler.Context, err error) handler.Response {
		return response.StringWithStatus("app: "+err.Error(), http.StatusTeapot)
	})
	a.RegisterErrorHandler(http.StatusNotFound, func(ctx handler.Context, _ error) handler.Response {
		return response.StringWithStatus("nothing at "+ctx.Request().URL.Path, http.StatusNotFound)
	})
	require.NoError(t, a.RegisterBlueprint(bp))

	t.Run("blueprint handler wins for its endpoints", func(t *testing.T) {
		resp := get(a, "/api/fail")
		assert.Equal(t, http.StatusBadGateway, resp.Code)
		assert.Equal(t, "api: boom", resp.Body.String())
	})

	t.Run("application handler elsewhere", func(t *testing.T) {
		resp := get(a, "/fail")
		assert.Equal(t, http.StatusTeapot, resp.Code)
		assert.Equal(t, "app: boom", resp.Body.String())
	})

	t.Run("status code handler for routing errors", func(t *testing.T) {
		resp := get(a, "/nowhere")
		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, "nothing at /nowhere", resp.Body.String())
	})
}

func TestErrorHandlerReturningNil(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	a.AddURLRule("/", "index", func(handler.Context) handler.Response {
		return response.Error(response.ErrConflict)
	}, router.Options{})
	a.RegisterErrorHandler(http.StatusConflict, func(handler.Context, error) handler.Response { return nil })

	resp := get(a, "/")
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, http.StatusText(http.StatusConflict), resp.Body.String())
}

func TestDefaultErrorHandler(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, app.WithDefaultErrorHandler(response.JSONErrorHandler))
	resp := get(a, "/missing")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Header().Get("Content-Type"), "application/json")
	assert.Contains(t, resp.Body.String(), `"not_found"`)
}

func TestPanicRecovery(t *testing.T) {
	t.Parallel()

	t.Run("default handler", func(t *testing.T) {
		t.Parallel()
		a := newTestApp(t)
		a.AddURLRule("/", "index", func(handler.Context) handler.Response {
			panic("kaboom")
		}, router.Options{})

		resp := get(a, "/")
		assert.Equal(t, http.StatusInternalServerError, resp.Code)
	})

	t.Run("handler for panics", func(t *testing.T) {
		t.Parallel()
		a := newTestApp(t)
		a.AddURLRule("/", "index", func(handler.Context) handler.Response {
			panic(errBoom)
		}, router.Options{})

		var recovered any
		a.RegisterErrorHandler(registry.ErrorType[app.PanicError](), func(_ handler.Context, err error) handler.Response {
			var pe app.PanicError
			require.True(t, errors.As(err, &pe))
			recovered = pe.Value()
			assert.NotEmpty(t, pe.Stack())
			return response.StringWithStatus("recovered", http.StatusInternalServerError)
		})

		resp := get(a, "/")
		assert.Equal(t, http.StatusInternalServerError, resp.Code)
		assert.Equal(t, "recovered", resp.Body.String())
		assert.Equal(t, errBoom, recovered)
	})

	t.Run("panicking after hook", func(t *testing.T) {
		t.Parallel()
		a := newTestApp(t)
		a.Get("/", index)
		a.AfterRequest(func(handler.Context, handler.Response) handler.Response {
			panic("after")
		})

		resp := get(a, "/")
		assert.Equal(t, http.StatusInternalServerError, resp.Code)
	})

	t.Run("panicking teardown", func(t *testing.T) {
		t.Parallel()
		a := newTestApp(t)
		a.Get("/", index)
		a.TeardownRequest(func(handler.Context, error) { panic("teardown") })

		resp := get(a, "/")
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "index", resp.Body.String())
	})
}

func TestViewErrors(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	a.AddURLRule("/nil", "nil", func(handler.Context) handler.Response { return nil }, router.Options{})

	var teardownErr error
	a.TeardownRequest(func(_ handler.Context, err error) { teardownErr = err })

	resp := get(a, "/nil")
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.ErrorIs(t, teardownErr, app.ErrNilResponse)
}

func TestTeardownSeesError(t *testing.T) {
	t.Parallel()

	var teardownErr error
	a := newTestApp(t)
	a.AddURLRule("/", "index", func(handler.Context) handler.Response {
		return response.Error(errBoom)
	}, router.Options{})
	a.Get("/ok", about)
	a.TeardownRequest(func(_ handler.Context, err error) { teardownErr = err })

	get(a, "/")
	assert.ErrorIs(t, teardownErr, errBoom)

	get(a, "/ok")
	assert.NoError(t, teardownErr)
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	var seen string
	a := newTestApp(t)
	a.AddURLRule("/", "index", func(ctx handler.Context) handler.Response {
		seen = app.RequestID(ctx)
		return response.NoContent()
	}, router.Options{})

	resp := get(a, "/")
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, resp.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, req)
	assert.Equal(t, "abc", seen)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
}

func TestBeforeFirstRequest(t *testing.T) {
	t.Parallel()

	var appRuns, bpRuns atomic.Int32
	bp := blueprint.New("admin", "example.com/admin")
	bp.BeforeAppFirstRequest(func(context.Context) { bpRuns.Add(1) })

	a := newTestApp(t)
	a.Get("/", index)
	a.BeforeFirstRequest(func(context.Context) { appRuns.Add(1) })
	require.NoError(t, a.RegisterBlueprint(bp))
	require.NoError(t, a.RegisterBlueprint(bp, blueprint.MountPrefix("/again")))

	for range 3 {
		get(a, "/")
	}
	assert.Equal(t, int32(1), appRuns.Load())
	assert.Equal(t, int32(1), bpRuns.Load())
}

func TestViewArgs(t *testing.T) {
	t.Parallel()

	bp := blueprint.New("shop", "example.com/shop", blueprint.WithURLPrefix("/{lang}/shop"))
	bp.AddURLRule("/items/{id}", "item", func(ctx handler.Context) handler.Response {
		args := ctx.ViewArgs()
		return response.String(ctx.Param("id") + " " + args["lang"].(string) + " " + ctx.Param("page"))
	}, router.WithDefaults(map[string]any{"page": 1}))
	bp.URLValuePreprocessor(func(_ string, values map[string]any) {
		values["lang"] = "lang:" + values["lang"].(string)
	})

	a := newTestApp(t)
	require.NoError(t, a.RegisterBlueprint(bp))

	resp := get(a, "/de/shop/items/42")
	assert.Equal(t, "42 lang:de 1", resp.Body.String())
}

func TestBoundedAdapter(t *testing.T) {
	t.Parallel()

	canceled := make(chan error, 1)
	a := newTestApp(t, app.WithAdapter(handler.Bounded(20*time.Millisecond)))
	a.AddURLRule("/slow", "slow", func(ctx handler.Context) handler.Response {
		_, isAppContext := ctx.(*app.Context)
		select {
		case <-ctx.Done():
			if isAppContext {
				canceled <- context.Cause(ctx)
			} else {
				canceled <- errors.New("view lost its concrete context type")
			}
		case <-time.After(2 * time.Second):
			canceled <- nil
		}
		return response.String("late")
	}, router.Options{})
	a.Get("/", index)

	assert.Equal(t, "index", get(a, "/").Body.String())
	assert.Equal(t, http.StatusServiceUnavailable, get(a, "/slow").Code)

	select {
	case cause := <-canceled:
		assert.ErrorIs(t, cause, handler.ErrTimeout)
	case <-time.After(time.Second):
		t.Fatal("timed out view was not canceled")
	}
}

func TestSubdomain(t *testing.T) {
	t.Parallel()

	bp := blueprint.New("api", "example.com/api", blueprint.WithSubdomain("api"))
	bp.Get("/users", whoami)

	a := newTestApp(t, app.WithServerName("example.com"))
	a.Get("/users", index)
	require.NoError(t, a.RegisterBlueprint(bp))

	assert.Equal(t, "api|api.whoami", get(a, "http://api.example.com/users").Body.String())
	assert.Equal(t, "index", get(a, "http://example.com/users").Body.String())

	u, err := a.URLFor("api.whoami", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://api.example.com/users", u)
}

func TestConcurrentRequests(t *testing.T) {
	t.Parallel()

	bp := blueprint.New("admin", "example.com/admin", blueprint.WithURLPrefix("/admin"))
	bp.Get("/{id}", showUser)
	a := newTestApp(t)
	require.NoError(t, a.RegisterBlueprint(bp))

	srv := httptest.NewServer(a)
	t.Cleanup(srv.Close)

	errs := make(chan error, 20)
	for range 20 {
		go func() {
			resp, err := http.Get(srv.URL + "/admin/7")
			if err == nil {
				resp.Body.Close()
				if resp.StatusCode != http.StatusOK {
					err = errors.New(resp.Status)
				}
			}
			errs <- err
		}()
	}
	for range 20 {
		assert.NoError(t, <-errs)
	}
}
