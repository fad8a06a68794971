package app_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/blueprint/app"
	"github.com/dmitrymomot/blueprint/core/handler"
	"github.com/dmitrymomot/blueprint/core/logger"
	"github.com/dmitrymomot/blueprint/core/response"
)

func newTestApp(t *testing.T, opts ...app.Option) *app.App {
	t.Helper()
	base := []app.Option{
		app.WithConfig(app.Config{}),
		app.WithLogger(logger.Nop()),
	}
	a, err := app.New(append(base, opts...)...)
	require.NoError(t, err)
	return a
}

func do(a http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func get(a http.Handler, target string) *httptest.ResponseRecorder {
	return do(a, http.MethodGet, target)
}

func index(handler.Context) handler.Response {
	return response.String("index")
}

func about(handler.Context) handler.Response {
	return response.String("about")
}

func showUser(ctx handler.Context) handler.Response {
	return response.String("user " + ctx.Param("id"))
}

func whoami(ctx handler.Context) handler.Response {
	return response.String(ctx.Blueprint() + "|" + ctx.Endpoint())
}

// recoverErr runs fn and returns the error it panicked with.
func recoverErr(fn func()) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err, _ = v.(error)
		}
	}()
	fn()
	return nil
}
