package health_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/blueprint/app"
	"github.com/dmitrymomot/blueprint/core/health"
	"github.com/dmitrymomot/blueprint/core/logger"
)

func newApp(t *testing.T, checks ...health.Check) *app.App {
	t.Helper()
	a, err := app.New(app.WithConfig(app.Config{}), app.WithLogger(logger.Nop()))
	require.NoError(t, err)
	require.NoError(t, a.RegisterBlueprint(health.Blueprint(logger.Nop(), checks...)))
	return a
}

func get(a http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestProbes(t *testing.T) {
	t.Parallel()

	a := newApp(t)

	resp := get(a, "/health/live")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "ALIVE", resp.Body.String())

	resp = get(a, "/health/ready")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "READY", resp.Body.String())

	resp = get(a, "/health/ping")
	assert.Equal(t, http.StatusNoContent, resp.Code)

	u, err := a.URLFor("health.ready", nil)
	require.NoError(t, err)
	assert.Equal(t, "/health/ready", u)
}

func TestReadinessFailure(t *testing.T) {
	t.Parallel()

	down := func(context.Context) error { return errors.New("database down") }
	a := newApp(t, func(context.Context) error { return nil }, down)

	resp := get(a, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)

	resp = get(a, "/health/live")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestCheckCommand(t *testing.T) {
	t.Parallel()

	a := newApp(t)
	var out bytes.Buffer
	a.CLI().SetOut(&out)
	require.NoError(t, a.Execute(context.Background(), "health", "check"))
	assert.Equal(t, "READY\n", out.String())

	failing := newApp(t, func(context.Context) error { return errors.New("cache down") })
	failing.CLI().SetOut(&bytes.Buffer{})
	failing.CLI().SetErr(&bytes.Buffer{})
	err := failing.Execute(context.Background(), "health", "check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache down")
}
