package response_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/blueprint/core/handler"
	"github.com/dmitrymomot/blueprint/core/response"
)

func render(t *testing.T, resp handler.Response, method string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(method, "/", nil)
	require.NoError(t, resp(w, r))
	return w
}

func TestString(t *testing.T) {
	t.Parallel()

	w := render(t, response.String("hello"), http.MethodGet)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "hello", w.Body.String())

	t.Run("head_has_no_body", func(t *testing.T) {
		t.Parallel()
		w := render(t, response.String("hello"), http.MethodHead)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("zero_status_means_ok", func(t *testing.T) {
		t.Parallel()
		w := render(t, response.StringWithStatus("x", 0), http.MethodGet)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestHTMLAndStatus(t *testing.T) {
	t.Parallel()

	w := render(t, response.HTMLWithStatus("<p>gone</p>", http.StatusGone), http.MethodGet)
	assert.Equal(t, http.StatusGone, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "<p>gone</p>", w.Body.String())

	w = render(t, response.NoContent(), http.MethodGet)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = render(t, response.Bytes([]byte{1, 2}, "application/octet-stream"), http.MethodGet)
	assert.Equal(t, []byte{1, 2}, w.Body.Bytes())
}

func TestJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		value  any
		status int
		code   int
		body   string
	}{
		{name: "object", value: map[string]int{"a": 1}, status: http.StatusCreated, code: http.StatusCreated, body: "{\"a\":1}\n"},
		{name: "nil_with_zero_status", value: nil, status: 0, code: http.StatusNoContent, body: ""},
		{name: "nil_with_ok_status", value: nil, status: http.StatusOK, code: http.StatusOK, body: "null\n"},
		{name: "not_modified", value: "x", status: http.StatusNotModified, code: http.StatusNotModified, body: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := render(t, response.JSONWithStatus(tt.value, tt.status), http.MethodGet)
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.body, w.Body.String())
			assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
		})
	}
}

func TestRedirect(t *testing.T) {
	t.Parallel()

	w := render(t, response.Redirect("/login"), http.MethodGet)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = render(t, response.RedirectPermanent("/new"), http.MethodGet)
	assert.Equal(t, http.StatusMovedPermanently, w.Code)

	w = render(t, response.RedirectWithStatus("/x", http.StatusOK), http.MethodGet)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestDecorators(t *testing.T) {
	t.Parallel()

	t.Run("headers", func(t *testing.T) {
		t.Parallel()
		resp := response.WithHeaders(response.String("ok"), map[string]string{"X-Blueprint": "admin"})
		w := render(t, resp, http.MethodGet)
		assert.Equal(t, "admin", w.Header().Get("X-Blueprint"))
	})

	t.Run("cache", func(t *testing.T) {
		t.Parallel()
		w := render(t, response.WithCache(response.String("ok"), time.Hour), http.MethodGet)
		assert.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))
		assert.NotEmpty(t, w.Header().Get("Expires"))
	})

	t.Run("no_cache", func(t *testing.T) {
		t.Parallel()
		w := render(t, response.WithCache(response.String("ok"), 0), http.MethodGet)
		assert.Equal(t, "no-cache, no-store, must-revalidate", w.Header().Get("Cache-Control"))
		assert.Equal(t, "no-cache", w.Header().Get("Pragma"))
	})

	t.Run("nil_passthrough", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, response.WithCache(nil, time.Hour))
		assert.Nil(t, response.WithHeaders(nil, map[string]string{"a": "b"}))
	})
}

func TestError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	err := response.Error(boom)(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, boom)
}

type statusError struct{ code int }

func (e statusError) Error() string   { return fmt.Sprintf("status %d", e.code) }
func (e statusError) StatusCode() int { return e.code }

func TestHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("customized_copy_is_same_error", func(t *testing.T) {
		t.Parallel()
		err := response.ErrNotFound.WithMessage("no such user")
		assert.ErrorIs(t, err, response.ErrNotFound)
		assert.NotErrorIs(t, err, response.ErrForbidden)
		assert.Equal(t, http.StatusNotFound, err.StatusCode())
	})

	t.Run("with_error_keeps_cause", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("db down")
		err := response.ErrServiceUnavailable.WithError(cause)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "db down", err.Details["cause"])
		assert.Nil(t, response.ErrServiceUnavailable.Details)
	})

	t.Run("wrapped", func(t *testing.T) {
		t.Parallel()
		err := fmt.Errorf("loading: %w", response.ErrConflict)
		assert.ErrorIs(t, err, response.ErrConflict)
	})
}

func TestAsHTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "http_error", err: response.ErrForbidden, status: http.StatusForbidden, code: "forbidden"},
		{name: "wrapped_http_error", err: fmt.Errorf("x: %w", response.ErrGone), status: http.StatusGone, code: "gone"},
		{name: "status_code_error", err: statusError{code: http.StatusTooManyRequests}, status: http.StatusTooManyRequests, code: "too_many_requests"},
		{name: "unlisted_status", err: statusError{code: http.StatusTeapot}, status: http.StatusTeapot, code: "error"},
		{name: "unknown_status", err: statusError{code: 999}, status: http.StatusInternalServerError, code: "internal_server_error"},
		{name: "plain_error", err: errors.New("boom"), status: http.StatusInternalServerError, code: "internal_server_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			httpErr := response.AsHTTPError(tt.err)
			assert.Equal(t, tt.status, httpErr.Status)
			assert.Equal(t, tt.code, httpErr.Code)
		})
	}
}

func TestErrorHandlers(t *testing.T) {
	t.Parallel()

	t.Run("plain_text", func(t *testing.T) {
		t.Parallel()
		w := render(t, response.ErrorHandler(nil, response.ErrNotFound), http.MethodGet)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Not Found", w.Body.String())
	})

	t.Run("plain_text_hides_internal_message", func(t *testing.T) {
		t.Parallel()
		w := render(t, response.ErrorHandler(nil, errors.New("secret dsn")), http.MethodGet)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "secret")
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		err := response.ErrUnprocessableEntity.WithDetails(map[string]any{"field": "email"})
		w := render(t, response.JSONErrorHandler(nil, err), http.MethodGet)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "unprocessable_entity", body["code"])
		assert.Equal(t, map[string]any{"field": "email"}, body["details"])
	})

	t.Run("json_drops_details_of_server_errors", func(t *testing.T) {
		t.Parallel()
		w := render(t, response.JSONErrorHandler(nil, errors.New("secret dsn")), http.MethodGet)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "secret")
	})
}
