package handler

import (
	"context"
	"net/http"
)

// Response is a function that renders HTTP responses.
// It sets headers, status code, and writes the response body.
// Rendering errors are handled by the application's error handlers.
type Response func(w http.ResponseWriter, r *http.Request) error

// HandlerFunc is a view function bound to an endpoint.
type HandlerFunc func(ctx Context) Response

// ErrorHandler converts an error raised while handling a request into a response.
// Returning nil falls back to the default error handler of the application.
type ErrorHandler func(ctx Context, err error) Response

// BeforeFunc runs before the view. A non-nil response stops the dispatch
// and is used as the final response.
type BeforeFunc func(ctx Context) Response

// AfterFunc runs after the view and may wrap or replace the response.
type AfterFunc func(ctx Context, resp Response) Response

// TeardownFunc runs when the request is finished, even on failure.
// err is the error that ended the request, nil otherwise.
type TeardownFunc func(ctx Context, err error)

// FirstRequestFunc runs once, before the first request served by the application.
type FirstRequestFunc func(ctx context.Context)

// URLDefaultFunc fills values before a URL is built for endpoint.
// It mutates values in place.
type URLDefaultFunc func(endpoint string, values map[string]any)

// URLValuePreprocessor inspects or rewrites the matched view arguments
// before any before-request hook runs.
type URLValuePreprocessor func(endpoint string, values map[string]any)

// ContextProcessor returns values injected into every rendered template.
type ContextProcessor func(ctx Context) map[string]any
