package app

import (
	"context"
	"errors"
	"maps"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/blueprint/core/handler"
	"github.com/dmitrymomot/blueprint/core/logger"
	"github.com/dmitrymomot/blueprint/core/registry"
	"github.com/dmitrymomot/blueprint/core/response"
	"github.com/dmitrymomot/blueprint/core/router"
)

// ServeHTTP implements http.Handler. The first call seals the application.
//
// A request goes through, in order: routing, the URL value preprocessors,
// the before-request hooks (the first non-nil response stops the chain),
// the view, the after-request hooks, rendering and the teardown hooks.
// Errors at any step, including routing errors and panics, are handed to
// the error handlers of the blueprint first and of the application second.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.Seal()
	start := time.Now()

	id := r.Header.Get(a.config.RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(a.config.RequestIDHeader, id)
	r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))

	ww := newResponseWriter(w)
	c := newContext(a, ww, r)

	err := a.dispatch(c)
	a.teardown(c, err)

	a.metrics.observe(c, ww.Status(), time.Since(start))
	a.logger.DebugContext(c, "request served",
		logger.Method(r.Method),
		logger.Path(r.URL.Path),
		logger.Endpoint(c.endpoint),
		logger.StatusCode(ww.Status()),
		logger.Latency(time.Since(start)),
	)
}

// dispatch runs the request and writes the response. It returns the error
// that interrupted the request, if any, after it was handled.
func (a *App) dispatch(c *Context) error {
	resp, err := a.protect(func() (handler.Response, error) {
		return a.preprocess(c)
	})
	if err != nil {
		resp = a.handleError(c, err)
	}

	resp, afterErr := a.protect(func() (handler.Response, error) {
		return a.processResponse(c, resp), nil
	})
	if afterErr != nil {
		err = errors.Join(err, afterErr)
		resp = a.handleError(c, afterErr)
	}

	if renderErr := a.write(c, resp); renderErr != nil {
		err = errors.Join(err, renderErr)
	}
	return err
}

// preprocess routes the request, runs the preprocessors and the before
// hooks, then the view.
func (a *App) preprocess(c *Context) (handler.Response, error) {
	a.runFirstRequest(c)

	rule, params, err := a.rules.Match(c.r.Host, c.r.Method, c.r.URL.EscapedPath())
	if err != nil {
		var mna *router.MethodNotAllowedError
		if errors.As(err, &mna) && c.r.Method == http.MethodOptions {
			return defaultOptions(mna), nil
		}
		return nil, err
	}

	c.endpoint = rule.Endpoint
	c.params = params
	c.viewArgs = make(map[string]any, len(rule.Defaults)+len(params))
	maps.Copy(c.viewArgs, rule.Defaults)
	for k, v := range params {
		c.viewArgs[k] = v
	}

	scopes := c.scopes()
	for _, f := range a.reg.URLValuePreprocessors.Collect(scopes...) {
		f(c.endpoint, c.viewArgs)
	}
	for _, f := range a.reg.BeforeRequestFuncs.Collect(scopes...) {
		if resp := f(c); resp != nil {
			return resp, nil
		}
	}

	view := a.reg.ViewFunctions[c.endpoint]
	if view == nil {
		return nil, errorf(ErrNoView, c.endpoint)
	}
	resp := view(c)
	if resp == nil {
		return nil, errorf(ErrNilResponse, c.endpoint)
	}
	return resp, nil
}

// processResponse runs the after hooks of the blueprint, then those of the
// application, each in reverse registration order.
func (a *App) processResponse(c *Context, resp handler.Response) handler.Response {
	out := resp
	for _, scope := range afterScopes(c) {
		fs := a.reg.AfterRequestFuncs.Get(scope)
		for i := len(fs) - 1; i >= 0; i-- {
			if next := fs[i](c, out); next != nil {
				out = next
			}
		}
	}
	return out
}

func afterScopes(c *Context) []string {
	if bp := c.Blueprint(); bp != "" {
		return []string{bp, registry.AppScope}
	}
	return []string{registry.AppScope}
}

// teardown runs the teardown hooks of the application, then those of the
// blueprint, each in reverse registration order. Panics are logged.
func (a *App) teardown(c *Context, err error) {
	for _, scope := range c.scopes() {
		fs := a.reg.TeardownRequestFuncs.Get(scope)
		for i := len(fs) - 1; i >= 0; i-- {
			_, perr := a.protect(func() (handler.Response, error) {
				fs[i](c, err)
				return nil, nil
			})
			if perr != nil {
				a.logger.ErrorContext(c, "teardown failed", logger.Endpoint(c.endpoint), logger.Error(perr))
			}
		}
	}
}

// handleError finds the error handler for err, the blueprint's before the
// application's, and falls back to the default error handler.
func (a *App) handleError(c *Context, err error) handler.Response {
	a.logError(c, err)

	var mna *router.MethodNotAllowedError
	if errors.As(err, &mna) {
		c.w.Header().Set("Allow", allowHeader(mna))
	}

	scopes := []string{registry.AppScope}
	if bp := c.Blueprint(); bp != "" {
		scopes = []string{bp, registry.AppScope}
	}
	if h, ok := a.reg.ErrorHandlers.Find(err, scopes...); ok {
		resp, herr := a.protect(func() (handler.Response, error) {
			return h(c, err), nil
		})
		if herr != nil {
			a.logger.ErrorContext(c, "error handler failed", logger.Error(herr))
		} else if resp != nil {
			return resp
		}
	}
	return a.errorHandler(c, err)
}

func (a *App) logError(c *Context, err error) {
	status := response.AsHTTPError(err).Status
	if status < http.StatusInternalServerError {
		return
	}
	attrs := []any{logger.Endpoint(c.endpoint), logger.Error(err), logger.StatusCode(status)}
	var pe PanicError
	if errors.As(err, &pe) {
		attrs = append(attrs, logger.Stack(pe.Stack()))
	}
	a.logger.ErrorContext(c, "request failed", attrs...)
}

// write renders resp. An error raised before anything was written is
// handed to the error handlers; afterwards it can only be logged.
func (a *App) write(c *Context, resp handler.Response) error {
	err := a.render(c, resp)
	if err == nil {
		return nil
	}
	if c.w.(*responseWriter).Written() {
		a.logger.ErrorContext(c, "response failed after headers were sent",
			logger.Endpoint(c.endpoint),
			logger.Error(err),
		)
		return err
	}
	if rerr := a.render(c, a.handleError(c, err)); rerr != nil {
		a.logger.ErrorContext(c, "error response failed", logger.Error(rerr))
		if !c.w.(*responseWriter).Written() {
			http.Error(c.w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
	return err
}

func (a *App) render(c *Context, resp handler.Response) error {
	_, err := a.protect(func() (handler.Response, error) {
		return nil, resp(c.w, c.r)
	})
	return err
}

// protect runs fn and converts a panic into a PanicError.
func (a *App) protect(fn func() (handler.Response, error)) (resp handler.Response, err error) {
	defer func() {
		if v := recover(); v != nil {
			if v == http.ErrAbortHandler {
				panic(v)
			}
			resp, err = nil, &panicError{value: v, stack: debug.Stack()}
		}
	}()
	return fn()
}

func defaultOptions(mna *router.MethodNotAllowedError) handler.Response {
	return func(w http.ResponseWriter, _ *http.Request) error {
		w.Header().Set("Allow", allowHeader(mna))
		w.WriteHeader(http.StatusOK)
		return nil
	}
}

// allowHeader lists the allowed methods plus OPTIONS, which every path
// answers.
func allowHeader(mna *router.MethodNotAllowedError) string {
	allowed := slices.Clone(mna.Allowed)
	if !slices.Contains(allowed, http.MethodOptions) {
		allowed = append(allowed, http.MethodOptions)
		slices.Sort(allowed)
	}
	return strings.Join(allowed, ", ")
}

func errorf(sentinel error, endpoint string) error {
	return &endpointError{err: sentinel, endpoint: endpoint}
}

type endpointError struct {
	err      error
	endpoint string
}

func (e *endpointError) Error() string   { return e.err.Error() + ": " + e.endpoint }
func (e *endpointError) Unwrap() error   { return e.err }
func (e *endpointError) StatusCode() int { return http.StatusInternalServerError }
