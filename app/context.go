package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/blueprint/core/handler"
	"github.com/dmitrymomot/blueprint/core/registry"
)

var (
	_ handler.Context       = (*Context)(nil)
	_ handler.ContextScoper = (*Context)(nil)
)

type requestIDKey struct{}

// RequestID returns the request ID stored in ctx, or an empty string.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func requestIDAttr(ctx context.Context) (slog.Attr, bool) {
	id := RequestID(ctx)
	return slog.String("request_id", id), id != ""
}

// Context is the request context handed to every callable. It delegates
// cancellation and values to the request's context.
type Context struct {
	app      *App
	w        http.ResponseWriter
	r        *http.Request
	endpoint string
	params   map[string]string
	viewArgs map[string]any
}

func newContext(a *App, w http.ResponseWriter, r *http.Request) *Context {
	return &Context{app: a, w: w, r: r}
}

// Deadline returns the time when work done on behalf of this context should be canceled.
func (c *Context) Deadline() (deadline time.Time, ok bool) {
	return c.r.Context().Deadline()
}

// Done returns a channel that's closed when work done on behalf of this context should be canceled.
func (c *Context) Done() <-chan struct{} {
	return c.r.Context().Done()
}

// Err returns a non-nil error value after Done is closed.
func (c *Context) Err() error {
	return c.r.Context().Err()
}

// Value returns the value associated with this context for key, or nil if no value is associated with key.
func (c *Context) Value(key any) any {
	return c.r.Context().Value(key)
}

// SetValue stores a value in the request's context.
func (c *Context) SetValue(key, val any) {
	c.r = c.r.WithContext(context.WithValue(c.r.Context(), key, val))
}

// WithContext returns a copy of c bound to ctx. The copy shares the
// response writer and route state; values set on it stay local.
func (c *Context) WithContext(ctx context.Context) handler.Context {
	cp := *c
	cp.r = c.r.WithContext(ctx)
	return &cp
}

// Request returns the HTTP request associated with this context.
func (c *Context) Request() *http.Request {
	return c.r
}

// ResponseWriter returns the HTTP response writer associated with this context.
func (c *Context) ResponseWriter() http.ResponseWriter {
	return c.w
}

// Param returns the view argument key as a string. View arguments hold the
// matched URL values, the rule defaults and anything URL value
// preprocessors put there.
func (c *Context) Param(key string) string {
	if v, ok := c.viewArgs[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}
	return c.params[key]
}

// Endpoint returns the endpoint of the matched rule.
func (c *Context) Endpoint() string {
	return c.endpoint
}

// Blueprint returns the blueprint owning the matched endpoint.
func (c *Context) Blueprint() string {
	if i := strings.LastIndex(c.endpoint, registry.Separator); i >= 0 {
		return c.endpoint[:i]
	}
	return registry.AppScope
}

// ViewArgs returns the view arguments. The map is shared with the
// dispatcher: changes are seen by the view.
func (c *Context) ViewArgs() map[string]any {
	return c.viewArgs
}

// RequestID returns the ID of the current request.
func (c *Context) RequestID() string {
	return RequestID(c)
}

// App returns the application serving the request.
func (c *Context) App() *App {
	return c.app
}

// URLFor builds a URL for endpoint. An endpoint starting with a dot is
// relative to the blueprint of the current request: ".index" in a request
// handled by "admin" resolves to "admin.index".
func (c *Context) URLFor(endpoint string, values map[string]any) (string, error) {
	if strings.HasPrefix(endpoint, registry.Separator) {
		if bp := c.Blueprint(); bp != "" {
			endpoint = bp + endpoint
		} else {
			endpoint = endpoint[1:]
		}
	}
	return c.app.URLFor(endpoint, values)
}

// Render renders the template name with data, see App.Render.
func (c *Context) Render(name string, data map[string]any) handler.Response {
	return c.app.Render(c, name, data)
}

// scopes returns the registry scopes consulted for the current request,
// application first.
func (c *Context) scopes() []string {
	if bp := c.Blueprint(); bp != "" {
		return []string{registry.AppScope, bp}
	}
	return []string{registry.AppScope}
}
