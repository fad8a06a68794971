package blueprint

import (
	"fmt"
	"net/http"

	"github.com/dmitrymomot/blueprint/core/handler"
	"github.com/dmitrymomot/blueprint/core/registry"
	"github.com/dmitrymomot/blueprint/core/response"
	"github.com/dmitrymomot/blueprint/core/router"
)

// AddURLRule records a rule added on every registration of the blueprint,
// under the endpoint "<name>.<endpoint>". An empty endpoint is derived from
// the declared name of h, so anonymous functions need an explicit one.
// The declared name is only checked when it becomes the endpoint: with an
// explicit endpoint any function, closures included, is accepted.
// A nil h binds the rule to a view function registered with Endpoint.
//
// Panics at declaration time with a wrapped ErrInvalidEndpoint,
// ErrInvalidHandlerName or ErrNilHandler.
func (bp *Blueprint) AddURLRule(pattern, endpoint string, h handler.HandlerFunc, opts ...router.Option) {
	if registry.HasSeparator(endpoint) {
		panic(fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint))
	}
	if endpoint == "" {
		endpoint = endpointOf(h)
	}
	bp.Record(func(state *SetupState) {
		state.AddURLRule(pattern, endpoint, h, opts...)
	})
}

// Endpoint registers h as the view function of a local endpoint, for rules
// added without a handler. Panics with a wrapped ErrInvalidEndpoint when
// endpoint contains a dot.
func (bp *Blueprint) Endpoint(endpoint string, h handler.HandlerFunc) {
	if registry.HasSeparator(endpoint) {
		panic(fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint))
	}
	bp.Scaffold.Endpoint(endpoint, h)
}

// Route adds a rule whose endpoint is the declared name of h.
func (bp *Blueprint) Route(pattern string, h handler.HandlerFunc, opts ...router.Option) {
	bp.AddURLRule(pattern, "", h, opts...)
}

// Get adds a GET rule whose endpoint is the declared name of h.
func (bp *Blueprint) Get(pattern string, h handler.HandlerFunc, opts ...router.Option) {
	bp.method(http.MethodGet, pattern, h, opts)
}

// Post adds a POST rule whose endpoint is the declared name of h.
func (bp *Blueprint) Post(pattern string, h handler.HandlerFunc, opts ...router.Option) {
	bp.method(http.MethodPost, pattern, h, opts)
}

// Put adds a PUT rule whose endpoint is the declared name of h.
func (bp *Blueprint) Put(pattern string, h handler.HandlerFunc, opts ...router.Option) {
	bp.method(http.MethodPut, pattern, h, opts)
}

// Patch adds a PATCH rule whose endpoint is the declared name of h.
func (bp *Blueprint) Patch(pattern string, h handler.HandlerFunc, opts ...router.Option) {
	bp.method(http.MethodPatch, pattern, h, opts)
}

// Delete adds a DELETE rule whose endpoint is the declared name of h.
func (bp *Blueprint) Delete(pattern string, h handler.HandlerFunc, opts ...router.Option) {
	bp.method(http.MethodDelete, pattern, h, opts)
}

func (bp *Blueprint) method(method, pattern string, h handler.HandlerFunc, opts []router.Option) {
	all := make([]router.Option, 0, len(opts)+1)
	all = append(all, router.WithMethods(method))
	all = append(all, opts...)
	bp.AddURLRule(pattern, "", h, all...)
}

// SendStaticFile serves the "filename" route value from the static folder.
// It is the view of the blueprint's "static" endpoint.
func (bp *Blueprint) SendStaticFile(ctx handler.Context) handler.Response {
	if bp.static == nil {
		return response.Error(fmt.Errorf("%w: %s", ErrNoStaticFolder, bp.name))
	}
	return bp.static(ctx)
}
