package blueprint_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/blueprint/core/handler"
	"github.com/dmitrymomot/blueprint/core/response"
	"github.com/dmitrymomot/blueprint/core/router"
	"github.com/dmitrymomot/blueprint/core/scaffold"
	"github.com/dmitrymomot/blueprint/core/template"
)

// testApp is a minimal blueprint.App backed by the real rule map,
// scaffold and template environment.
type testApp struct {
	rules   *router.Map
	reg     *scaffold.Scaffold
	adapter *countingAdapter
	env     *template.Env
	root    *cobra.Command
	log     *slog.Logger
	first   []handler.FirstRequestFunc
}

func newTestApp(opts ...router.MapOption) *testApp {
	return &testApp{
		rules:   router.New(opts...),
		reg:     scaffold.New(nil),
		adapter: &countingAdapter{},
		env:     template.New(),
		root:    &cobra.Command{Use: "app"},
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (a *testApp) AddURLRule(pattern, endpoint string, h handler.HandlerFunc, o router.Options) {
	if _, err := a.rules.Add(pattern, endpoint, o); err != nil {
		panic(err)
	}
	if h != nil {
		a.reg.ViewFunctions[endpoint] = a.adapter.View(h)
	}
}

func (a *testApp) Adapter() handler.Adapter          { return a.adapter }
func (a *testApp) Registries() *scaffold.Scaffold    { return a.reg }
func (a *testApp) Templates() *template.Env          { return a.env }
func (a *testApp) CLI() *cobra.Command               { return a.root }
func (a *testApp) Logger() *slog.Logger              { return a.log }
func (a *testApp) BeforeFirstRequest(f handler.FirstRequestFunc) {
	a.first = append(a.first, a.adapter.FirstRequest(f))
}

func (a *testApp) RegisterErrorHandler(target any, h handler.ErrorHandler) {
	a.reg.RegisterErrorHandler(target, a.adapter.Error(h))
}

func (a *testApp) rule(endpoint string) *router.Rule {
	for _, r := range a.rules.Rules() {
		if r.Endpoint == endpoint {
			return r
		}
	}
	return nil
}

func (a *testApp) match(method, path string) string {
	r, _, err := a.rules.Match("localhost", method, path)
	if err != nil {
		return ""
	}
	return r.Endpoint
}

// countingAdapter is handler.Direct counting how many callables it adapted.
type countingAdapter struct {
	views, befores, afters, teardowns, errors, firsts atomic.Int32
}

func (c *countingAdapter) View(h handler.HandlerFunc) handler.HandlerFunc {
	c.views.Add(1)
	return h
}

func (c *countingAdapter) Before(f handler.BeforeFunc) handler.BeforeFunc {
	c.befores.Add(1)
	return f
}

func (c *countingAdapter) After(f handler.AfterFunc) handler.AfterFunc {
	c.afters.Add(1)
	return f
}

func (c *countingAdapter) Teardown(f handler.TeardownFunc) handler.TeardownFunc {
	c.teardowns.Add(1)
	return f
}

func (c *countingAdapter) Error(h handler.ErrorHandler) handler.ErrorHandler {
	c.errors.Add(1)
	return h
}

func (c *countingAdapter) FirstRequest(f handler.FirstRequestFunc) handler.FirstRequestFunc {
	c.firsts.Add(1)
	return f
}

func listUsers(handler.Context) handler.Response { return response.String("users") }

func showUser(handler.Context) handler.Response { return response.String("user") }

func noop(handler.Context) handler.Response { return response.NoContent() }

func before(handler.Context) handler.Response { return nil }

func after(_ handler.Context, resp handler.Response) handler.Response { return resp }

func teardown(handler.Context, error) {}

func onFirst(context.Context) {}

func notFound(handler.Context, error) handler.Response {
	return response.StringWithStatus("missing", http.StatusNotFound)
}

func upper(s string) string { return s }

func isAdmin(v any) bool { return v == "admin" }

func panicErr(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err, _ = r.(error)
		}
	}()
	fn()
	return nil
}

func ptr(s string) *string { return &s }
