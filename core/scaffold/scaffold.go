package scaffold

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/dmitrymomot/blueprint/core/handler"
	"github.com/dmitrymomot/blueprint/core/registry"
)

// ErrNilCallable is the panic value (wrapped) when a nil callable is registered.
var ErrNilCallable = errors.New("nil callable")

// Scaffold holds the registries shared by applications and blueprints.
// Every registration method stores the callable at registry.AppScope; the
// owner decides how scopes are keyed when registries are merged.
//
// Registries are exported so that an application can read them while
// serving and a blueprint can merge its own into an application's.
type Scaffold struct {
	ViewFunctions         map[string]handler.HandlerFunc
	ErrorHandlers         registry.ErrorSpec[handler.ErrorHandler]
	BeforeRequestFuncs    registry.Scoped[handler.BeforeFunc]
	AfterRequestFuncs     registry.Scoped[handler.AfterFunc]
	TeardownRequestFuncs  registry.Scoped[handler.TeardownFunc]
	URLDefaultFuncs       registry.Scoped[handler.URLDefaultFunc]
	URLValuePreprocessors registry.Scoped[handler.URLValuePreprocessor]
	ContextProcessors     registry.Scoped[handler.ContextProcessor]

	guard func(op string)
}

// New returns an empty scaffold. guard, when non-nil, runs before every
// mutation with the name of the registering method; it may log, or panic
// to forbid the change.
func New(guard func(op string)) *Scaffold {
	return &Scaffold{
		ViewFunctions: make(map[string]handler.HandlerFunc),
		guard:         guard,
	}
}

func (s *Scaffold) check(op string, fn any) {
	if s.guard != nil {
		s.guard(op)
	}
	if v := reflect.ValueOf(fn); !v.IsValid() || v.IsNil() {
		panic(fmt.Errorf("%w: %s", ErrNilCallable, op))
	}
}

// Endpoint binds h to a local endpoint without adding a URL rule.
// A later rule naming the endpoint is served by h.
func (s *Scaffold) Endpoint(endpoint string, h handler.HandlerFunc) {
	s.check("Endpoint", h)
	if s.ViewFunctions == nil {
		s.ViewFunctions = make(map[string]handler.HandlerFunc)
	}
	s.ViewFunctions[endpoint] = h
}

// BeforeRequest registers a hook run before each view. The first hook
// returning a non-nil response stops the dispatch.
func (s *Scaffold) BeforeRequest(f handler.BeforeFunc) {
	s.check("BeforeRequest", f)
	s.BeforeRequestFuncs.Add(registry.AppScope, f)
}

// AfterRequest registers a hook run after each view. Hooks run in reverse
// registration order.
func (s *Scaffold) AfterRequest(f handler.AfterFunc) {
	s.check("AfterRequest", f)
	s.AfterRequestFuncs.Add(registry.AppScope, f)
}

// TeardownRequest registers a hook run when the request ends, even if it failed.
func (s *Scaffold) TeardownRequest(f handler.TeardownFunc) {
	s.check("TeardownRequest", f)
	s.TeardownRequestFuncs.Add(registry.AppScope, f)
}

// URLDefaults registers a function filling values before URLs are built.
func (s *Scaffold) URLDefaults(f handler.URLDefaultFunc) {
	s.check("URLDefaults", f)
	s.URLDefaultFuncs.Add(registry.AppScope, f)
}

// URLValuePreprocessor registers a function run on the matched URL values
// before any before-request hook.
func (s *Scaffold) URLValuePreprocessor(f handler.URLValuePreprocessor) {
	s.check("URLValuePreprocessor", f)
	s.URLValuePreprocessors.Add(registry.AppScope, f)
}

// ContextProcessor registers a function whose result is merged into the
// data of every rendered template.
func (s *Scaffold) ContextProcessor(f handler.ContextProcessor) {
	s.check("ContextProcessor", f)
	s.ContextProcessors.Add(registry.AppScope, f)
}

// RegisterErrorHandler registers h for target: an HTTP status code, an
// error value (matched with errors.Is) or an error type built with
// registry.ErrorType (matched with errors.As). Registering the same target
// twice replaces the handler.
//
// Panics with a wrapped registry.ErrInvalidTarget for any other target.
func (s *Scaffold) RegisterErrorHandler(target any, h handler.ErrorHandler) {
	s.check("RegisterErrorHandler", h)
	code, key, err := registry.ResolveTarget(target)
	if err != nil {
		panic(err)
	}
	s.ErrorHandlers.Set(registry.AppScope, code, key, h)
}
