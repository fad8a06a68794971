package blueprint

import (
	"fmt"

	"github.com/dmitrymomot/blueprint/core/handler"
	"github.com/dmitrymomot/blueprint/core/registry"
)

// The App* methods install callables into the application-wide scope of
// the application, not the blueprint's own. They run once per application
// no matter how many times the blueprint is registered on it.

// AppTemplateFilter makes fn available to every template as a filter.
// An empty name uses the declared name of fn.
func (bp *Blueprint) AppTemplateFilter(name string, fn any) {
	name = templateName(name, fn)
	bp.RecordOnce(func(state *SetupState) {
		state.App.Templates().Filters[name] = fn
	})
}

// AppTemplateTest makes fn available to every template as a test.
// An empty name uses the declared name of fn.
func (bp *Blueprint) AppTemplateTest(name string, fn any) {
	name = templateName(name, fn)
	bp.RecordOnce(func(state *SetupState) {
		state.App.Templates().Tests[name] = fn
	})
}

// AppTemplateGlobal makes v available to every template. Functions are
// callable by name; other values are exposed as data. An empty name uses
// the declared name of a function v.
func (bp *Blueprint) AppTemplateGlobal(name string, v any) {
	name = templateName(name, v)
	bp.RecordOnce(func(state *SetupState) {
		state.App.Templates().Globals[name] = v
	})
}

// BeforeAppRequest registers a hook run before every request of the application.
func (bp *Blueprint) BeforeAppRequest(f handler.BeforeFunc) {
	mustFunc("BeforeAppRequest", f)
	bp.RecordOnce(func(state *SetupState) {
		reg := state.App.Registries()
		reg.BeforeRequestFuncs.Add(registry.AppScope, state.App.Adapter().Before(f))
	})
}

// BeforeAppFirstRequest registers a function run before the first request
// served by the application.
func (bp *Blueprint) BeforeAppFirstRequest(f handler.FirstRequestFunc) {
	mustFunc("BeforeAppFirstRequest", f)
	bp.RecordOnce(func(state *SetupState) {
		state.App.BeforeFirstRequest(f)
	})
}

// AfterAppRequest registers a hook run after every request of the application.
func (bp *Blueprint) AfterAppRequest(f handler.AfterFunc) {
	mustFunc("AfterAppRequest", f)
	bp.RecordOnce(func(state *SetupState) {
		reg := state.App.Registries()
		reg.AfterRequestFuncs.Add(registry.AppScope, state.App.Adapter().After(f))
	})
}

// TeardownAppRequest registers a hook run when any request of the application ends.
func (bp *Blueprint) TeardownAppRequest(f handler.TeardownFunc) {
	mustFunc("TeardownAppRequest", f)
	bp.RecordOnce(func(state *SetupState) {
		state.App.Registries().TeardownRequestFuncs.Add(registry.AppScope, f)
	})
}

// AppContextProcessor registers a template context processor for the whole application.
func (bp *Blueprint) AppContextProcessor(f handler.ContextProcessor) {
	mustFunc("AppContextProcessor", f)
	bp.RecordOnce(func(state *SetupState) {
		state.App.Registries().ContextProcessors.Add(registry.AppScope, f)
	})
}

// AppErrorHandler registers h for target on the whole application.
// Targets are validated right away, like RegisterErrorHandler does.
func (bp *Blueprint) AppErrorHandler(target any, h handler.ErrorHandler) {
	mustFunc("AppErrorHandler", h)
	if _, _, err := registry.ResolveTarget(target); err != nil {
		panic(err)
	}
	bp.RecordOnce(func(state *SetupState) {
		state.App.RegisterErrorHandler(target, h)
	})
}

// AppURLValuePreprocessor registers a URL value preprocessor for the whole application.
func (bp *Blueprint) AppURLValuePreprocessor(f handler.URLValuePreprocessor) {
	mustFunc("AppURLValuePreprocessor", f)
	bp.RecordOnce(func(state *SetupState) {
		state.App.Registries().URLValuePreprocessors.Add(registry.AppScope, f)
	})
}

// AppURLDefaults registers a URL default function for the whole application.
func (bp *Blueprint) AppURLDefaults(f handler.URLDefaultFunc) {
	mustFunc("AppURLDefaults", f)
	bp.RecordOnce(func(state *SetupState) {
		state.App.Registries().URLDefaultFuncs.Add(registry.AppScope, f)
	})
}

func templateName(name string, fn any) string {
	if name != "" {
		return name
	}
	name = handler.Name(fn)
	if name == "" || registry.HasSeparator(name) {
		panic(fmt.Errorf("%w: %q, pass a template name explicitly", ErrInvalidHandlerName, name))
	}
	return name
}
