package blueprint

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/blueprint/core/handler"
	"github.com/dmitrymomot/blueprint/core/router"
	"github.com/dmitrymomot/blueprint/core/scaffold"
	"github.com/dmitrymomot/blueprint/core/template"
)

// App is the application a blueprint registers itself on.
//
// Methods taking callables adapt them through Adapter themselves. Callables
// written straight into Registries must be adapted by the caller.
type App interface {
	// AddURLRule adds a rule for a fully-qualified endpoint. A nil h binds
	// the rule to a view function registered separately for endpoint.
	AddURLRule(pattern, endpoint string, h handler.HandlerFunc, o router.Options)

	// Adapter normalizes callables to the application's execution model.
	Adapter() handler.Adapter

	// Registries exposes the application-wide registries.
	Registries() *scaffold.Scaffold

	RegisterErrorHandler(target any, h handler.ErrorHandler)
	BeforeFirstRequest(f handler.FirstRequestFunc)
	Templates() *template.Env
	CLI() *cobra.Command
	Logger() *slog.Logger
}
