package app

import (
	"bytes"
	"maps"
	"net/http"

	"github.com/dmitrymomot/blueprint/core/handler"
	"github.com/dmitrymomot/blueprint/core/registry"
)

// Render returns a response rendering the template name as HTML with status 200.
func (a *App) Render(ctx handler.Context, name string, data map[string]any) handler.Response {
	return a.RenderWithStatus(ctx, name, data, http.StatusOK)
}

// RenderWithStatus renders the template name as HTML.
//
// The template sees the values of the application's context processors,
// then of the current blueprint's, with data winning over both. Rendering
// happens when the response is written; a failing template writes nothing
// and its error goes to the error handlers.
func (a *App) RenderWithStatus(ctx handler.Context, name string, data map[string]any, status int) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		var buf bytes.Buffer
		if err := a.env.Render(&buf, name, a.templateData(ctx, data)); err != nil {
			return err
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		if r.Method == http.MethodHead {
			return nil
		}
		_, err := w.Write(buf.Bytes())
		return err
	}
}

func (a *App) templateData(ctx handler.Context, data map[string]any) map[string]any {
	out := map[string]any{
		"request":  ctx.Request(),
		"endpoint": ctx.Endpoint(),
	}
	scopes := []string{registry.AppScope}
	if bp := ctx.Blueprint(); bp != "" {
		scopes = append(scopes, bp)
	}
	for _, f := range a.reg.ContextProcessors.Collect(scopes...) {
		maps.Copy(out, f(ctx))
	}
	maps.Copy(out, data)
	return out
}
