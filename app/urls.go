package app

import (
	"fmt"
	"maps"
	"strings"

	"github.com/dmitrymomot/blueprint/core/registry"
)

// URLFor builds the URL of endpoint from values. The URL default functions
// of the application, then of the blueprint owning endpoint, fill values
// first; values itself is not modified.
func (a *App) URLFor(endpoint string, values map[string]any) (string, error) {
	vals := make(map[string]any, len(values))
	maps.Copy(vals, values)

	scopes := []string{registry.AppScope}
	if i := strings.LastIndex(endpoint, registry.Separator); i >= 0 {
		scopes = append(scopes, endpoint[:i])
	}
	for _, f := range a.reg.URLDefaultFuncs.Collect(scopes...) {
		f(endpoint, vals)
	}
	return a.rules.Build(endpoint, vals)
}

// templateURLFor is the url_for template function: url_for "admin.show" "id" 1.
func (a *App) templateURLFor(endpoint string, pairs ...any) (string, error) {
	if len(pairs)%2 != 0 {
		return "", fmt.Errorf("url_for %s: odd number of key/value arguments", endpoint)
	}
	values := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return "", fmt.Errorf("url_for %s: key %v is not a string", endpoint, pairs[i])
		}
		values[key] = pairs[i+1]
	}
	return a.URLFor(endpoint, values)
}
