// Package template is the application's template environment: html/template
// rendering over an ordered list of search paths, with registries for
// filters, tests and globals.
//
// Filters and tests become template functions. Globals that are functions
// become template functions too; other globals are merged into the data of
// every render, under the caller's own values.
//
//	env := template.New("templates")
//	env.Filters["upper"] = strings.ToUpper
//	env.Globals["site"] = "Acme"
//
//	err := env.Render(w, "index.html", map[string]any{"user": u})
//
// The application's own template folder comes first in the search path;
// blueprint template folders are appended when blueprints are registered,
// so blueprint templates never shadow application templates.
package template
