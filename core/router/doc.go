// Package router implements the URL rule map used by the application:
// patterns bound to endpoints, matched against incoming requests and
// reversed into URLs.
//
// # Patterns
//
// A pattern is a "/"-separated path. A segment is a literal, a {name}
// parameter matching exactly one non-empty segment, or a trailing
// {name...} matching the non-empty remainder of the path:
//
//	m := router.New(router.WithServerName("example.com"))
//
//	m.Add("/users/{id}", "users.show", router.Apply())
//	m.Add("/static/{filename...}", "static", router.Apply())
//	m.Add("/", "api.index", router.Apply(router.WithSubdomain("api")))
//
// When several rules match a path, literals win over parameters and
// parameters win over catch-alls; among equals the first registered wins.
// GET rules also serve HEAD.
//
// # Matching
//
//	rule, values, err := m.Match(r.Host, r.Method, r.URL.EscapedPath())
//	if errors.Is(err, router.ErrNotFound) { ... }
//
//	var mna *router.MethodNotAllowedError
//	if errors.As(err, &mna) {
//		w.Header().Set("Allow", mna.Allow())
//	}
//
// Subdomain rules only match when a server name is configured; the request
// host minus the server name is the subdomain.
//
// # Building
//
// Build reverses an endpoint into a URL. Rule defaults take part in the
// choice: a rule whose default contradicts a given value is skipped, so
//
//	m.Add("/users/", "users.list", router.Apply(router.WithDefaults(map[string]any{"page": 1})))
//	m.Add("/users/page/{page}", "users.list", router.Apply())
//
//	m.Build("users.list", nil)                        // "/users/"
//	m.Build("users.list", map[string]any{"page": 2}) // "/users/page/2"
//
// Values that are neither parameters nor defaults become the query string.
package router
