// Package app provides the application blueprints are registered on.
//
// An App owns the application-wide registries, the URL rule map, the
// template environment and the command tree. Blueprints merge into them
// through RegisterBlueprint:
//
//	admin := blueprint.New("admin", "example.com/admin", blueprint.WithURLPrefix("/admin"))
//	admin.Get("/", index)
//
//	a, err := app.New(app.WithServerName("example.com"))
//	if err != nil {
//		return err
//	}
//	if err := a.RegisterBlueprint(admin); err != nil {
//		return err
//	}
//	http.ListenAndServe(":8080", a)
//
// The first request seals the application: registering blueprints, rules
// or hooks afterwards fails with ErrSealed.
//
// Requests are dispatched in this order: URL value preprocessors, before
// hooks, the view, after hooks (reversed) and teardown hooks (reversed).
// Callables registered for the blueprint owning the matched endpoint run
// together with the application-wide ones. Errors, including routing
// errors and recovered panics, are handled by the most specific
// registered error handler.
//
// Mounts can also be described in YAML and applied with RegisterManifest.
// WithMetrics exports per-endpoint request counters and latencies to Prometheus.
package app
