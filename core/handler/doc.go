// Package handler defines the callable types exchanged between blueprints
// and the application: views, request lifecycle hooks, error handlers and
// URL processors, together with the request Context contract.
//
// # Core Types
//
//	// Response function renders HTTP responses
//	type Response func(w http.ResponseWriter, r *http.Request) error
//
//	// View bound to an endpoint
//	type HandlerFunc func(ctx Context) Response
//
//	// Lifecycle hooks
//	type BeforeFunc func(ctx Context) Response
//	type AfterFunc func(ctx Context, resp Response) Response
//	type TeardownFunc func(ctx Context, err error)
//
// A view returns a Response instead of writing directly. The application
// runs after-request hooks over the returned value before rendering it,
// so hooks can decorate headers or replace the response entirely.
//
// # Execution Model
//
// An Adapter normalizes callables to the application's execution model.
// The application applies it once per callable when blueprint registries are
// merged, not on every request. Direct runs callables inline; Bounded runs
// them through pkg/async with a deadline and converts panics and timeouts
// into errors:
//
//	app, _ := app.New(app.WithAdapter(handler.Bounded(5 * time.Second)))
//
// # Endpoint Names
//
// Name derives the declared name of a function. Blueprints use it as the
// default endpoint when none is given:
//
//	func listUsers(ctx handler.Context) handler.Response { ... }
//
//	handler.Name(listUsers) // "listUsers"
package handler
