// Package blueprint lets routes, hooks and error handlers be declared
// before the application they belong to exists.
//
// A Blueprint records its routes as deferred actions and keeps its hooks in
// local registries. When an application registers it, the blueprint merges
// its registries into the application's, once per application, and replays
// the deferred actions with a SetupState describing that registration:
//
//	users := blueprint.New("users", "example.com/shop/users",
//		blueprint.WithURLPrefix("/users"),
//		blueprint.WithTemplateFolder("templates"),
//	)
//	users.Get("/", listUsers)          // endpoint "users.listUsers"
//	users.Get("/{id}", showUser)       // endpoint "users.showUser"
//	users.BeforeRequest(loadSession)   // only for users.* endpoints
//	users.BeforeAppRequest(countHits)  // for every request of the app
//
//	app.RegisterBlueprint(users)
//	app.RegisterBlueprint(users, blueprint.MountAs("legacy_users"), blueprint.MountPrefix("/v1/users"))
//
// Registering the same blueprint again, for example under another prefix,
// replays its routes but merges nothing: hooks and error handlers come from
// the first registration only. Actions queued with RecordOnce, which
// includes every App* method, run on the first registration only.
//
// Endpoints are derived from the declared name of the handler unless given
// explicitly, so anonymous functions need an explicit endpoint. Invalid
// names panic at declaration time, before any registration happens.
//
// Commands added to CLI are attached to the application's command tree
// under the blueprint name, the WithCLIGroup name, or directly on the root
// with WithoutCLIGroup.
package blueprint
