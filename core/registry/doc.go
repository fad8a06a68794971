// Package registry provides the scope-keyed containers shared by the
// application and its blueprints.
//
// A scope is a namespace key: AppScope ("") means application-wide, any other
// key names a blueprint ("admin") or a blueprint-local key joined with
// Separator ("admin.users"). Scoped holds ordered callables per scope;
// ErrorSpec holds error handlers per scope and status code.
//
// Both containers merge with the same rule: Extend and ExtendErrors append
// source entries under remapped keys and never replace what the destination
// already holds. Registering a blueprint a second time therefore cannot
// clobber hooks installed by the first registration.
package registry
