// Package scaffold provides the registries applications and blueprints
// have in common: view functions, error handlers, request hooks, URL
// processors and template context processors.
//
// An owner embeds a *Scaffold and passes a guard to New that runs before
// each registration. Applications use it to reject changes once they
// serve requests; blueprints use it to warn about changes made after they
// were registered.
package scaffold
