package handler

import (
	"context"
	"net/http"
)

// Context defines the contract for request contexts in the framework.
// The application provides the implementation.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	Param(key string) string
	SetValue(key, val any)

	// Endpoint returns the fully-qualified endpoint of the matched rule,
	// e.g. "admin.index". Empty when routing failed.
	Endpoint() string

	// Blueprint returns the name of the blueprint owning the endpoint,
	// empty for application-level endpoints.
	Blueprint() string

	// ViewArgs returns the matched URL values merged over the rule defaults.
	ViewArgs() map[string]any
}
