package router

import (
	"errors"
	"net/http"
	"strings"
)

var (
	// Map errors
	ErrNotFound       = errors.New("not found")
	ErrInvalidMethod  = errors.New("invalid http method")
	ErrInvalidPattern = errors.New("invalid route path pattern")
	ErrEmptyEndpoint  = errors.New("empty endpoint")
	ErrBuild          = errors.New("cannot build url")

	// Pattern errors
	ErrWildcardPosition = errors.New("wildcard position must be last")
	ErrParamName        = errors.New("invalid parameter name")
	ErrDuplicateParam   = errors.New("duplicate parameter name")
)

// MethodNotAllowedError is returned by Match when the path matched at least
// one rule but none of them accepts the request method.
type MethodNotAllowedError struct {
	Method  string
	Allowed []string
}

// Error implements the error interface.
func (e *MethodNotAllowedError) Error() string {
	return "method not allowed: " + e.Method
}

// StatusCode returns 405.
func (e *MethodNotAllowedError) StatusCode() int {
	return http.StatusMethodNotAllowed
}

// Allow returns the value of the Allow response header.
func (e *MethodNotAllowedError) Allow() string {
	return strings.Join(e.Allowed, ", ")
}

// notFoundError gives ErrNotFound a status code while keeping errors.Is working.
type notFoundError struct {
	path string
}

func (e *notFoundError) Error() string   { return ErrNotFound.Error() + ": " + e.path }
func (e *notFoundError) Unwrap() error   { return ErrNotFound }
func (e *notFoundError) StatusCode() int { return http.StatusNotFound }
