package registry

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
)

// ErrInvalidTarget is returned when an error handler target is neither a
// status code, an error value, nor an error type.
var ErrInvalidTarget = errors.New("invalid error handler target")

var errorInterface = reflect.TypeFor[error]()

// ErrorType returns the target used to register a handler for every error
// assignable to E, matched with errors.As:
//
//	app.RegisterErrorHandler(registry.ErrorType[*ValidationError](), h)
func ErrorType[E error]() reflect.Type {
	return reflect.TypeFor[E]()
}

// ResolveTarget maps an error handler target to the status code and the key
// it is stored under:
//
//   - int: the status code itself, matched by any error carrying that code;
//   - reflect.Type (see ErrorType): code 0, matched with errors.As;
//   - error: the code it reports through StatusCode() (0 otherwise),
//     matched with errors.Is.
func ResolveTarget(target any) (int, any, error) {
	switch t := target.(type) {
	case int:
		if t < 100 || t > 599 {
			return 0, nil, fmt.Errorf("%w: status code %d", ErrInvalidTarget, t)
		}
		return t, nil, nil
	case reflect.Type:
		if t == nil || (t.Kind() != reflect.Interface && !t.Implements(errorInterface)) {
			return 0, nil, fmt.Errorf("%w: %v does not implement error", ErrInvalidTarget, t)
		}
		return 0, t, nil
	case error:
		return StatusCode(t), t, nil
	default:
		return 0, nil, fmt.Errorf("%w: %T", ErrInvalidTarget, target)
	}
}

// StatusCode extracts the HTTP status code an error reports through a
// StatusCode() method anywhere in its chain. Returns 0 if none does.
func StatusCode(err error) int {
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return 0
}

// ErrorEntry is a single error handler registration.
type ErrorEntry[H any] struct {
	Target  any
	Handler H
}

func (e ErrorEntry[H]) matches(err error) bool {
	switch t := e.Target.(type) {
	case nil:
		return true
	case reflect.Type:
		return errors.As(err, reflect.New(t).Interface())
	case error:
		if errors.Is(err, t) {
			return true
		}
		// errors.Is never matches uncomparable values such as errors
		// carrying maps; fall back to deep equality along the chain.
		if reflect.TypeOf(t).Comparable() {
			return false
		}
		for e := err; e != nil; e = errors.Unwrap(e) {
			if sameTarget(e, t) {
				return true
			}
		}
	}
	return false
}

// ErrorSpec stores error handlers keyed by scope, then status code
// (0 for handlers not bound to a code), then target.
// The zero value is ready to use.
type ErrorSpec[H any] struct {
	scopes map[string]map[int][]ErrorEntry[H]
	order  []string
}

// Set registers h for target at scope and code, replacing a previous
// handler for the same target.
func (s *ErrorSpec[H]) Set(scope string, code int, target any, h H) {
	codes := s.codes(scope)
	entries := codes[code]
	for i := range entries {
		if sameTarget(entries[i].Target, target) {
			entries[i].Handler = h
			return
		}
	}
	codes[code] = append(entries, ErrorEntry[H]{Target: target, Handler: h})
}

// Entries returns the handlers registered at scope and code in registration order.
func (s *ErrorSpec[H]) Entries(scope string, code int) []ErrorEntry[H] {
	return s.scopes[scope][code]
}

// Scopes returns the scopes in the order they were first used.
func (s *ErrorSpec[H]) Scopes() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Codes returns the status codes registered at scope, ascending.
func (s *ErrorSpec[H]) Codes(scope string) []int {
	codes := make([]int, 0, len(s.scopes[scope]))
	for code := range s.scopes[scope] {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// Len returns the total number of registered handlers.
func (s *ErrorSpec[H]) Len() int {
	n := 0
	for _, codes := range s.scopes {
		for _, entries := range codes {
			n += len(entries)
		}
	}
	return n
}

// Find returns the handler for err. The status code carried by err is tried
// before code-less handlers; within a code, scopes are tried in the given
// order; within a scope, handlers bound to a specific target win over
// handlers bound to the bare status code.
func (s *ErrorSpec[H]) Find(err error, scopes ...string) (H, bool) {
	var zero H
	if err == nil {
		return zero, false
	}

	codes := []int{0}
	if code := StatusCode(err); code != 0 {
		codes = []int{code, 0}
	}

	for _, code := range codes {
		for _, scope := range scopes {
			entries := s.scopes[scope][code]
			for _, e := range entries {
				if e.Target != nil && e.matches(err) {
					return e.Handler, true
				}
			}
			for _, e := range entries {
				if e.Target == nil {
					return e.Handler, true
				}
			}
		}
	}
	return zero, false
}

func (s *ErrorSpec[H]) codes(scope string) map[int][]ErrorEntry[H] {
	if s.scopes == nil {
		s.scopes = make(map[string]map[int][]ErrorEntry[H])
	}
	codes, ok := s.scopes[scope]
	if !ok {
		codes = make(map[int][]ErrorEntry[H])
		s.scopes[scope] = codes
		s.order = append(s.order, scope)
	}
	return codes
}

func (s *ErrorSpec[H]) has(scope string, code int, target any) bool {
	for _, e := range s.scopes[scope][code] {
		if sameTarget(e.Target, target) {
			return true
		}
	}
	return false
}

// ExtendErrors merges src into dst with the same rules as Extend: scopes are
// mapped through rekey, handlers through adapt, and a target already present
// in dst keeps its existing handler.
func ExtendErrors[H any](dst, src *ErrorSpec[H], rekey func(string) string, adapt func(H) H) {
	for _, scope := range src.order {
		key := scope
		if rekey != nil {
			key = rekey(scope)
		}
		for _, code := range src.Codes(scope) {
			for _, e := range src.scopes[scope][code] {
				if dst.has(key, code, e.Target) {
					continue
				}
				h := e.Handler
				if adapt != nil {
					h = adapt(h)
				}
				codes := dst.codes(key)
				codes[code] = append(codes[code], ErrorEntry[H]{Target: e.Target, Handler: h})
			}
		}
	}
}

// sameTarget compares targets without panicking on uncomparable error values.
func sameTarget(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
