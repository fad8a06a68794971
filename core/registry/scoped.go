package registry

import "strings"

const (
	// Separator joins a blueprint name with a local key.
	Separator = "."

	// AppScope is the scope key meaning "the whole application" (or, in a
	// blueprint's local registries, "the whole blueprint").
	AppScope = ""
)

// Join computes the application-side key for a blueprint-local key:
// the blueprint name for AppScope, "<name>.<key>" otherwise.
func Join(name, key string) string {
	if key == AppScope {
		return name
	}
	return name + Separator + key
}

// HasSeparator reports whether s contains the scope separator.
func HasSeparator(s string) bool {
	return strings.Contains(s, Separator)
}

// Scoped is an ordered multimap from scope to callables.
// The zero value is ready to use.
type Scoped[T any] struct {
	entries map[string][]T
	order   []string
}

// Add appends fns to the sequence stored at scope.
func (s *Scoped[T]) Add(scope string, fns ...T) {
	if len(fns) == 0 {
		return
	}
	if s.entries == nil {
		s.entries = make(map[string][]T)
	}
	if _, ok := s.entries[scope]; !ok {
		s.order = append(s.order, scope)
	}
	s.entries[scope] = append(s.entries[scope], fns...)
}

// Get returns the callables stored at scope in registration order.
// The returned slice must not be modified.
func (s *Scoped[T]) Get(scope string) []T {
	return s.entries[scope]
}

// Scopes returns the scopes in the order they were first used.
func (s *Scoped[T]) Scopes() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the total number of callables across all scopes.
func (s *Scoped[T]) Len() int {
	n := 0
	for _, fns := range s.entries {
		n += len(fns)
	}
	return n
}

// Collect returns the callables of every scope in scopes, concatenated in that order.
func (s *Scoped[T]) Collect(scopes ...string) []T {
	var out []T
	for _, scope := range scopes {
		out = append(out, s.entries[scope]...)
	}
	return out
}

// Extend merges src into dst. Each source scope is mapped through rekey and
// each callable through adapt (either may be nil). Existing entries in dst
// are never replaced; the source sequence is appended after them.
func Extend[T any](dst, src *Scoped[T], rekey func(string) string, adapt func(T) T) {
	for _, scope := range src.order {
		key := scope
		if rekey != nil {
			key = rekey(scope)
		}
		fns := src.entries[scope]
		if adapt != nil {
			adapted := make([]T, len(fns))
			for i, fn := range fns {
				adapted[i] = adapt(fn)
			}
			fns = adapted
		}
		dst.Add(key, fns...)
	}
}
