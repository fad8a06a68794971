package router

import (
	"fmt"
	"net/url"
	"strings"
)

type segmentKind uint8

const (
	segStatic segmentKind = iota
	segParam
	segCatchAll
)

// segment is one "/"-separated part of a pattern: a literal, a {param}
// matching exactly one non-empty segment, or a {param...} matching the
// non-empty remainder of the path.
type segment struct {
	kind  segmentKind
	value string
}

func parsePattern(pattern string) ([]segment, error) {
	if len(pattern) == 0 || pattern[0] != '/' {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidPattern, pattern)
	}

	parts := strings.Split(pattern[1:], "/")
	segs := make([]segment, 0, len(parts))
	seen := make(map[string]bool)

	for i, p := range parts {
		if !strings.HasPrefix(p, "{") {
			if strings.ContainsAny(p, "{}") {
				return nil, fmt.Errorf("%w: '%s'", ErrInvalidPattern, pattern)
			}
			segs = append(segs, segment{kind: segStatic, value: p})
			continue
		}

		if !strings.HasSuffix(p, "}") {
			return nil, fmt.Errorf("%w: '%s'", ErrInvalidPattern, pattern)
		}

		name := p[1 : len(p)-1]
		kind := segParam
		if n, ok := strings.CutSuffix(name, "..."); ok {
			if i != len(parts)-1 {
				return nil, fmt.Errorf("%w: '%s'", ErrWildcardPosition, pattern)
			}
			name = n
			kind = segCatchAll
		}

		if name == "" || strings.ContainsAny(name, "{}/.") {
			return nil, fmt.Errorf("%w: '%s' in '%s'", ErrParamName, name, pattern)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: '%s' in '%s'", ErrDuplicateParam, name, pattern)
		}
		seen[name] = true

		segs = append(segs, segment{kind: kind, value: name})
	}

	return segs, nil
}

// splitPath splits an escaped request path into unescaped segments.
func splitPath(escaped string) ([]string, bool) {
	if escaped == "" {
		escaped = "/"
	}
	if escaped[0] != '/' {
		return nil, false
	}
	parts := strings.Split(escaped[1:], "/")
	for i, p := range parts {
		v, err := url.PathUnescape(p)
		if err != nil {
			return nil, false
		}
		parts[i] = v
	}
	return parts, true
}

func matchSegments(segs []segment, parts []string) (map[string]string, bool) {
	var values map[string]string

	for i, s := range segs {
		if s.kind == segCatchAll {
			if i >= len(parts) {
				return nil, false
			}
			rest := strings.Join(parts[i:], "/")
			if rest == "" {
				return nil, false
			}
			if values == nil {
				values = make(map[string]string, 1)
			}
			values[s.value] = rest
			return values, true
		}

		if i >= len(parts) {
			return nil, false
		}

		switch s.kind {
		case segStatic:
			if parts[i] != s.value {
				return nil, false
			}
		case segParam:
			if parts[i] == "" {
				return nil, false
			}
			if values == nil {
				values = make(map[string]string, len(segs))
			}
			values[s.value] = parts[i]
		}
	}

	if len(parts) != len(segs) {
		return nil, false
	}
	return values, true
}

func buildPath(segs []segment, values map[string]string) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteByte('/')
		switch s.kind {
		case segStatic:
			b.WriteString(s.value)
		case segParam:
			b.WriteString(url.PathEscape(values[s.value]))
		case segCatchAll:
			parts := strings.Split(values[s.value], "/")
			for i, p := range parts {
				parts[i] = url.PathEscape(p)
			}
			b.WriteString(strings.Join(parts, "/"))
		}
	}
	return b.String()
}
