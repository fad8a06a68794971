package router

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"slices"
	"sort"
	"strings"
)

// methods lists the HTTP methods a rule may accept.
var methods = map[string]bool{
	http.MethodConnect: true,
	http.MethodDelete:  true,
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodOptions: true,
	http.MethodPatch:   true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodTrace:   true,
}

// Rule binds a URL pattern to an endpoint.
type Rule struct {
	Pattern   string
	Endpoint  string
	Methods   []string
	Defaults  map[string]any
	Subdomain string

	segments []segment
	params   int
	catchAll bool
}

// Allows reports whether the rule accepts method. GET rules also serve HEAD.
func (r *Rule) Allows(method string) bool {
	if slices.Contains(r.Methods, method) {
		return true
	}
	return method == http.MethodHead && slices.Contains(r.Methods, http.MethodGet)
}

// Params returns the names of the pattern's parameters in order.
func (r *Rule) Params() []string {
	var out []string
	for _, s := range r.segments {
		if s.kind != segStatic {
			out = append(out, s.value)
		}
	}
	return out
}

// less orders rules for matching: fewer catch-alls, then fewer parameters.
func (r *Rule) less(o *Rule) bool {
	if r.catchAll != o.catchAll {
		return !r.catchAll
	}
	return r.params < o.params
}

// Map is an ordered set of rules with endpoint-based URL building.
// It is written during application setup and read concurrently afterwards.
type Map struct {
	rules      []*Rule
	byEndpoint map[string][]*Rule
	serverName string
	scheme     string
}

// New creates an empty rule map.
func New(opts ...MapOption) *Map {
	m := &Map{
		byEndpoint: make(map[string][]*Rule),
		scheme:     "http",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ServerName returns the configured server name.
func (m *Map) ServerName() string {
	return m.serverName
}

// Add compiles and appends a rule.
func (m *Map) Add(pattern, endpoint string, o Options) (*Rule, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("%w for '%s'", ErrEmptyEndpoint, pattern)
	}

	segs, err := parsePattern(pattern)
	if err != nil {
		return nil, err
	}

	ms := o.Methods
	if len(ms) == 0 {
		ms = []string{http.MethodGet}
	}
	normalized := make([]string, 0, len(ms))
	for _, method := range ms {
		method = strings.ToUpper(method)
		if !methods[method] {
			return nil, fmt.Errorf("%w: %s", ErrInvalidMethod, method)
		}
		if !slices.Contains(normalized, method) {
			normalized = append(normalized, method)
		}
	}
	sort.Strings(normalized)

	r := &Rule{
		Pattern:   pattern,
		Endpoint:  endpoint,
		Methods:   normalized,
		Defaults:  copyValues(o.Defaults),
		Subdomain: o.Subdomain,
		segments:  segs,
	}
	for _, s := range segs {
		switch s.kind {
		case segParam:
			r.params++
		case segCatchAll:
			r.params++
			r.catchAll = true
		}
	}

	m.rules = append(m.rules, r)
	m.byEndpoint[endpoint] = append(m.byEndpoint[endpoint], r)
	return r, nil
}

// Rules returns all rules in registration order.
func (m *Map) Rules() []*Rule {
	out := make([]*Rule, len(m.rules))
	copy(out, m.rules)
	return out
}

// Endpoints returns the sorted set of endpoints with at least one rule.
func (m *Map) Endpoints() []string {
	out := make([]string, 0, len(m.byEndpoint))
	for ep := range m.byEndpoint {
		out = append(out, ep)
	}
	sort.Strings(out)
	return out
}

// subdomain resolves the subdomain of host against the server name.
// ok is false when host does not belong to the server name at all.
func (m *Map) subdomain(host string) (string, bool) {
	if m.serverName == "" {
		return "", true
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	server := m.serverName
	if h, _, err := net.SplitHostPort(server); err == nil {
		server = h
	}
	host = strings.ToLower(host)
	server = strings.ToLower(server)

	if host == server {
		return "", true
	}
	if sub, ok := strings.CutSuffix(host, "."+server); ok {
		return sub, true
	}
	return "", false
}

// Match finds the rule for a request. escapedPath is the request path as
// sent on the wire (url.URL.EscapedPath). The returned values hold the
// unescaped path parameters.
//
// Errors: ErrNotFound when no rule matches the path (wrapped, with a 404
// status code), *MethodNotAllowedError when rules match the path but none
// accepts method.
func (m *Map) Match(host, method, escapedPath string) (*Rule, map[string]string, error) {
	parts, ok := splitPath(escapedPath)
	if !ok {
		return nil, nil, &notFoundError{path: escapedPath}
	}
	sub, ok := m.subdomain(host)
	if !ok {
		return nil, nil, &notFoundError{path: escapedPath}
	}

	var (
		best       *Rule
		bestValues map[string]string
		allowed    []string
	)

	for _, r := range m.rules {
		if r.Subdomain != sub {
			continue
		}
		values, ok := matchSegments(r.segments, parts)
		if !ok {
			continue
		}
		if !r.Allows(method) {
			for _, am := range r.Methods {
				if !slices.Contains(allowed, am) {
					allowed = append(allowed, am)
				}
			}
			continue
		}
		if best == nil || r.less(best) {
			best, bestValues = r, values
		}
	}

	if best != nil {
		return best, bestValues, nil
	}
	if len(allowed) > 0 {
		if slices.Contains(allowed, http.MethodGet) && !slices.Contains(allowed, http.MethodHead) {
			allowed = append(allowed, http.MethodHead)
		}
		sort.Strings(allowed)
		return nil, nil, &MethodNotAllowedError{Method: method, Allowed: allowed}
	}
	return nil, nil, &notFoundError{path: escapedPath}
}

// Allowed returns the methods accepted at a path, used to answer OPTIONS.
func (m *Map) Allowed(host, escapedPath string) []string {
	_, _, err := m.Match(host, "", escapedPath)
	if mna, ok := err.(*MethodNotAllowedError); ok {
		return mna.Allowed
	}
	return nil
}

// Build returns the URL for endpoint. The first rule of the endpoint whose
// parameters can all be filled from values or its defaults, and whose
// defaults do not contradict values, wins. Values that are neither
// parameters nor defaults of the rule are appended as the query string.
// Rules bound to a subdomain yield an absolute URL when a server name is set.
func (m *Map) Build(endpoint string, values map[string]any) (string, error) {
	rules := m.byEndpoint[endpoint]
	if len(rules) == 0 {
		return "", fmt.Errorf("%w: unknown endpoint '%s'", ErrBuild, endpoint)
	}

	for _, r := range rules {
		if u, ok := m.build(r, values); ok {
			return u, nil
		}
	}
	return "", fmt.Errorf("%w: no rule for '%s' accepts values %v", ErrBuild, endpoint, keys(values))
}

func (m *Map) build(r *Rule, values map[string]any) (string, bool) {
	for k, def := range r.Defaults {
		if v, ok := values[k]; ok && fmt.Sprint(v) != fmt.Sprint(def) {
			return "", false
		}
	}

	params := make(map[string]string, r.params)
	for _, name := range r.Params() {
		v, ok := values[name]
		if !ok {
			v, ok = r.Defaults[name]
		}
		if !ok {
			return "", false
		}
		s := fmt.Sprint(v)
		if s == "" {
			return "", false
		}
		params[name] = s
	}

	u := buildPath(r.segments, params)

	query := url.Values{}
	for k, v := range values {
		if _, isParam := params[k]; isParam {
			continue
		}
		if _, isDefault := r.Defaults[k]; isDefault {
			continue
		}
		switch vv := v.(type) {
		case []string:
			for _, s := range vv {
				query.Add(k, s)
			}
		default:
			query.Add(k, fmt.Sprint(v))
		}
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	if r.Subdomain != "" && m.serverName != "" {
		u = m.scheme + "://" + r.Subdomain + "." + m.serverName + u
	}
	return u, true
}

func copyValues(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
