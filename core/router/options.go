package router

// MapOption configures a Map during creation.
type MapOption func(*Map)

// WithServerName sets the host name subdomains are resolved against,
// e.g. "example.com". Without it, rules bound to a subdomain never match.
func WithServerName(name string) MapOption {
	return func(m *Map) {
		m.serverName = name
	}
}

// WithScheme sets the scheme used for absolute URLs built for subdomain rules.
func WithScheme(scheme string) MapOption {
	return func(m *Map) {
		if scheme != "" {
			m.scheme = scheme
		}
	}
}

// Options holds per-rule settings.
type Options struct {
	Methods   []string
	Defaults  map[string]any
	Subdomain string
}

// Option configures a single rule.
type Option func(*Options)

// WithMethods restricts the rule to the given HTTP methods (default GET).
func WithMethods(methods ...string) Option {
	return func(o *Options) {
		o.Methods = append(o.Methods, methods...)
	}
}

// WithDefaults sets values passed to the view when absent from the URL.
// Later calls override earlier keys.
func WithDefaults(defaults map[string]any) Option {
	return func(o *Options) {
		if len(defaults) == 0 {
			return
		}
		if o.Defaults == nil {
			o.Defaults = make(map[string]any, len(defaults))
		}
		for k, v := range defaults {
			o.Defaults[k] = v
		}
	}
}

// WithSubdomain binds the rule to a subdomain of the server name.
func WithSubdomain(subdomain string) Option {
	return func(o *Options) {
		o.Subdomain = subdomain
	}
}

// Apply folds opts into an Options value.
func Apply(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
