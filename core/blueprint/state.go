package blueprint

import (
	"fmt"
	"maps"
	"strings"

	"github.com/dmitrymomot/blueprint/core/handler"
	"github.com/dmitrymomot/blueprint/core/registry"
	"github.com/dmitrymomot/blueprint/core/router"
)

// StateFactory builds the setup state of a registration.
type StateFactory func(bp *Blueprint, app App, opts MountOptions, first bool) *SetupState

// SetupState describes a single registration of a blueprint. It is built
// for every Register call and passed to each deferred action.
type SetupState struct {
	App       App
	Blueprint *Blueprint
	Options   MountOptions

	// First is true when the blueprint is registered on App for the first time.
	First bool

	// Name is the effective blueprint name: Options.Name or the blueprint's.
	Name string

	Subdomain string

	// URLPrefix is joined to every rule when HasURLPrefix is set, even when
	// it is empty: an empty prefix still roots relative patterns at "/".
	URLPrefix    string
	HasURLPrefix bool

	URLDefaults map[string]any

	// Values carries data a custom StateFactory attaches for its deferred actions.
	Values map[string]any
}

// NewSetupState is the default StateFactory. Mount options take precedence
// over the blueprint's own settings; URL defaults are merged with the mount
// values winning.
func NewSetupState(bp *Blueprint, app App, opts MountOptions, first bool) *SetupState {
	s := &SetupState{
		App:       app,
		Blueprint: bp,
		Options:   opts,
		First:     first,
		Name:      bp.name,
		Subdomain: bp.subdomain,
		URLPrefix: bp.urlPrefix,

		HasURLPrefix: bp.hasPrefix,
	}
	if opts.Name != "" {
		s.Name = opts.Name
	}
	if opts.Subdomain != nil {
		s.Subdomain = *opts.Subdomain
	}
	if opts.URLPrefix != nil {
		s.URLPrefix = *opts.URLPrefix
		s.HasURLPrefix = true
	}
	s.URLDefaults = maps.Clone(bp.urlDefaults)
	if s.URLDefaults == nil {
		s.URLDefaults = make(map[string]any, len(opts.URLDefaults))
	}
	maps.Copy(s.URLDefaults, opts.URLDefaults)
	return s
}

// MakeSetupState builds the setup state for a registration through the
// blueprint's StateFactory.
func (bp *Blueprint) MakeSetupState(app App, opts MountOptions, first bool) *SetupState {
	return bp.stateFactory(bp, app, opts, first)
}

// AddURLRule adds a rule to the application right away, with the
// registration's prefix, subdomain and defaults applied and the endpoint
// qualified by the effective blueprint name.
func (s *SetupState) AddURLRule(pattern, endpoint string, h handler.HandlerFunc, opts ...router.Option) {
	o := router.Apply(opts...)
	if o.Subdomain == "" {
		o.Subdomain = s.Subdomain
	}
	if endpoint == "" {
		endpoint = endpointOf(h)
	}

	defaults := maps.Clone(s.URLDefaults)
	if defaults == nil {
		defaults = make(map[string]any, len(o.Defaults))
	}
	maps.Copy(defaults, o.Defaults)
	o.Defaults = defaults

	if s.HasURLPrefix {
		pattern = JoinPrefix(s.URLPrefix, pattern)
	}
	s.App.AddURLRule(pattern, s.Name+registry.Separator+endpoint, h, o)
}

// JoinPrefix joins a URL prefix and a rule pattern with a single slash.
// An empty pattern yields the prefix unchanged, so JoinPrefix("", "users")
// is "/users".
func JoinPrefix(prefix, pattern string) string {
	if pattern == "" {
		return prefix
	}
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(pattern, "/")
}

// endpointOf derives a local endpoint from the declared name of h.
func endpointOf(h handler.HandlerFunc) string {
	if h == nil {
		panic(fmt.Errorf("%w: an endpoint is required without a handler", ErrNilHandler))
	}
	name := handler.Name(h)
	if name == "" || registry.HasSeparator(name) {
		panic(fmt.Errorf("%w: %q, pass an endpoint explicitly", ErrInvalidHandlerName, name))
	}
	return name
}
