package blueprint

// MountOptions holds the options given when a blueprint is registered.
// Pointer fields distinguish "not given" (nil) from an explicit empty value.
type MountOptions struct {
	// Name replaces the blueprint name for this registration.
	Name string

	URLPrefix   *string
	Subdomain   *string
	URLDefaults map[string]any

	// CLIGroup overrides the blueprint's command group; a pointer to ""
	// attaches the commands to the application's root command.
	CLIGroup *string
}

// MountOption configures a single registration.
type MountOption func(*MountOptions)

// MountAs registers the blueprint under another name.
func MountAs(name string) MountOption {
	return func(o *MountOptions) {
		o.Name = name
	}
}

// MountPrefix overrides the blueprint's URL prefix.
func MountPrefix(prefix string) MountOption {
	return func(o *MountOptions) {
		o.URLPrefix = &prefix
	}
}

// MountSubdomain overrides the blueprint's subdomain.
func MountSubdomain(subdomain string) MountOption {
	return func(o *MountOptions) {
		o.Subdomain = &subdomain
	}
}

// MountDefaults adds URL defaults over the blueprint's own.
func MountDefaults(defaults map[string]any) MountOption {
	return func(o *MountOptions) {
		if o.URLDefaults == nil {
			o.URLDefaults = make(map[string]any, len(defaults))
		}
		for k, v := range defaults {
			o.URLDefaults[k] = v
		}
	}
}

// MountCLIGroup overrides the blueprint's command group name.
func MountCLIGroup(name string) MountOption {
	return func(o *MountOptions) {
		o.CLIGroup = &name
	}
}

// MountWithoutCLIGroup attaches the blueprint's commands to the application's root command.
func MountWithoutCLIGroup() MountOption {
	return MountCLIGroup("")
}

// ApplyMount folds opts into a MountOptions value.
func ApplyMount(opts ...MountOption) MountOptions {
	var o MountOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
