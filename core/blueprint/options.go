package blueprint

import (
	"log/slog"
	"time"
)

// Option configures a Blueprint.
type Option func(*Blueprint)

// WithURLPrefix prepends prefix to every rule of the blueprint.
func WithURLPrefix(prefix string) Option {
	return func(bp *Blueprint) {
		bp.urlPrefix = prefix
		bp.hasPrefix = true
	}
}

// WithSubdomain binds every rule of the blueprint to subdomain.
func WithSubdomain(subdomain string) Option {
	return func(bp *Blueprint) {
		bp.subdomain = subdomain
	}
}

// WithURLDefaults sets values passed to every view of the blueprint.
func WithURLDefaults(defaults map[string]any) Option {
	return func(bp *Blueprint) {
		for k, v := range defaults {
			bp.urlDefaults[k] = v
		}
	}
}

// WithStaticFolder enables the "static" endpoint serving dir, relative to
// the root path unless absolute.
func WithStaticFolder(dir string) Option {
	return func(bp *Blueprint) {
		bp.staticFolder = dir
	}
}

// WithStaticURLPath sets the URL path of the static endpoint.
// Defaults to "/" followed by the last element of the static folder.
func WithStaticURLPath(path string) Option {
	return func(bp *Blueprint) {
		bp.staticURLPath = path
	}
}

// WithStaticMaxAge sets the Cache-Control max age of static files.
func WithStaticMaxAge(maxAge time.Duration) Option {
	return func(bp *Blueprint) {
		bp.staticMaxAge = maxAge
	}
}

// WithTemplateFolder adds dir, relative to the root path unless absolute,
// to the template search path of applications the blueprint is registered
// on. Application templates take precedence.
func WithTemplateFolder(dir string) Option {
	return func(bp *Blueprint) {
		bp.templateFolder = dir
	}
}

// WithRootPath overrides the directory relative folders are resolved
// against. Defaults to the directory of the file calling New.
func WithRootPath(path string) Option {
	return func(bp *Blueprint) {
		bp.rootPath = path
	}
}

// WithCLIGroup sets the name of the command group holding the blueprint's
// commands. Defaults to the blueprint name.
func WithCLIGroup(name string) Option {
	return func(bp *Blueprint) {
		bp.cliGroup = &name
	}
}

// WithoutCLIGroup attaches the blueprint's commands directly to the
// application's root command.
func WithoutCLIGroup() Option {
	return WithCLIGroup("")
}

// WithModificationWarnings logs a warning whenever the blueprint is changed
// after it was registered.
func WithModificationWarnings(enabled bool) Option {
	return func(bp *Blueprint) {
		bp.warnOnModification = enabled
	}
}

// WithLogger sets the logger used for warnings. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(bp *Blueprint) {
		if l != nil {
			bp.logger = l
		}
	}
}

// WithStateFactory replaces the constructor of the setup state passed to
// deferred functions, e.g. to attach extra fields through Values.
func WithStateFactory(f StateFactory) Option {
	return func(bp *Blueprint) {
		if f != nil {
			bp.stateFactory = f
		}
	}
}
