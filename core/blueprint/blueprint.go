package blueprint

import (
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/blueprint/core/handler"
	"github.com/dmitrymomot/blueprint/core/logger"
	"github.com/dmitrymomot/blueprint/core/registry"
	"github.com/dmitrymomot/blueprint/core/scaffold"
	"github.com/dmitrymomot/blueprint/core/static"
)

// DeferredFunc is an action recorded on a blueprint and replayed with a
// setup state every time the blueprint is registered.
type DeferredFunc func(state *SetupState)

// Blueprint bundles routes, hooks and error handlers declared before any
// application exists. Registering it on an application merges its
// registries once and replays its deferred actions on every registration.
//
// A Blueprint is configured from a single goroutine before serving begins.
type Blueprint struct {
	*scaffold.Scaffold

	name       string
	importName string
	rootPath   string

	staticFolder   string
	staticURLPath  string
	staticMaxAge   time.Duration
	templateFolder string

	urlPrefix   string
	hasPrefix   bool
	subdomain   string
	urlDefaults map[string]any

	cliGroup *string
	cli      *cobra.Command

	deferred           []DeferredFunc
	registeredOnce     bool
	warnOnModification bool
	logger             *slog.Logger
	stateFactory       StateFactory
	static             handler.HandlerFunc
}

// New creates a blueprint. name prefixes every endpoint of the blueprint
// and must be non-empty without dots; importName is the package path of
// the code declaring it.
//
// Panics with a wrapped ErrInvalidName for an invalid name.
func New(name, importName string, opts ...Option) *Blueprint {
	if name == "" || registry.HasSeparator(name) {
		panic(fmt.Errorf("%w: %q", ErrInvalidName, name))
	}

	bp := &Blueprint{
		name:         name,
		importName:   importName,
		urlDefaults:  make(map[string]any),
		logger:       slog.Default(),
		stateFactory: NewSetupState,
	}
	if _, file, _, ok := runtime.Caller(1); ok {
		bp.rootPath = filepath.Dir(file)
	}
	bp.Scaffold = scaffold.New(bp.checkModified)

	for _, opt := range opts {
		opt(bp)
	}

	bp.cli = &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("Commands of the %s blueprint", name),
	}
	if bp.staticFolder != "" {
		var dirOpts []static.DirOption
		if bp.staticMaxAge > 0 {
			dirOpts = append(dirOpts, static.WithMaxAge(bp.staticMaxAge))
		}
		bp.static = static.Dir(bp.StaticFolder(), dirOpts...)
	}
	return bp
}

// Name returns the blueprint name.
func (bp *Blueprint) Name() string { return bp.name }

// ImportName returns the package path given to New.
func (bp *Blueprint) ImportName() string { return bp.importName }

// RootPath returns the directory relative folders are resolved against.
func (bp *Blueprint) RootPath() string { return bp.rootPath }

// URLPrefix returns the prefix applied to every rule.
func (bp *Blueprint) URLPrefix() string { return bp.urlPrefix }

// Subdomain returns the subdomain every rule is bound to.
func (bp *Blueprint) Subdomain() string { return bp.subdomain }

// URLValueDefaults returns a copy of the values passed to every view.
func (bp *Blueprint) URLValueDefaults() map[string]any { return maps.Clone(bp.urlDefaults) }

// HasStaticFolder reports whether the blueprint serves static files.
func (bp *Blueprint) HasStaticFolder() bool { return bp.staticFolder != "" }

// StaticFolder returns the resolved static folder, empty when disabled.
func (bp *Blueprint) StaticFolder() string { return bp.resolve(bp.staticFolder) }

// StaticURLPath returns the URL path of the static endpoint, relative to
// the URL prefix. Empty when static files are disabled.
func (bp *Blueprint) StaticURLPath() string {
	if bp.staticFolder == "" {
		return ""
	}
	if bp.staticURLPath != "" {
		return strings.TrimRight(bp.staticURLPath, "/")
	}
	return "/" + filepath.Base(bp.staticFolder)
}

// TemplateFolder returns the resolved template folder, empty when disabled.
func (bp *Blueprint) TemplateFolder() string { return bp.resolve(bp.templateFolder) }

// RegisteredOnce reports whether Register was called at least once, on any application.
func (bp *Blueprint) RegisteredOnce() bool { return bp.registeredOnce }

// CLI returns the command group of the blueprint. Commands added to it are
// attached to the application's command tree on registration.
func (bp *Blueprint) CLI() *cobra.Command { return bp.cli }

func (bp *Blueprint) resolve(dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(bp.rootPath, dir)
}

// Record queues fn to run with the setup state on every registration.
func (bp *Blueprint) Record(fn DeferredFunc) {
	mustFunc("Record", fn)
	bp.checkModified("Record")
	bp.deferred = append(bp.deferred, fn)
}

// RecordOnce queues fn to run only on the first registration of the
// blueprint on an application.
func (bp *Blueprint) RecordOnce(fn DeferredFunc) {
	mustFunc("RecordOnce", fn)
	bp.Record(func(state *SetupState) {
		if state.First {
			fn(state)
		}
	})
}

func (bp *Blueprint) checkModified(op string) {
	if !bp.registeredOnce || !bp.warnOnModification {
		return
	}
	bp.logger.Warn("blueprint was already registered and is being modified; the change will not show up on applications it was registered on",
		logger.Blueprint(bp.name),
		logger.Action(op),
		logger.Error(ErrModifiedAfterRegistration),
	)
}

func mustFunc(op string, fn any) {
	if v := reflect.ValueOf(fn); !v.IsValid() || v.IsNil() {
		panic(fmt.Errorf("%w: %s", scaffold.ErrNilCallable, op))
	}
}
