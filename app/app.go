package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/blueprint/core/blueprint"
	"github.com/dmitrymomot/blueprint/core/config"
	"github.com/dmitrymomot/blueprint/core/handler"
	"github.com/dmitrymomot/blueprint/core/logger"
	"github.com/dmitrymomot/blueprint/core/registry"
	"github.com/dmitrymomot/blueprint/core/response"
	"github.com/dmitrymomot/blueprint/core/router"
	"github.com/dmitrymomot/blueprint/core/scaffold"
	"github.com/dmitrymomot/blueprint/core/static"
	"github.com/dmitrymomot/blueprint/core/template"
)

var _ blueprint.App = (*App)(nil)

// App owns the application-wide registries, the rule map, the template
// environment and the command tree, and serves requests through them.
//
// An App is configured from a single goroutine. It seals itself when it
// serves its first request; from then on it is safe for concurrent use and
// every setup method panics with ErrSealed.
type App struct {
	config Config
	logger *slog.Logger

	adapter      handler.Adapter
	rules        *router.Map
	reg          *scaffold.Scaffold
	env          *template.Env
	cli          *cobra.Command
	metrics      *metrics
	errorHandler handler.ErrorHandler

	blueprints map[string]*blueprint.Blueprint
	origins    map[string]uintptr

	firstRequest []handler.FirstRequestFunc
	firstOnce    sync.Once
	sealed       atomic.Bool
}

// Option configures an App.
type Option func(*App) error

// New creates an application from the environment (see Config) and opts.
// The root path defaults to the directory of the file calling New.
func New(opts ...Option) (*App, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}

	a := &App{
		config:     cfg,
		blueprints: make(map[string]*blueprint.Blueprint),
		origins:    make(map[string]uintptr),
	}
	if a.config.RootPath == "" {
		if _, file, _, ok := runtime.Caller(1); ok {
			a.config.RootPath = filepath.Dir(file)
		}
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	if a.config.Name == "" {
		a.config.Name = "blueprint"
	}
	if a.config.RequestIDHeader == "" {
		a.config.RequestIDHeader = "X-Request-ID"
	}
	if a.config.URLScheme == "" {
		a.config.URLScheme = "http"
	}
	if a.logger == nil {
		a.logger = newLogger(a.config)
	}
	if a.adapter == nil {
		a.adapter = handler.Bounded(a.config.HandlerTimeout)
	}
	if a.errorHandler == nil {
		a.errorHandler = response.ErrorHandler
	}
	a.rules = router.New(
		router.WithServerName(a.config.ServerName),
		router.WithScheme(a.config.URLScheme),
	)
	a.reg = scaffold.New(a.checkSealed)
	a.env = template.New(a.resolve(a.config.TemplateFolder))
	a.env.Globals["url_for"] = a.templateURLFor
	if a.cli == nil {
		a.cli = &cobra.Command{Use: a.config.Name, SilenceUsage: true}
	}
	a.cli.AddCommand(a.routesCommand(), a.serveCommand())

	if a.config.StaticFolder != "" {
		dir := a.resolve(a.config.StaticFolder)
		if err := static.Check(dir); err != nil {
			a.logger.Warn("static folder is not available", logger.Error(err))
		}
		urlPath := a.config.StaticURLPath
		if urlPath == "" {
			urlPath = "/" + filepath.Base(a.config.StaticFolder)
		}
		a.AddURLRule(strings.TrimRight(urlPath, "/")+"/{"+static.Param+"...}", "static", static.Dir(dir), router.Options{})
	}
	return a, nil
}

// WithConfig replaces the configuration loaded from the environment.
func WithConfig(cfg Config) Option {
	return func(a *App) error {
		root := a.config.RootPath
		a.config = cfg
		if a.config.RootPath == "" {
			a.config.RootPath = root
		}
		return nil
	}
}

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) error {
		if l == nil {
			return errors.New("logger cannot be nil")
		}
		a.logger = l
		return nil
	}
}

// WithAdapter sets the execution-model adapter every callable goes through.
func WithAdapter(adapter handler.Adapter) Option {
	return func(a *App) error {
		if adapter == nil {
			return errors.New("adapter cannot be nil")
		}
		a.adapter = adapter
		return nil
	}
}

// WithServerName sets the host subdomain rules are matched against.
func WithServerName(name string) Option {
	return func(a *App) error {
		a.config.ServerName = name
		return nil
	}
}

// WithRootPath sets the directory relative folders are resolved against.
func WithRootPath(path string) Option {
	return func(a *App) error {
		a.config.RootPath = path
		return nil
	}
}

// WithStaticFolder serves dir under urlPath with the "static" endpoint.
// An empty urlPath defaults to "/" followed by the last element of dir.
func WithStaticFolder(dir, urlPath string) Option {
	return func(a *App) error {
		a.config.StaticFolder = dir
		a.config.StaticURLPath = urlPath
		return nil
	}
}

// WithTemplateFolder sets the first directory of the template search path.
func WithTemplateFolder(dir string) Option {
	return func(a *App) error {
		a.config.TemplateFolder = dir
		return nil
	}
}

// WithCLI sets the root command blueprints attach their commands to.
func WithCLI(root *cobra.Command) Option {
	return func(a *App) error {
		if root == nil {
			return errors.New("root command cannot be nil")
		}
		a.cli = root
		return nil
	}
}

// WithDefaultErrorHandler sets the handler used for errors no registered
// handler matches. Defaults to response.ErrorHandler.
func WithDefaultErrorHandler(h handler.ErrorHandler) Option {
	return func(a *App) error {
		if h == nil {
			return errors.New("error handler cannot be nil")
		}
		a.errorHandler = h
		return nil
	}
}

func newLogger(cfg Config) *slog.Logger {
	opts := []logger.Option{logger.WithContextExtractors(requestIDAttr)}
	if cfg.Env == "production" {
		opts = append(opts, logger.WithProduction(cfg.Name))
	} else {
		opts = append(opts, logger.WithDevelopment(cfg.Name))
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err == nil {
		opts = append(opts, logger.WithLevel(level))
	}
	return logger.New(opts...)
}

func (a *App) resolve(dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(a.config.RootPath, dir)
}

// Config returns the effective configuration.
func (a *App) Config() Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Adapter returns the execution-model adapter.
func (a *App) Adapter() handler.Adapter { return a.adapter }

// Registries returns the application-wide registries. Callables stored
// there directly must already be adapted.
func (a *App) Registries() *scaffold.Scaffold { return a.reg }

// Rules returns the rule map.
func (a *App) Rules() *router.Map { return a.rules }

// Templates returns the template environment.
func (a *App) Templates() *template.Env { return a.env }

// CLI returns the root command.
func (a *App) CLI() *cobra.Command { return a.cli }

// Seal forbids further setup. It is called by the first ServeHTTP.
func (a *App) Seal() { a.sealed.Store(true) }

// Sealed reports whether the application began serving requests.
func (a *App) Sealed() bool { return a.sealed.Load() }

func (a *App) checkSealed(op string) {
	if a.sealed.Load() {
		panic(fmt.Errorf("%w: %s", ErrSealed, op))
	}
}

// RegisterBlueprint registers bp under its name, or the MountAs name.
// Registering the same blueprint under a name it already holds replays its
// routes without merging its registries again.
func (a *App) RegisterBlueprint(bp *blueprint.Blueprint, opts ...blueprint.MountOption) error {
	if a.Sealed() {
		return ErrSealed
	}
	o := blueprint.ApplyMount(opts...)
	name := o.Name
	if name == "" {
		name = bp.Name()
	}
	if registry.HasSeparator(name) {
		return fmt.Errorf("%w: %q", blueprint.ErrInvalidName, name)
	}

	existing, seen := a.blueprints[name]
	if seen && existing != bp {
		return fmt.Errorf("%w: %q is taken by %s, use MountAs to register %s under another name",
			ErrNameCollision, name, existing.ImportName(), bp.ImportName())
	}
	if !seen {
		a.blueprints[name] = bp
	}

	bp.Register(a, o, !seen)
	a.logger.Debug("blueprint registered",
		logger.Blueprint(name),
		slog.Bool("first", !seen),
		logger.Count("rules", len(a.rules.Rules())),
	)
	return nil
}

// Blueprints returns the registered blueprints by effective name.
func (a *App) Blueprints() map[string]*blueprint.Blueprint {
	return maps.Clone(a.blueprints)
}

// AddURLRule adds a rule for endpoint. An empty endpoint is derived from
// the declared name of h. A non-nil h becomes the view function of the
// endpoint; binding an endpoint to a second, different function panics
// with ErrEndpointConflict.
func (a *App) AddURLRule(pattern, endpoint string, h handler.HandlerFunc, o router.Options) {
	a.checkSealed("AddURLRule")
	if endpoint == "" {
		endpoint = handler.Name(h)
		if endpoint == "" || registry.HasSeparator(endpoint) {
			panic(fmt.Errorf("%w: %q, pass an endpoint explicitly", blueprint.ErrInvalidHandlerName, endpoint))
		}
	}

	if h != nil {
		a.checkOrigin(endpoint, h)
	}
	if _, err := a.rules.Add(pattern, endpoint, o); err != nil {
		panic(err)
	}
	if h != nil {
		a.bind(endpoint, h)
	}
}

// checkOrigin panics when endpoint is known to be bound to a function
// other than h. Views merged from blueprint registries have no recorded
// origin and are accepted.
func (a *App) checkOrigin(endpoint string, h handler.HandlerFunc) {
	if prev, known := a.origins[endpoint]; known && prev != reflect.ValueOf(h).Pointer() {
		panic(fmt.Errorf("%w: %s", ErrEndpointConflict, endpoint))
	}
}

func (a *App) bind(endpoint string, h handler.HandlerFunc) {
	if _, bound := a.reg.ViewFunctions[endpoint]; !bound {
		a.reg.ViewFunctions[endpoint] = a.adapter.View(h)
	}
	if _, known := a.origins[endpoint]; !known {
		a.origins[endpoint] = reflect.ValueOf(h).Pointer()
	}
}

// Route adds a rule whose endpoint is the declared name of h.
func (a *App) Route(pattern string, h handler.HandlerFunc, opts ...router.Option) {
	a.AddURLRule(pattern, "", h, router.Apply(opts...))
}

// Get adds a GET rule whose endpoint is the declared name of h.
func (a *App) Get(pattern string, h handler.HandlerFunc, opts ...router.Option) {
	a.Route(pattern, h, append([]router.Option{router.WithMethods("GET")}, opts...)...)
}

// Post adds a POST rule whose endpoint is the declared name of h.
func (a *App) Post(pattern string, h handler.HandlerFunc, opts ...router.Option) {
	a.Route(pattern, h, append([]router.Option{router.WithMethods("POST")}, opts...)...)
}

// Endpoint binds h to endpoint without adding a rule.
func (a *App) Endpoint(endpoint string, h handler.HandlerFunc) {
	a.checkSealed("Endpoint")
	if h == nil {
		panic(fmt.Errorf("%w: Endpoint", scaffold.ErrNilCallable))
	}
	a.checkOrigin(endpoint, h)
	a.reg.Endpoint(endpoint, a.adapter.View(h))
	a.origins[endpoint] = reflect.ValueOf(h).Pointer()
}

// BeforeRequest registers a hook run before every view.
func (a *App) BeforeRequest(f handler.BeforeFunc) {
	a.reg.BeforeRequest(a.adapter.Before(f))
}

// AfterRequest registers a hook run after every view, in reverse order.
func (a *App) AfterRequest(f handler.AfterFunc) {
	a.reg.AfterRequest(a.adapter.After(f))
}

// TeardownRequest registers a hook run when every request ends.
func (a *App) TeardownRequest(f handler.TeardownFunc) {
	a.reg.TeardownRequest(a.adapter.Teardown(f))
}

// URLDefaults registers a function filling values before URLs are built.
func (a *App) URLDefaults(f handler.URLDefaultFunc) {
	a.reg.URLDefaults(f)
}

// URLValuePreprocessor registers a function run on the matched URL values.
func (a *App) URLValuePreprocessor(f handler.URLValuePreprocessor) {
	a.reg.URLValuePreprocessor(f)
}

// ContextProcessor registers a function adding data to every rendered template.
func (a *App) ContextProcessor(f handler.ContextProcessor) {
	a.reg.ContextProcessor(f)
}

// RegisterErrorHandler registers h for target, see scaffold.Scaffold.RegisterErrorHandler.
func (a *App) RegisterErrorHandler(target any, h handler.ErrorHandler) {
	a.reg.RegisterErrorHandler(target, a.adapter.Error(h))
}

// BeforeFirstRequest registers a function run once, before the first request.
func (a *App) BeforeFirstRequest(f handler.FirstRequestFunc) {
	a.checkSealed("BeforeFirstRequest")
	if f == nil {
		panic(fmt.Errorf("%w: BeforeFirstRequest", scaffold.ErrNilCallable))
	}
	a.firstRequest = append(a.firstRequest, a.adapter.FirstRequest(f))
}

// TemplateFilter registers a template filter; an empty name uses the declared name of fn.
func (a *App) TemplateFilter(name string, fn any) {
	a.checkSealed("TemplateFilter")
	a.env.Filters[templateName(name, fn)] = fn
}

// TemplateTest registers a template test; an empty name uses the declared name of fn.
func (a *App) TemplateTest(name string, fn any) {
	a.checkSealed("TemplateTest")
	a.env.Tests[templateName(name, fn)] = fn
}

// TemplateGlobal registers a template global; an empty name uses the declared name of v.
func (a *App) TemplateGlobal(name string, v any) {
	a.checkSealed("TemplateGlobal")
	a.env.Globals[templateName(name, v)] = v
}

func templateName(name string, fn any) string {
	if name != "" {
		return name
	}
	name = handler.Name(fn)
	if name == "" || registry.HasSeparator(name) {
		panic(fmt.Errorf("%w: %q, pass a template name explicitly", blueprint.ErrInvalidHandlerName, name))
	}
	return name
}

func (a *App) runFirstRequest(ctx context.Context) {
	a.firstOnce.Do(func() {
		for _, f := range a.firstRequest {
			f(ctx)
		}
	})
}
