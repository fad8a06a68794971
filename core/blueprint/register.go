package blueprint

import (
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/blueprint/core/handler"
	"github.com/dmitrymomot/blueprint/core/logger"
	"github.com/dmitrymomot/blueprint/core/registry"
	"github.com/dmitrymomot/blueprint/core/static"
)

// Register registers the blueprint on app. It is called by the
// application, which decides whether this is the first registration of the
// blueprint on it.
//
// On the first registration the blueprint's registries are merged into the
// application's, keyed by the effective name and adapted through
// app.Adapter. Every registration replays the deferred actions and
// attaches the blueprint's commands.
func (bp *Blueprint) Register(app App, opts MountOptions, first bool) {
	bp.registeredOnce = true
	state := bp.MakeSetupState(app, opts, first)

	if bp.HasStaticFolder() {
		if err := static.Check(bp.StaticFolder()); err != nil && first {
			app.Logger().Warn("blueprint static folder is not available",
				logger.Blueprint(state.Name),
				logger.Error(err),
			)
		}
		state.AddURLRule(bp.StaticURLPath()+"/{"+static.Param+"...}", "static", bp.SendStaticFile)
	}

	if first {
		bp.merge(app, state.Name)
	}

	for _, fn := range bp.deferred {
		fn(state)
	}

	bp.attachCLI(app.CLI(), state.Name, opts)
}

func (bp *Blueprint) merge(app App, name string) {
	reg := app.Registries()
	adapter := app.Adapter()
	rekey := func(key string) string {
		return registry.Join(name, key)
	}

	if reg.ViewFunctions == nil {
		reg.ViewFunctions = make(map[string]handler.HandlerFunc, len(bp.ViewFunctions))
	}
	for _, endpoint := range slices.Sorted(maps.Keys(bp.ViewFunctions)) {
		key := registry.Join(name, endpoint)
		if _, ok := reg.ViewFunctions[key]; ok {
			continue
		}
		reg.ViewFunctions[key] = adapter.View(bp.ViewFunctions[endpoint])
	}

	registry.ExtendErrors(&reg.ErrorHandlers, &bp.ErrorHandlers, rekey, adapter.Error)
	registry.Extend(&reg.BeforeRequestFuncs, &bp.BeforeRequestFuncs, rekey, adapter.Before)
	registry.Extend(&reg.AfterRequestFuncs, &bp.AfterRequestFuncs, rekey, adapter.After)
	registry.Extend(&reg.TeardownRequestFuncs, &bp.TeardownRequestFuncs, rekey, adapter.Teardown)
	registry.Extend(&reg.URLDefaultFuncs, &bp.URLDefaultFuncs, rekey, nil)
	registry.Extend(&reg.URLValuePreprocessors, &bp.URLValuePreprocessors, rekey, nil)
	registry.Extend(&reg.ContextProcessors, &bp.ContextProcessors, rekey, nil)

	if bp.templateFolder != "" {
		app.Templates().AddSearchPath(bp.TemplateFolder())
	}
}

// attachCLI adds the blueprint's commands to root. The group name comes from
// the mount options, then the blueprint, then the effective name; an empty
// group puts the commands on root itself.
func (bp *Blueprint) attachCLI(root *cobra.Command, name string, opts MountOptions) {
	if root == nil || !bp.cli.HasSubCommands() {
		return
	}

	group := name
	if bp.cliGroup != nil {
		group = *bp.cliGroup
	}
	if opts.CLIGroup != nil {
		group = *opts.CLIGroup
	}

	if group == "" {
		for _, cmd := range bp.cli.Commands() {
			replaceCommand(root, cmd)
		}
		return
	}
	bp.cli.Use = group
	replaceCommand(root, bp.cli)
}

// replaceCommand adds cmd to root, removing any other command of the same name.
func replaceCommand(root, cmd *cobra.Command) {
	for _, existing := range root.Commands() {
		if existing != cmd && existing.Name() == cmd.Name() {
			root.RemoveCommand(existing)
		}
	}
	if cmd.Parent() != root {
		root.AddCommand(cmd)
	}
}
