package app

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/blueprint/core/config"
	"github.com/dmitrymomot/blueprint/core/router"
	"github.com/dmitrymomot/blueprint/core/server"
)

// Execute runs the command tree with args. Blueprint commands are attached
// at registration, so Execute is called after every blueprint is registered.
func (a *App) Execute(ctx context.Context, args ...string) error {
	if args == nil {
		args = []string{}
	}
	a.cli.SetArgs(args)
	return a.cli.ExecuteContext(ctx)
}

// ListenAndServe serves the application with cfg until ctx is canceled.
func (a *App) ListenAndServe(ctx context.Context, cfg server.Config) error {
	srv, err := server.NewFromConfig(cfg, server.WithLogger(a.logger))
	if err != nil {
		return err
	}
	return srv.Run(ctx, a)
}

func (a *App) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the application over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cfg server.Config
			if err := config.Load(&cfg); err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			return a.ListenAndServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address, defaults to SERVER_ADDR")
	return cmd
}

func (a *App) routesCommand() *cobra.Command {
	var sortBy string
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the URL rules of the application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rules := a.rules.Rules()
			switch sortBy {
			case "endpoint":
				slices.SortStableFunc(rules, func(x, y *router.Rule) int {
					return strings.Compare(x.Endpoint, y.Endpoint)
				})
			case "rule":
				slices.SortStableFunc(rules, func(x, y *router.Rule) int {
					return strings.Compare(x.Pattern, y.Pattern)
				})
			case "match":
			default:
				return fmt.Errorf("unknown sort key %q, use endpoint, rule or match", sortBy)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "Endpoint\tMethods\tRule")
			for _, r := range rules {
				pattern := r.Pattern
				if r.Subdomain != "" {
					pattern = r.Subdomain + ":" + pattern
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Endpoint, strings.Join(r.Methods, ", "), pattern)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&sortBy, "sort", "s", "endpoint", "sort by endpoint, rule or match order")
	return cmd
}
