package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/blueprint/core/blueprint"
	"github.com/dmitrymomot/blueprint/core/handler"
	"github.com/dmitrymomot/blueprint/core/logger"
	"github.com/dmitrymomot/blueprint/core/response"
	"github.com/dmitrymomot/blueprint/core/router"
)

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

// Liveness indicates if the service process is running.
// Always returns "ALIVE" with 200 OK. No dependency checks.
func Liveness(handler.Context) handler.Response {
	return response.String("ALIVE")
}

// NoContent returns HTTP 204 without body. Ideal for high-frequency checks.
func NoContent(handler.Context) handler.Response {
	return response.NoContent()
}

// Readiness verifies all service dependencies are functioning.
// Returns "READY" if all checks pass, 503 Service Unavailable if any fail.
func Readiness(log *slog.Logger, checks ...Check) handler.HandlerFunc {
	if log == nil {
		log = logger.Nop()
	}
	return func(ctx handler.Context) handler.Response {
		if err := run(ctx, checks); err != nil {
			log.ErrorContext(ctx, "readiness check failed", logger.Error(err))
			return response.Error(response.ErrServiceUnavailable)
		}
		return response.String("READY")
	}
}

func run(ctx context.Context, checks []Check) error {
	var errs []error
	for _, check := range checks {
		if err := check(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Blueprint returns the "health" blueprint serving the probes under /health.
func Blueprint(log *slog.Logger, checks ...Check) *blueprint.Blueprint {
	bp := blueprint.New("health", "github.com/dmitrymomot/blueprint/core/health",
		blueprint.WithURLPrefix("/health"),
		blueprint.WithLogger(log),
	)
	get := router.WithMethods(http.MethodGet)
	bp.AddURLRule("/live", "live", Liveness, get)
	bp.AddURLRule("/ready", "ready", Readiness(log, checks...), get)
	bp.AddURLRule("/ping", "ping", NoContent, get)

	bp.CLI().AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Run the readiness checks once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := run(cmd.Context(), checks); err != nil {
				return fmt.Errorf("not ready: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "READY")
			return nil
		},
	})
	return bp
}
