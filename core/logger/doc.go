// Package logger builds log/slog loggers and provides attribute helpers
// shared by the application and its blueprints.
//
//	log := logger.New(
//		logger.WithProduction("shop"),
//		logger.WithContextExtractors(requestIDFromContext),
//	)
//	log.Warn("blueprint modified after registration",
//		logger.Blueprint("admin"),
//		logger.Action("BeforeRequest"),
//	)
//
// Helpers such as Error, RequestID, Blueprint and Endpoint return an empty
// attribute for zero input, which slog drops.
package logger
