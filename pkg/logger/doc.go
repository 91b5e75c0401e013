// Package logger provides a context-aware wrapper around Go's slog package
// adding functional options for configuration, helper attribute constructors,
// and transparent injection of values stored in context.Context.
//
// New creates a *slog.Logger configured by Option functions: output format
// (text or json), minimum level, static default attributes, and
// ContextExtractor callbacks that inject attributes pulled from a context
// value every time Handle is invoked. Internally the chosen handler is
// wrapped with LogHandlerDecorator, which runs the extractors before
// delegating.
//
//	log := logger.New(
//	    logger.WithProduction("notify"),
//	    logger.WithContextValue("correlation_id", ctxKeyCorrelationID),
//	)
//	logger.SetAsDefault(log)
//
// Helper constructors such as Group, Error, Channel, and Status live in
// attr.go and keep attribute naming consistent across the codebase. Error and
// Errors produce attributes only for non-nil errors, so they can be passed
// unconditionally.
package logger
