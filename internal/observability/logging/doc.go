// Package logging builds the process logger and carries request-scoped
// loggers through context.
//
// LOG_LEVEL selects the level (debug, info, warn, error) and LOG_FORMAT=text
// switches from JSON to text output.
//
//	logger := logging.NewLogger()
//	ctx = logging.WithLogger(ctx, logging.WithRequestID(ctx, logger))
//	logging.FromContext(ctx).Info("revision started")
package logging
