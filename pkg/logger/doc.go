// Package logger provides a context-aware wrapper around Go's slog
// package with functional options for configuration, helper attribute
// constructors, and transparent injection of values stored in
// context.Context.
//
// The attribute helpers in attr.go keep key naming consistent across the
// engine: every component logs notification ids, channels, and providers
// under the same keys, which keeps delivery traces queryable.
//
//	log := logger.New(logger.WithProduction("notifykit"))
//	log.InfoContext(ctx, "notification dispatched",
//	    logger.NotificationID(n.ID),
//	    logger.Channel(string(n.Channel)),
//	)
package logger
