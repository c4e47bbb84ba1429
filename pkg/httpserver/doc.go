// Package httpserver provides a small net/http host with graceful,
// signal-aware shutdown, configurable timeouts, and structured logging
// via slog. It is the process host for the REST layer in pkg/rest.
//
// The core type is Server:
//
//   - Run binds the listener, serves the handler, and blocks until the
//     context is cancelled or an interrupt/TERM signal arrives, then
//     drains in-flight requests within the shutdown deadline.
//
//   - Construction goes through New or NewFromConfig with Option
//     helpers such as WithAddr, WithReadTimeout and WithLogger.
//
//   - Started returns a channel closed once the listener is accepting
//     connections, for start-up ordering.
//
//   - HealthCheckHandler returns an http.HandlerFunc usable as both
//     liveness and readiness probes.
//
// # Usage
//
//	import (
//		"context"
//		"log/slog"
//		"time"
//
//		"github.com/go-chi/chi/v5"
//
//		"github.com/agrovia/notifykit/pkg/httpserver"
//		"github.com/agrovia/notifykit/pkg/rest"
//	)
//
//	func main() {
//		r := chi.NewRouter()
//		r.Get("/healthz", httpserver.HealthCheckHandler(context.Background(), slog.Default()))
//		r.Mount("/api/v1", rest.NewController(n, registry).Router())
//
//		srv := httpserver.New(
//			httpserver.WithAddr(":8080"),
//			httpserver.WithShutdownTimeout(10*time.Second),
//		)
//
//		if err := srv.Run(context.Background(), r); err != nil {
//			slog.Error("server stopped", "err", err)
//		}
//	}
//
// # Errors
//
// Run wraps bind and serve failures with ErrStart; Shutdown wraps
// drain failures with ErrShutdown. Use errors.Is to distinguish them.
package httpserver
