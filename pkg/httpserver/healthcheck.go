package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/agrovia/notifykit/pkg/logger"
)

// HealthCheckHandler returns a probe handler. With no checks it is a
// liveness probe answering 200 "ALIVE". With checks it is a readiness
// probe: every check must succeed for 200 "READY", otherwise it answers
// 500 "NOT_READY". Typical checks are postgres.Healthcheck and
// redis.Healthcheck closures.
func HealthCheckHandler(ctx context.Context, log *slog.Logger, checks ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(checks) == 0 {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ALIVE"))
			return
		}

		for _, check := range checks {
			if err := check(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed", logger.Error(err))
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("NOT_READY"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	}
}
