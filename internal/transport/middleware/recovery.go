package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/nkaumov/kurs-zakat/pkg/logger"
)

// RecoveryMiddleware turns a panic into a logged 500 without exposing the
// panic value to the client.
func RecoveryMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					lg := logger.From(r.Context())
					if lg == nil {
						lg = base
					}
					lg.Error("panic recovered",
						"error", err,
						"method", r.Method,
						"url", r.URL.String(),
						"stack", string(debug.Stack()))

					http.Error(w, "Internal server error", http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
