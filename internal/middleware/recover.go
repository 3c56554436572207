package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/getsentry/sentry-go"
	"github.com/templui/postline/internal/ctxkeys"
	"github.com/templui/postline/internal/handler"
)

// Recover turns a panic in a handler into a 500 InternalError response.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := wrap(w)
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			sentry.CurrentHub().Recover(rec)
			slog.Error("panic in handler",
				"request_id", ctxkeys.RequestID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			if !rw.written {
				handler.WriteError(rw, http.StatusInternalServerError, "InternalError", "An internal error occurred")
			}
		}()

		next.ServeHTTP(rw, r)
	})
}
