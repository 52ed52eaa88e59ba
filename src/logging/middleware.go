package logging

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Middleware puts a request-scoped logger in the context and logs every
// completed request. It expects chi's RequestID middleware to run first.
func Middleware(base *Logger) func(http.Handler) http.Handler {
	httpLogger := base.WithComponent(ComponentHTTP)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLogger := base.With(FieldRequestID, middleware.GetReqID(r.Context()))
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(NewContext(r.Context(), reqLogger)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}
			httpLogger.Log(r.Context(), level, "request completed",
				FieldRequestID, middleware.GetReqID(r.Context()),
				FieldMethod, r.Method,
				FieldPath, r.URL.Path,
				FieldStatus, status,
				FieldDuration, time.Since(start).Milliseconds(),
			)
		})
	}
}
