package mw

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/Bangnus/Check-Unfollows-IG/internal/logging"
)

// LogContext copies chi's request ID into the logging context.
// Must run after middleware.RequestID.
func LogContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			r = r.WithContext(logging.WithRequestID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
