package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/Bangnus/Check-Unfollows-IG/internal/logging"
)

func TestLogContext(t *testing.T) {
	var got string
	h := middleware.RequestID(LogContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = logging.GetRequestID(r.Context())
	})))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got != "req-123" {
		t.Errorf("request id = %q, want req-123", got)
	}
}
