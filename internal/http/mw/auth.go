// Package mw contains HTTP middleware for the check service.
package mw

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Bangnus/Check-Unfollows-IG/internal/auth"
	"github.com/Bangnus/Check-Unfollows-IG/internal/logging"
)

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	// Verifier validates bearer tokens. Nil means no secret is configured
	// and requests pass through unauthenticated.
	Verifier *auth.Verifier

	// AllowUnauthenticated skips verification even when a Verifier is set.
	AllowUnauthenticated bool

	Logger *slog.Logger
}

// Auth returns middleware requiring a valid bearer token when a verifier
// is configured.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if cfg.Verifier == nil || cfg.AllowUnauthenticated {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}
			token := strings.TrimPrefix(header, "Bearer ")

			claims, err := cfg.Verifier.VerifyToken(token)
			if err != nil {
				if cfg.Logger != nil {
					cfg.Logger.Debug("JWT validation failed", "error", err)
				}
				msg := "invalid token"
				if errors.Is(err, auth.ErrTokenExpired) {
					msg = "token expired"
				}
				writeError(w, http.StatusUnauthorized, msg)
				return
			}

			ctx := auth.WithClaims(r.Context(), claims)
			ctx = logging.WithCaller(ctx, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
