package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/masterdata/internal/server/handlers"
)

// Session resolves the optional actor session token. Requests without a
// token pass through anonymous; handlers then fall back to the user_id
// carried in the payload or query. A presented-but-invalid token is
// rejected so a silently expired session cannot misattribute edits.
func Session(logger *slog.Logger, cfg handlers.SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("Invalid Authorization header format")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"invalid_token"}`))
				return
			}

			actor, err := handlers.ValidateSessionToken(cfg, parts[1])
			if err != nil {
				logger.Warn("Invalid session token", "error", err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"invalid_token"}`))
				return
			}

			ctx := context.WithValue(r.Context(), handlers.ActorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
