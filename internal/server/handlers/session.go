package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/masterdata/pkg/api"
)

// contextKey is the type for context keys set by the middleware.
type contextKey string

// ActorKey holds the session actor name in the request context.
const ActorKey contextKey = "actor"

// GetActor extracts the session actor from the context.
func GetActor(ctx context.Context) (string, bool) {
	actor, ok := ctx.Value(ActorKey).(string)
	return actor, ok && actor != ""
}

// SessionConfig configures actor session tokens. There is no password
// check behind these tokens; they exist to attribute edits and scope
// undo rings, not to guard anything.
type SessionConfig struct {
	Secret []byte
	TTL    time.Duration
}

// sessionClaims are the JWT claims of an actor session.
type sessionClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// IssueSessionToken signs a session token for the actor.
func IssueSessionToken(cfg SessionConfig, actor string) (string, int64, error) {
	now := time.Now()
	claims := sessionClaims{
		UserID: actor,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "masterdata",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(cfg.Secret)
	if err != nil {
		return "", 0, fmt.Errorf("sign session token: %w", err)
	}
	return signed, int64(cfg.TTL.Seconds()), nil
}

// ValidateSessionToken parses a session token and returns the actor.
func ValidateSessionToken(cfg SessionConfig, tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return cfg.Secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse session token: %w", err)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", fmt.Errorf("invalid session token")
	}
	return claims.UserID, nil
}

// SessionHandler issues actor session tokens.
type SessionHandler struct {
	logger *slog.Logger
	cfg    SessionConfig
}

// NewSessionHandler creates the session handler.
func NewSessionHandler(logger *slog.Logger, cfg SessionConfig) *SessionHandler {
	return &SessionHandler{logger: logger, cfg: cfg}
}

// HandleSession handles POST /api/session.
func (h *SessionHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	var req api.SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "niepoprawne body")
		return
	}

	actor := strings.TrimSpace(req.UserID)
	if actor == "" {
		writeError(w, http.StatusBadRequest, "user_required", "user_id jest wymagany")
		return
	}

	token, expiresIn, err := IssueSessionToken(h.cfg, actor)
	if err != nil {
		h.logger.Error("Failed to issue session token", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	h.logger.Info("Session issued", "user_id", actor)
	writeJSON(w, http.StatusOK, api.SessionResponse{Token: token, ExpiresIn: expiresIn})
}
