package api

// SessionRequest is the POST /api/session body: the editor announces
// who they are. There are no passwords; the token only attributes
// changes and scopes undo history.
type SessionRequest struct {
	UserID string `json:"user_id"`
}

// SessionResponse carries the issued session token.
type SessionResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// HealthResponse answers GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
}
