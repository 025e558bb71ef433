package auth

import (
	"encoding/json"
	"errors"
)

var (
	// ErrMissingToken indicates a missing or malformed Authorization header
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken indicates the identity service rejected the token
	ErrInvalidToken = errors.New("invalid bearer token")
	// ErrAuthFailed indicates a failed realtime handshake credential
	ErrAuthFailed = errors.New("authentication failed")
)

// Principal is the authenticated identity attached to a request or session.
// It lives for exactly one request or one session and is never persisted.
type Principal struct {
	UserID string         `json:"userId"`
	Role   string         `json:"role"`
	Claims map[string]any `json:"claims,omitempty"`
}

// IsZero reports whether no identity was established, e.g. for public routes
func (p Principal) IsZero() bool {
	return p.UserID == "" && p.Role == ""
}

// Serialize renders the principal as the JSON value forwarded to upstreams
func (p Principal) Serialize() string {
	b, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	return string(b)
}
