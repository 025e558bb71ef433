package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/kushal45/OMS-sub001/internal/auth/jwt"
	"github.com/kushal45/OMS-sub001/internal/common/config"
	"go.uber.org/zap"
)

// HTTPAuthenticator validates bearer tokens on proxied HTTP requests.
// Requests outside the protected prefixes and requests matching the public
// allow-list pass through with an empty principal and no outbound call.
type HTTPAuthenticator struct {
	logger    *zap.Logger
	verifier  *Verifier
	protected []string
	public    []config.PublicRoute
}

// NewHTTPAuthenticator creates an authenticator backed by the remote verifier
func NewHTTPAuthenticator(logger *zap.Logger, verifier *Verifier, cfg *config.AuthConfig) *HTTPAuthenticator {
	return &HTTPAuthenticator{
		logger:    logger.Named("auth.http"),
		verifier:  verifier,
		protected: cfg.ProtectedPrefixes,
		public:    cfg.PublicRoutes,
	}
}

// RequiresAuth reports whether the path falls under a protected prefix
func (a *HTTPAuthenticator) RequiresAuth(path string) bool {
	for _, prefix := range a.protected {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// IsPublic reports whether the method+path matches the public allow-list.
// The method is compared exactly and the path by suffix.
func (a *HTTPAuthenticator) IsPublic(method, path string) bool {
	for _, route := range a.public {
		if strings.EqualFold(route.Method, method) && strings.HasSuffix(path, route.Suffix) {
			return true
		}
	}
	return false
}

// Authenticate validates the request's bearer token. Public routes return an
// empty principal without contacting the identity service.
func (a *HTTPAuthenticator) Authenticate(ctx context.Context, r *http.Request) (Principal, error) {
	if a.IsPublic(r.Method, r.URL.Path) {
		return Principal{}, nil
	}

	token, err := BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return Principal{}, err
	}
	return a.verifier.Verify(ctx, token)
}

// AuthenticateToken validates the bearer token without consulting the public
// allow-list. The management surface uses it: every call there needs a valid
// principal.
func (a *HTTPAuthenticator) AuthenticateToken(ctx context.Context, r *http.Request) (Principal, error) {
	token, err := BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return Principal{}, err
	}
	return a.verifier.Verify(ctx, token)
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", ErrMissingToken
	}
	return parts[1], nil
}

// SessionAuthenticator validates realtime handshake credentials locally
// against the shared signing secret.
type SessionAuthenticator struct {
	logger *zap.Logger
	jwt    *jwt.Service
}

// NewSessionAuthenticator creates a handshake authenticator
func NewSessionAuthenticator(logger *zap.Logger, svc *jwt.Service) *SessionAuthenticator {
	return &SessionAuthenticator{
		logger: logger.Named("auth.session"),
		jwt:    svc,
	}
}

// Authenticate decodes and verifies a handshake token. Any failure, including
// an empty token, maps to ErrAuthFailed; the hub disconnects the session.
func (a *SessionAuthenticator) Authenticate(token string) (Principal, error) {
	if token == "" {
		return Principal{}, ErrAuthFailed
	}

	claims, err := a.jwt.ValidateToken(token)
	if err != nil {
		if !errors.Is(err, jwt.ErrExpiredToken) {
			a.logger.Debug("handshake token rejected", zap.Error(err))
		}
		return Principal{}, ErrAuthFailed
	}

	userID := claims.EffectiveUserID()
	if userID == "" {
		return Principal{}, ErrAuthFailed
	}

	return Principal{UserID: userID, Role: claims.Role}, nil
}
