package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Verifier delegates token verification to the remote identity service.
// It never retries: a transport failure or non-success response is an
// authentication rejection reported to the caller.
type Verifier struct {
	logger   *zap.Logger
	endpoint string
	client   *http.Client
}

// NewVerifier creates a verifier for the given endpoint. The timeout is
// applied per call and is intentionally distinct from the proxy timeout so a
// hanging identity service cannot stall the whole request pipeline.
func NewVerifier(logger *zap.Logger, endpoint string, timeout time.Duration) *Verifier {
	return &Verifier{
		logger:   logger.Named("auth.verifier"),
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Verify checks the token against the identity service and builds a
// principal from the response body.
func (v *Verifier) Verify(ctx context.Context, token string) (Principal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, nil)
	if err != nil {
		return Principal{}, fmt.Errorf("create verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Warn("identity verification call failed", zap.Error(err))
		return Principal{}, ErrInvalidToken
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		v.logger.Warn("failed to read verification response", zap.Error(err))
		return Principal{}, ErrInvalidToken
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		v.logger.Debug("identity service rejected token",
			zap.Int("status_code", resp.StatusCode))
		return Principal{}, ErrInvalidToken
	}

	p := principalFromBody(body)
	if p.UserID == "" {
		v.logger.Warn("verification response missing user id",
			zap.Int("status_code", resp.StatusCode))
		return Principal{}, ErrInvalidToken
	}
	return p, nil
}

// principalFromBody extracts user id and role from the identity service
// response. Auth services differ on whether they nest the user object, so a
// few common shapes are accepted.
func principalFromBody(body []byte) Principal {
	root := gjson.ParseBytes(body)

	userID := firstString(root, "user.id", "data.user.id", "userId", "id")
	role := firstString(root, "user.role", "data.user.role", "role")

	claims := make(map[string]any)
	if user := root.Get("user"); user.IsObject() {
		user.ForEach(func(key, value gjson.Result) bool {
			claims[key.String()] = value.Value()
			return true
		})
	}

	return Principal{UserID: userID, Role: role, Claims: claims}
}

func firstString(root gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := root.Get(p); v.Exists() {
			return v.String()
		}
	}
	return ""
}
