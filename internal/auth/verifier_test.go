package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestVerifier(t *testing.T, handler http.HandlerFunc) (*Verifier, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewVerifier(zap.NewNop(), srv.URL, time.Second), srv
}

func TestVerifier_AcceptsNestedUser(t *testing.T) {
	var gotAuth string
	v, _ := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user":{"id":"u-7","role":"admin","email":"a@b.c"}}`))
	})

	p, err := v.Verify(context.Background(), "tok-123")
	assert.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "u-7", p.UserID)
	assert.Equal(t, "admin", p.Role)
	assert.Equal(t, "a@b.c", p.Claims["email"])
}

func TestVerifier_AcceptsFlatShape(t *testing.T) {
	v, _ := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"userId":"u-9","role":"customer"}`))
	})

	p, err := v.Verify(context.Background(), "tok")
	assert.NoError(t, err)
	assert.Equal(t, "u-9", p.UserID)
	assert.Equal(t, "customer", p.Role)
}

func TestVerifier_AcceptsDataWrappedShape(t *testing.T) {
	v, _ := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"user":{"id":"u-3","role":"staff"}}}`))
	})

	p, err := v.Verify(context.Background(), "tok")
	assert.NoError(t, err)
	assert.Equal(t, "u-3", p.UserID)
	assert.Equal(t, "staff", p.Role)
}

func TestVerifier_RejectsNonSuccessStatus(t *testing.T) {
	v, _ := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"nope"}`))
	})

	p, err := v.Verify(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.True(t, p.IsZero())
}

func TestVerifier_RejectsMissingUserID(t *testing.T) {
	v, _ := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	_, err := v.Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifier_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	v := NewVerifier(zap.NewNop(), srv.URL, time.Second)

	_, err := v.Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifier_Timeout(t *testing.T) {
	v, _ := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	v.client.Timeout = 20 * time.Millisecond

	start := time.Now()
	_, err := v.Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Less(t, time.Since(start), 150*time.Millisecond)
}
