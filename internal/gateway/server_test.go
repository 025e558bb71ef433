package gateway

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kushal45/OMS-sub001/internal/auth"
	"github.com/kushal45/OMS-sub001/internal/auth/jwt"
	"github.com/kushal45/OMS-sub001/internal/common/config"
	"github.com/kushal45/OMS-sub001/internal/notify"
	"github.com/kushal45/OMS-sub001/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// gatewayFixture is a fully wired gateway with stubbed identity and upstream
// services.
type gatewayFixture struct {
	server        *Server
	hub           *realtime.Hub
	identityCalls atomic.Int64

	upstreamURL     string
	lastUpstreamReq atomic.Pointer[http.Request]
}

func newGatewayFixture(t *testing.T, mutate func(cfg *config.GatewayConfig)) *gatewayFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := &gatewayFixture{}

	identity := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.identityCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"user":{"id":"u-1","role":"customer"}}`))
	}))
	t.Cleanup(identity.Close)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clone := r.Clone(r.Context())
		f.lastUpstreamReq.Store(clone)
		w.Header().Set("X-Upstream", "yes")
		_, _ = w.Write([]byte("upstream-ok"))
	}))
	t.Cleanup(upstream.Close)
	f.upstreamURL = upstream.URL

	cfg := &config.GatewayConfig{
		Port: 0,
		Auth: config.AuthConfig{
			VerifyURL:         identity.URL,
			VerifyTimeout:     time.Second,
			SecretKey:         "handshake-secret",
			TokenDuration:     time.Hour,
			ProtectedPrefixes: []string{"/auth", "/api"},
			PublicRoutes: []config.PublicRoute{
				{Method: "POST", Suffix: "/login"},
			},
		},
		Proxy: config.ProxyConfig{
			Timeout:           2 * time.Second,
			CorrelationHeader: "X-Correlation-ID",
		},
		Realtime: config.RealtimeConfig{
			Path:         "/ws/notifications",
			QueueSize:    16,
			PingInterval: time.Second,
			WriteTimeout: time.Second,
			ReadLimit:    64 * 1024,
		},
	}
	if mutate != nil {
		mutate(cfg)
	}

	logger := zap.NewNop()
	verifier := auth.NewVerifier(logger, cfg.Auth.VerifyURL, cfg.Auth.VerifyTimeout)
	authn := auth.NewHTTPAuthenticator(logger, verifier, &cfg.Auth)

	svc, err := jwt.NewService(jwt.Config{SecretKey: cfg.Auth.SecretKey, Duration: cfg.Auth.TokenDuration})
	require.NoError(t, err)
	sessionAuthn := auth.NewSessionAuthenticator(logger, svc)

	registry := realtime.NewRegistry(logger)
	f.hub = realtime.NewHub(logger, registry, nil, nil)
	ws := realtime.NewWSHandler(logger, f.hub, sessionAuthn, cfg.Realtime, cfg.CORS, nil)
	dispatcher := notify.NewDispatcher(logger, f.hub)

	table := NewRouteTable(logger, []RouteEntry{
		{Prefix: "/auth", Upstream: upstream.URL},
		{Prefix: "/api", Upstream: upstream.URL},
	})

	f.server = NewServer(logger, cfg, authn, f.hub, ws, dispatcher, table, nil)
	return f
}

func (f *gatewayFixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.server.Router().ServeHTTP(w, req)
	return w
}

func TestServer_Health(t *testing.T) {
	f := newGatewayFixture(t, nil)

	w := f.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestServer_ProxyForwardsAuthenticatedRequest(t *testing.T) {
	f := newGatewayFixture(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/42", nil)
	req.Header.Set("Authorization", "Bearer good")
	req.Header.Set("X-Correlation-ID", "cid-123")
	w := f.do(req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "upstream-ok", w.Body.String())
	assert.Equal(t, "yes", w.Header().Get("X-Upstream"))
	assert.Equal(t, "cid-123", w.Header().Get("X-Correlation-ID"))

	up := f.lastUpstreamReq.Load()
	require.NotNil(t, up)
	assert.Equal(t, "/api/orders/42", up.URL.Path)
	assert.Equal(t, "cid-123", up.Header.Get("X-Correlation-ID"))
	assert.JSONEq(t,
		`{"userId":"u-1","role":"customer","claims":{"id":"u-1","role":"customer"}}`,
		up.Header.Get("X-Forwarded-User"))
}

func TestServer_GeneratesCorrelationID(t *testing.T) {
	f := newGatewayFixture(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := f.do(req)

	cid := w.Header().Get("X-Correlation-ID")
	assert.NotEmpty(t, cid)

	up := f.lastUpstreamReq.Load()
	require.NotNil(t, up)
	assert.Equal(t, cid, up.Header.Get("X-Correlation-ID"))
}

func TestServer_RejectsInvalidToken(t *testing.T) {
	f := newGatewayFixture(t, nil)

	for _, setAuth := range []func(*http.Request){
		func(r *http.Request) {},
		func(r *http.Request) { r.Header.Set("Authorization", "Bearer bad") },
		func(r *http.Request) { r.Header.Set("Authorization", "garbage") },
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		setAuth(req)
		w := f.do(req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"message":"Unauthorized Token"}`, w.Body.String())
	}
	assert.Nil(t, f.lastUpstreamReq.Load(), "rejected requests never reach the upstream")
}

func TestServer_PublicRouteSkipsAuth(t *testing.T) {
	f := newGatewayFixture(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	// a spoofed principal header must not survive to the upstream
	req.Header.Set("X-Forwarded-User", `{"userId":"u-999","role":"admin"}`)
	w := f.do(req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), f.identityCalls.Load())

	up := f.lastUpstreamReq.Load()
	require.NotNil(t, up)
	assert.Empty(t, up.Header.Get("X-Forwarded-User"))
}

func TestServer_UnprotectedPathBypassesAuth(t *testing.T) {
	f := newGatewayFixture(t, func(cfg *config.GatewayConfig) {
		cfg.Auth.ProtectedPrefixes = []string{"/api"}
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/profile-page", nil)
	w := f.do(req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), f.identityCalls.Load())
}

func TestServer_NoRouteFailsClosed(t *testing.T) {
	f := newGatewayFixture(t, nil)

	w := f.do(httptest.NewRequest(http.MethodGet, "/unrouted/path", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Proxy target not found", w.Body.String())
}

func TestServer_UpstreamFailureReturns502(t *testing.T) {
	f := newGatewayFixture(t, nil)

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead.Close()
	f.server.proxy.table = NewRouteTable(zap.NewNop(), []RouteEntry{
		{Prefix: "/", Upstream: dead.URL},
	})

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("X-Correlation-ID", "cid-502")
	w := f.do(req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"message":"Bad Gateway","correlationId":"cid-502"}`, w.Body.String())
}

func TestServer_UpstreamTimeoutReturns502(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer slow.Close()

	f := newGatewayFixture(t, func(cfg *config.GatewayConfig) {
		cfg.Proxy.Timeout = 50 * time.Millisecond
	})
	f.server.proxy.table = NewRouteTable(zap.NewNop(), []RouteEntry{
		{Prefix: "/", Upstream: slow.URL},
	})

	w := f.do(httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestServer_CORSPreflight(t *testing.T) {
	f := newGatewayFixture(t, func(cfg *config.GatewayConfig) {
		cfg.CORS = &config.CORSConfig{
			AllowOrigins:     []string{"http://app.example"},
			AllowMethods:     []string{"GET", "POST"},
			AllowHeaders:     []string{"Authorization"},
			AllowCredentials: true,
		}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
	req.Header.Set("Origin", "http://app.example")
	w := f.do(req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://app.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	// a disallowed origin gets no CORS headers back
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = f.do(req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
