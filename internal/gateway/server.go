package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kushal45/OMS-sub001/internal/auth"
	"github.com/kushal45/OMS-sub001/internal/common/config"
	"github.com/kushal45/OMS-sub001/internal/notify"
	"github.com/kushal45/OMS-sub001/internal/realtime"
	"github.com/kushal45/OMS-sub001/pkg/metrics"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// Server is the edge gateway: correlation tracing, token validation, the
// reverse proxy, the realtime surface, and the management API on one gin
// router.
type Server struct {
	logger     *zap.Logger
	cfg        *config.GatewayConfig
	router     *gin.Engine
	httpServer *http.Server
	authn      *auth.HTTPAuthenticator
	hub        *realtime.Hub
	ws         *realtime.WSHandler
	dispatcher *notify.Dispatcher
	proxy      *Proxy
	metrics    *metrics.Metrics
}

// NewServer wires the gateway components onto a router
func NewServer(
	logger *zap.Logger,
	cfg *config.GatewayConfig,
	authn *auth.HTTPAuthenticator,
	hub *realtime.Hub,
	ws *realtime.WSHandler,
	dispatcher *notify.Dispatcher,
	table *RouteTable,
	m *metrics.Metrics,
) *Server {
	s := &Server{
		logger:     logger.Named("gateway.server"),
		cfg:        cfg,
		router:     gin.New(),
		authn:      authn,
		hub:        hub,
		ws:         ws,
		dispatcher: dispatcher,
		metrics:    m,
	}
	s.proxy = NewProxy(logger, table, cfg.Proxy, m)

	// the tracer must run first so every later error response carries the id
	s.router.Use(s.correlationMiddleware())
	s.router.Use(s.loggerMiddleware())
	s.router.Use(s.recoveryMiddleware())
	s.router.Use(s.metrics.GinMiddleware())
	if cfg.Tracing.Enabled {
		s.router.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	if cfg.CORS != nil {
		cors := s.corsMiddleware(cfg.CORS)
		s.router.OPTIONS("/*path", cors)
		s.router.Use(cors)
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	if s.cfg.Metrics.Enabled {
		s.router.GET("/metrics", s.metrics.GinHandler())
	}

	s.router.GET(s.cfg.Realtime.Path, s.ws.Handle)

	admin := s.router.Group("/gateway", s.requireAuthMiddleware())
	s.registerAdminRoutes(admin)

	// all remaining traffic: token validation, then the reverse proxy
	s.router.NoRoute(s.authMiddleware(), s.proxy.Handler())
}

// Router exposes the underlying engine, mainly for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts serving and blocks until the listener stops
func (s *Server) Run() error {
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: s.router,
	}
	s.logger.Info("gateway listening", zap.Int("port", s.cfg.Port))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
