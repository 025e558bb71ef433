package gateway

import (
	"net/http"
	"strings"

	"github.com/kushal45/OMS-sub001/internal/common/cnst"
	"github.com/kushal45/OMS-sub001/internal/common/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	correlationKey = "correlationId"
	principalKey   = "principal"
)

// CorrelationID returns the correlation id stamped on the request
func CorrelationID(c *gin.Context) string {
	return c.GetString(correlationKey)
}

// correlationMiddleware stamps every request with a correlation id,
// generating one when absent, and reflects it onto the response. It runs
// before everything else so error responses emitted later still carry it.
// The id is also written back onto the request header so the proxy forwards
// it to upstreams unchanged.
func (s *Server) correlationMiddleware() gin.HandlerFunc {
	header := s.cfg.Proxy.CorrelationHeader
	return func(c *gin.Context) {
		cid := c.GetHeader(header)
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Set(correlationKey, cid)
		c.Request.Header.Set(header, cid)
		c.Header(header, cid)
		c.Next()
	}
}

// loggerMiddleware logs request and response lines with the correlation id
func (s *Server) loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.logger.Info("incoming request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("remote_addr", c.Request.RemoteAddr),
			zap.String("correlation_id", CorrelationID(c)),
		)

		c.Next()

		s.logger.Info("outgoing response",
			zap.Int("status", c.Writer.Status()),
			zap.Int("size", c.Writer.Size()),
			zap.String("correlation_id", CorrelationID(c)),
		)
	}
}

// recoveryMiddleware recovers from panics and returns 500 with the
// correlation id preserved
func (s *Server) recoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("correlation_id", CorrelationID(c)),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":         "internal server error",
					"correlationId": CorrelationID(c),
				})
			}
		}()
		c.Next()
	}
}

// authMiddleware validates bearer tokens for protected prefixes before the
// proxy runs. A rejected credential short-circuits with 401; the request
// never reaches the router. Successful validation attaches the serialized
// principal for the upstream to trust-but-verify.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// never trust a client-supplied principal header
		c.Request.Header.Del(cnst.HeaderForwardedUser)

		if !s.authn.RequiresAuth(c.Request.URL.Path) {
			c.Next()
			return
		}

		principal, err := s.authn.Authenticate(c.Request.Context(), c.Request)
		if err != nil {
			s.logger.Debug("request rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("correlation_id", CorrelationID(c)),
				zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": cnst.MsgUnauthorizedToken,
			})
			return
		}

		if !principal.IsZero() {
			c.Set(principalKey, principal)
			c.Request.Header.Set(cnst.HeaderForwardedUser, principal.Serialize())
		}
		c.Next()
	}
}

// requireAuthMiddleware guards the management surface: every call needs a
// valid principal, the public allow-list does not apply here.
func (s *Server) requireAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := s.authn.AuthenticateToken(c.Request.Context(), c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": cnst.MsgUnauthorizedToken,
			})
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// corsMiddleware handles CORS for configured origins
func (s *Server) corsMiddleware(cors *config.CORSConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			c.Next()
			return
		}

		allowed := false
		for _, allowedOrigin := range cors.AllowOrigins {
			if allowedOrigin == "*" || origin == allowedOrigin {
				allowed = true
				c.Header("Access-Control-Allow-Origin", allowedOrigin)
				break
			}
		}

		if !allowed {
			c.Next()
			return
		}

		if len(cors.AllowMethods) > 0 {
			c.Header("Access-Control-Allow-Methods", strings.Join(cors.AllowMethods, ", "))
		}

		if len(cors.AllowHeaders) > 0 {
			c.Header("Access-Control-Allow-Headers", strings.Join(cors.AllowHeaders, ", "))
		}

		if len(cors.ExposeHeaders) > 0 {
			c.Header("Access-Control-Expose-Headers", strings.Join(cors.ExposeHeaders, ", "))
		}

		if cors.AllowCredentials {
			c.Header("Access-Control-Allow-Credentials", "true")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
