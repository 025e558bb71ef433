package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/kushal45/OMS-sub001/internal/common/cnst"
	"github.com/kushal45/OMS-sub001/internal/common/config"
	"github.com/kushal45/OMS-sub001/pkg/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type proxyTargetKey struct{}

// Proxy streams requests to the upstream selected by the route table. One
// ReverseProxy instance serves every route; the target travels in the
// request context. Upstream failures become 502 responses carrying the
// correlation id - the gateway never retries on the caller's behalf.
type Proxy struct {
	logger            *zap.Logger
	table             *RouteTable
	timeout           time.Duration
	correlationHeader string
	metrics           *metrics.Metrics
	rp                *httputil.ReverseProxy
}

// NewProxy creates the proxy over the given route table
func NewProxy(logger *zap.Logger, table *RouteTable, cfg config.ProxyConfig, m *metrics.Metrics) *Proxy {
	p := &Proxy{
		logger:            logger.Named("gateway.proxy"),
		table:             table,
		timeout:           cfg.Timeout,
		correlationHeader: cfg.CorrelationHeader,
		metrics:           m,
	}
	p.rp = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			target := pr.In.Context().Value(proxyTargetKey{}).(*url.URL)
			pr.SetURL(target)
			pr.SetXForwarded()
			pr.Out.Host = target.Host
		},
		ErrorHandler: p.handleUpstreamError,
	}
	return p
}

// Handler resolves the upstream and forwards the request. Requests without a
// matching route, including every request when the table is empty, fail with
// a fixed 500 body.
func (p *Proxy) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		route, ok := p.table.Match(c.Request.URL.Path)
		if !ok {
			p.metrics.ObserveProxyError("no_route")
			p.logger.Warn("no upstream for path",
				zap.String("path", c.Request.URL.Path),
				zap.String("correlation_id", CorrelationID(c)))
			c.String(http.StatusInternalServerError, cnst.MsgProxyTargetNotFound)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), p.timeout)
		defer cancel()
		ctx = context.WithValue(ctx, proxyTargetKey{}, route.Upstream)

		p.rp.ServeHTTP(c.Writer, c.Request.WithContext(ctx))
	}
}

// handleUpstreamError converts a failed upstream round trip into a gateway
// error response. The correlation id was stamped onto the request by the
// tracer middleware, so it survives into both the log line and the body.
func (p *Proxy) handleUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	cid := r.Header.Get(p.correlationHeader)

	kind := "upstream"
	if errors.Is(err, context.DeadlineExceeded) {
		kind = "timeout"
	}
	p.metrics.ObserveProxyError(kind)

	p.logger.Error("upstream request failed",
		zap.String("path", r.URL.Path),
		zap.String("host", r.URL.Host),
		zap.String("correlation_id", cid),
		zap.Error(err))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	body := `{"message":"` + cnst.MsgBadGateway + `","correlationId":"` + cid + `"}`
	_, _ = w.Write([]byte(body))
}
