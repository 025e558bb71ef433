package metrics

import (
	"strconv"
	"time"

	"github.com/kushal45/OMS-sub001/internal/common/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the gateway's prometheus instruments on a private registry.
// A nil *Metrics is valid and turns every observation into a no-op, so
// components never need to branch on whether metrics are enabled.
type Metrics struct {
	registry    *prometheus.Registry
	namespace   string
	httpReqCnt  *prometheus.CounterVec
	httpDur     *prometheus.HistogramVec
	httpInfl    prometheus.Gauge
	wsConns     prometheus.Gauge
	wsSessions  *prometheus.CounterVec
	broadcasts  *prometheus.CounterVec
	deliveries  *prometheus.CounterVec
	proxyErrCnt *prometheus.CounterVec
}

// New builds the gateway metrics set
func New(cfg config.MetricsConfig) *Metrics {
	ns := cfg.Namespace
	r := prometheus.NewRegistry()
	// Register standard process and Go collectors
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "http_requests_total"}, []string{"method", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "http_request_duration_seconds", Buckets: cfg.Buckets}, []string{"method", "status"})
	httpInfl := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: ns, Name: "http_requests_inflight"})
	r.MustRegister(httpReqCnt, httpDur, httpInfl)

	wsConns := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: ns, Name: "ws_connections"})
	wsSessions := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "ws_sessions_total"}, []string{"outcome"})
	r.MustRegister(wsConns, wsSessions)

	broadcasts := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "broadcasts_total"}, []string{"event"})
	deliveries := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "deliveries_total"}, []string{"event", "outcome"})
	r.MustRegister(broadcasts, deliveries)

	proxyErrCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "proxy_errors_total"}, []string{"kind"})
	r.MustRegister(proxyErrCnt)

	return &Metrics{
		registry:    r,
		namespace:   ns,
		httpReqCnt:  httpReqCnt,
		httpDur:     httpDur,
		httpInfl:    httpInfl,
		wsConns:     wsConns,
		wsSessions:  wsSessions,
		broadcasts:  broadcasts,
		deliveries:  deliveries,
		proxyErrCnt: proxyErrCnt,
	}
}

// GinMiddleware records request counts, durations, and inflight gauge
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		m.httpInfl.Inc()
		c.Next()
		m.httpInfl.Dec()

		status := strconv.Itoa(c.Writer.Status())
		m.httpReqCnt.WithLabelValues(c.Request.Method, status).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, status).Observe(time.Since(start).Seconds())
	}
}

// GinHandler serves the /metrics endpoint from the private registry
func (m *Metrics) GinHandler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// WSConnected marks a websocket session established
func (m *Metrics) WSConnected() {
	if m == nil {
		return
	}
	m.wsConns.Inc()
	m.wsSessions.WithLabelValues("accepted").Inc()
}

// WSRejected marks a websocket handshake rejected
func (m *Metrics) WSRejected() {
	if m == nil {
		return
	}
	m.wsSessions.WithLabelValues("rejected").Inc()
}

// WSDisconnected marks a websocket session closed
func (m *Metrics) WSDisconnected() {
	if m == nil {
		return
	}
	m.wsConns.Dec()
}

// ObserveBroadcast counts a hub broadcast by event type
func (m *Metrics) ObserveBroadcast(event string) {
	if m == nil {
		return
	}
	m.broadcasts.WithLabelValues(event).Inc()
}

// ObserveDelivery counts one per-session delivery attempt
func (m *Metrics) ObserveDelivery(event string, ok bool) {
	if m == nil {
		return
	}
	outcome := "delivered"
	if !ok {
		outcome = "dropped"
	}
	m.deliveries.WithLabelValues(event, outcome).Inc()
}

// ObserveProxyError counts routing and upstream failures
func (m *Metrics) ObserveProxyError(kind string) {
	if m == nil {
		return
	}
	m.proxyErrCnt.WithLabelValues(kind).Inc()
}
