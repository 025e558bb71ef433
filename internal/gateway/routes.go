package gateway

import (
	"net/url"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/kushal45/OMS-sub001/internal/common/config"
)

// RouteEntry is one prefix-to-upstream pair as written in the routes file.
// File order is insertion order, which breaks equal-length prefix ties.
type RouteEntry struct {
	Prefix   string `yaml:"prefix"`
	Upstream string `yaml:"upstream"`
}

type routesFile struct {
	Routes []RouteEntry `yaml:"routes"`
}

// Route is a resolved table entry
type Route struct {
	Prefix   string
	Upstream *url.URL
}

// RouteTable is the immutable prefix-to-upstream mapping, loaded once at
// startup. An empty table fails every lookup, which the proxy turns into a
// routing failure - requests never pass through silently.
type RouteTable struct {
	routes []Route
}

// NewRouteTable builds a table from entries, preserving their order.
// Entries with an empty prefix or an unparsable upstream are skipped.
func NewRouteTable(logger *zap.Logger, entries []RouteEntry) *RouteTable {
	t := &RouteTable{}
	for _, e := range entries {
		if e.Prefix == "" {
			logger.Warn("skipping route with empty prefix",
				zap.String("upstream", e.Upstream))
			continue
		}
		u, err := url.Parse(e.Upstream)
		if err != nil || u.Scheme == "" || u.Host == "" {
			logger.Warn("skipping route with invalid upstream",
				zap.String("prefix", e.Prefix),
				zap.String("upstream", e.Upstream))
			continue
		}
		t.routes = append(t.routes, Route{Prefix: e.Prefix, Upstream: u})
	}
	return t
}

// LoadRouteTable reads the routes YAML. A missing or unparsable file yields
// an empty table: the gateway fails closed rather than guessing upstreams.
func LoadRouteTable(logger *zap.Logger, path string) *RouteTable {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("route table unavailable, failing closed",
			zap.String("path", path),
			zap.Error(err))
		return &RouteTable{}
	}

	var file routesFile
	if err := yaml.Unmarshal(config.ResolveEnv(data), &file); err != nil {
		logger.Warn("route table unparsable, failing closed",
			zap.String("path", path),
			zap.Error(err))
		return &RouteTable{}
	}

	t := NewRouteTable(logger, file.Routes)
	logger.Info("route table loaded",
		zap.String("path", path),
		zap.Int("routes", len(t.routes)))
	return t
}

// Match selects the upstream for a path: the longest configured prefix that
// literally prefixes the path wins; among equally long matches the first
// inserted wins.
func (t *RouteTable) Match(path string) (Route, bool) {
	var best Route
	bestLen := -1
	for _, r := range t.routes {
		if strings.HasPrefix(path, r.Prefix) && len(r.Prefix) > bestLen {
			best = r
			bestLen = len(r.Prefix)
		}
	}
	return best, bestLen >= 0
}

// Len reports the number of usable routes
func (t *RouteTable) Len() int {
	return len(t.routes)
}
