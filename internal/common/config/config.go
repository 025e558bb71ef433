package config

import (
	"os"
	"regexp"
	"time"

	"github.com/kushal45/OMS-sub001/pkg/helper"
	"github.com/kushal45/OMS-sub001/pkg/utils"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type (
	// GatewayConfig represents the full gateway configuration
	GatewayConfig struct {
		Port     int            `yaml:"port"`
		Logger   LoggerConfig   `yaml:"logger"`
		Auth     AuthConfig     `yaml:"auth"`
		Proxy    ProxyConfig    `yaml:"proxy"`
		CORS     *CORSConfig    `yaml:"cors,omitempty"`
		Realtime RealtimeConfig `yaml:"realtime"`
		Notifier NotifierConfig `yaml:"notifier"`
		Metrics  MetricsConfig  `yaml:"metrics"`
		Tracing  TracingConfig  `yaml:"tracing"`
	}

	// AuthConfig defines token validation for HTTP requests and realtime handshakes
	AuthConfig struct {
		// VerifyURL is the remote identity-verification endpoint used for proxied HTTP calls
		VerifyURL string `yaml:"verify_url"`
		// VerifyTimeout bounds the remote verification call, distinct from the proxy timeout
		VerifyTimeout time.Duration `yaml:"verify_timeout"`
		// SecretKey signs realtime handshake tokens (HS256)
		SecretKey string `yaml:"secret_key"`
		// TokenDuration is the validity window for tokens issued by the token service
		TokenDuration time.Duration `yaml:"token_duration"`
		// ProtectedPrefixes lists path prefixes that require a bearer token
		ProtectedPrefixes []string `yaml:"protected_prefixes"`
		// PublicRoutes bypass validation by exact method and path-suffix match
		PublicRoutes []PublicRoute `yaml:"public_routes"`
	}

	// PublicRoute identifies an allow-listed route that skips authentication
	PublicRoute struct {
		Method string `yaml:"method"`
		Suffix string `yaml:"suffix"`
	}

	// ProxyConfig defines upstream forwarding behavior
	ProxyConfig struct {
		// RoutesPath points at the YAML route table; a missing or unparsable
		// file yields an empty table and every proxied request fails closed
		RoutesPath string `yaml:"routes_path"`
		// Timeout bounds a single upstream round trip
		Timeout time.Duration `yaml:"timeout"`
		// CorrelationHeader overrides the default correlation id header name
		CorrelationHeader string `yaml:"correlation_header"`
	}

	// RealtimeConfig defines the persistent-session surface
	RealtimeConfig struct {
		// Path is the websocket endpoint path
		Path string `yaml:"path"`
		// QueueSize is the per-session outbound buffer; full queues drop events
		QueueSize int `yaml:"queue_size"`
		// PingInterval is the server-side keepalive ping period
		PingInterval time.Duration `yaml:"ping_interval"`
		// WriteTimeout bounds a single websocket write
		WriteTimeout time.Duration `yaml:"write_timeout"`
		// ReadLimit bounds inbound message size in bytes
		ReadLimit int64 `yaml:"read_limit"`
	}

	// NotifierConfig selects the cross-instance broadcast bridge
	NotifierConfig struct {
		Type  string              `yaml:"type"` // "noop" or "redis"
		Redis NotifierRedisConfig `yaml:"redis"`
	}

	// NotifierRedisConfig represents the redis pub/sub bridge configuration
	NotifierRedisConfig struct {
		Addr     string `yaml:"addr"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Channel  string `yaml:"channel"`
	}

	// MetricsConfig configures the prometheus endpoint
	MetricsConfig struct {
		Enabled   bool      `yaml:"enabled"`
		Namespace string    `yaml:"namespace"`
		Buckets   []float64 `yaml:"buckets"`
	}

	// TracingConfig configures OTLP tracing export
	TracingConfig struct {
		Enabled     bool    `yaml:"enabled"`
		ServiceName string  `yaml:"service_name"`
		Endpoint    string  `yaml:"endpoint"` // e.g. localhost:4317 or http://localhost:4318
		Protocol    string  `yaml:"protocol"` // grpc or http
		Insecure    bool    `yaml:"insecure"`
		SamplerRate float64 `yaml:"sampler_rate"` // 0.0~1.0
		Environment string  `yaml:"environment"`  // env tag: dev/staging/prod
	}

	// CORSConfig defines allowed cross-origin values
	CORSConfig struct {
		AllowOrigins     []string `yaml:"allow_origins"`
		AllowMethods     []string `yaml:"allow_methods"`
		AllowHeaders     []string `yaml:"allow_headers"`
		ExposeHeaders    []string `yaml:"expose_headers"`
		AllowCredentials bool     `yaml:"allow_credentials"`
	}

	// LoggerConfig represents the logger configuration
	LoggerConfig struct {
		Level      string `yaml:"level"`       // debug, info, warn, error
		Format     string `yaml:"format"`      // json, console
		Output     string `yaml:"output"`      // stdout, file
		FilePath   string `yaml:"file_path"`   // path to log file when output is file
		MaxSize    int    `yaml:"max_size"`    // max size of log file in MB
		MaxBackups int    `yaml:"max_backups"` // max number of backup files
		MaxAge     int    `yaml:"max_age"`     // max age of backup files in days
		Compress   bool   `yaml:"compress"`    // whether to compress backup files
		Color      bool   `yaml:"color"`       // whether to use color in console output
		Stacktrace bool   `yaml:"stacktrace"`  // whether to include stacktrace in error logs
		TimeZone   string `yaml:"time_zone"`   // time zone for log timestamps, default is local
		TimeFormat string `yaml:"time_format"` // time format for log timestamps
	}
)

// LoadConfig loads the gateway configuration from a YAML file with
// environment variable support
func LoadConfig(filename string) (*GatewayConfig, string, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	cfgPath := helper.GetCfgPath(filename)
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return nil, cfgPath, err
	}

	// Resolve environment variables
	data = ResolveEnv(data)
	var cfg GatewayConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, cfgPath, err
	}

	SetDefaults(&cfg)
	return &cfg, cfgPath, nil
}

// SetDefaults fills zero values with operational defaults
func SetDefaults(cfg *GatewayConfig) {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.Auth.VerifyTimeout <= 0 {
		cfg.Auth.VerifyTimeout = 5 * time.Second
	}
	if cfg.Auth.TokenDuration <= 0 {
		cfg.Auth.TokenDuration = 24 * time.Hour
	}
	if cfg.Proxy.Timeout <= 0 {
		cfg.Proxy.Timeout = 30 * time.Second
	}
	if cfg.Proxy.CorrelationHeader == "" {
		cfg.Proxy.CorrelationHeader = "X-Correlation-ID"
	}
	if cfg.Realtime.Path == "" {
		cfg.Realtime.Path = "/ws/notifications"
	}
	if cfg.Realtime.QueueSize <= 0 {
		cfg.Realtime.QueueSize = 100
	}
	if cfg.Realtime.PingInterval <= 0 {
		cfg.Realtime.PingInterval = 30 * time.Second
	}
	if cfg.Realtime.WriteTimeout <= 0 {
		cfg.Realtime.WriteTimeout = 10 * time.Second
	}
	if cfg.Realtime.ReadLimit <= 0 {
		cfg.Realtime.ReadLimit = 64 * 1024
	}
	if cfg.Notifier.Type == "" {
		cfg.Notifier.Type = "noop"
	}
	if cfg.Notifier.Redis.Channel == "" {
		cfg.Notifier.Redis.Channel = "oms:gateway:events"
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "oms_gateway"
	}
	if cfg.CORS != nil {
		// An origin entry resolved from a single env var may carry
		// several comma-separated origins
		var origins []string
		for _, o := range cfg.CORS.AllowOrigins {
			origins = append(origins, utils.SplitAndTrim(o, ",")...)
		}
		cfg.CORS.AllowOrigins = origins
	}
}

// ResolveEnv replaces environment variable placeholders in YAML content
func ResolveEnv(content []byte) []byte {
	regex := regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

	return regex.ReplaceAllFunc(content, func(match []byte) []byte {
		matches := regex.FindSubmatch(match)
		envKey := string(matches[1])
		var defaultValue string

		if len(matches) > 2 {
			defaultValue = string(matches[2])
		}

		if value, exists := os.LookupEnv(envKey); exists {
			return []byte(value)
		}
		return []byte(defaultValue)
	})
}
