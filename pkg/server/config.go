package server

import (
	"os"
	"strings"
	"time"

	"github.com/friscolabs/frisco-mcp/pkg/weather"
)

// Config carries the environment-driven settings for one server process
type Config struct {
	LogLevel  string // debug, info, warn, error
	LogFormat string // text or json

	WeatherBaseURL string
	WeatherTimeout time.Duration

	// ShutdownGrace bounds how long an in-flight tool call may run on
	// after a termination signal before the process force-exits.
	ShutdownGrace time.Duration

	// MetricsAddr enables the Prometheus listener when non-empty
	MetricsAddr string

	// OTLPEndpoint enables trace export when non-empty
	OTLPEndpoint string
	OTLPProtocol string // grpc or http
}

// DefaultShutdownGrace is the default in-flight grace period
const DefaultShutdownGrace = 5 * time.Second

// ConfigFromEnv builds a Config from FRISCO_MCP_* environment variables,
// falling back to defaults for anything unset.
func ConfigFromEnv() Config {
	return Config{
		LogLevel:       getEnv("FRISCO_MCP_LOG_LEVEL", "info"),
		LogFormat:      getEnv("FRISCO_MCP_LOG_FORMAT", "text"),
		WeatherBaseURL: getEnv("FRISCO_MCP_WEATHER_URL", weather.DefaultBaseURL),
		WeatherTimeout: getDurationEnv("FRISCO_MCP_WEATHER_TIMEOUT", weather.DefaultTimeout),
		ShutdownGrace:  getDurationEnv("FRISCO_MCP_SHUTDOWN_GRACE", DefaultShutdownGrace),
		MetricsAddr:    getEnv("FRISCO_MCP_METRICS_ADDR", ""),
		OTLPEndpoint:   getEnv("FRISCO_MCP_OTLP_ENDPOINT", ""),
		OTLPProtocol:   getEnv("FRISCO_MCP_OTLP_PROTOCOL", "grpc"),
	}
}

func getEnv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
