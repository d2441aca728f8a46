// Command frisco-mcp serves the Frisco weather tool set over stdio.
// It speaks newline-delimited JSON-RPC 2.0 on stdin/stdout and keeps
// all diagnostics on stderr.
package main

import (
	"context"
	"os"

	"github.com/friscolabs/frisco-mcp/pkg/logging"
	"github.com/friscolabs/frisco-mcp/pkg/observability"
	"github.com/friscolabs/frisco-mcp/pkg/server"
	"github.com/friscolabs/frisco-mcp/pkg/tools"
	"github.com/friscolabs/frisco-mcp/pkg/weather"
)

const (
	serverName    = "frisco-weather-server"
	serverVersion = "1.0.0"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := server.ConfigFromEnv()
	logger := buildLogger(cfg)

	weatherClient := weather.NewClient(cfg.WeatherBaseURL, cfg.WeatherTimeout)
	registry := tools.DefaultRegistry(weatherClient)

	options := []server.Option{
		server.WithLogger(logger),
		server.WithServerInfo(serverName, serverVersion),
		server.WithShutdownGrace(cfg.ShutdownGrace),
	}

	metrics, err := observability.NewMetricsProvider(observability.MetricsConfig{
		ServiceName:    serverName,
		ServiceVersion: serverVersion,
		Addr:           cfg.MetricsAddr,
	})
	if err != nil {
		logger.Error("failed to build metrics provider", logging.ErrorField(err))
		return server.ExitFatal
	}
	options = append(options, server.WithMetrics(metrics))

	exporterType := observability.ExporterTypeOTLPGRPC
	if cfg.OTLPProtocol == "http" {
		exporterType = observability.ExporterTypeOTLPHTTP
	}
	tracing, err := observability.NewTracingProvider(observability.TracingConfig{
		ServiceName:    serverName,
		ServiceVersion: serverVersion,
		ExporterType:   exporterType,
		Endpoint:       cfg.OTLPEndpoint,
	})
	if err != nil {
		logger.Error("failed to build tracing provider", logging.ErrorField(err))
		return server.ExitFatal
	}
	options = append(options, server.WithTracing(tracing))

	srv := server.New(registry, options...)
	return srv.Run(context.Background())
}

func buildLogger(cfg server.Config) logging.Logger {
	var formatter logging.Formatter
	if cfg.LogFormat == "json" {
		formatter = logging.NewJSONFormatter()
	} else {
		formatter = logging.NewTextFormatter()
	}
	logger := logging.New(os.Stderr, formatter)
	logger.SetLevel(logging.ParseLevel(cfg.LogLevel))
	return logger
}
