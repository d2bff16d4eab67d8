// Package observability provides OpenTelemetry tracing, metrics and
// structured logging for the fleetlens CLI and MCP server.
package observability

import (
	"fmt"
	"log/slog"
	"strings"
)

// AppMode identifies how the binary was launched.
type AppMode string

const (
	// ModeCLI is a one-shot CLI command.
	ModeCLI AppMode = "cli"
	// ModeMCP is the MCP stdio server.
	ModeMCP AppMode = "mcp"
)

const (
	defaultServiceName        = "fleetlens"
	defaultShutdownTimeoutSec = 5
)

// Config holds all observability configuration.
type Config struct {
	ServiceName    string
	ServiceVersion string
	// Environment is the deployment environment (e.g. "production", "dev").
	Environment string
	Mode        AppMode

	// OTLPEndpoint is the OTLP gRPC collector address. Empty disables export.
	OTLPEndpoint string
	OTLPHeaders  map[string]string
	OTLPInsecure bool

	// Prometheus adds a pull reader; Providers.MetricsHandler serves it.
	Prometheus bool

	// DebugTrace forces 100% sampling and warns about filtered attributes.
	DebugTrace bool
	// SampleRatio is the root sampling ratio when no OTEL_TRACES_SAMPLER is set.
	SampleRatio float64

	LogLevel slog.Level
	LogJSON  bool

	ShutdownTimeoutSec int
}

// DefaultConfig returns a zero-export configuration for CLI use.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeCLI,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}

// ParseLevel converts a config level name (debug, info, warn, error).
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(strings.TrimSpace(name)))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("parse log level %q: %w", name, err)
	}

	return level, nil
}
