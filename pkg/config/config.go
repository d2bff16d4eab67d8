// Package config loads fleetlens configuration from YAML files and
// FLEETLENS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/Sumatoshi-tech/fleetlens/pkg/observability"
	"github.com/Sumatoshi-tech/fleetlens/pkg/ranking"
)

// Sentinel validation errors.
var (
	ErrInvalidOrder       = errors.New("invalid default order")
	ErrInvalidLimit       = errors.New("default limit must not be negative")
	ErrInvalidLocale      = errors.New("invalid locale")
	ErrInvalidSmoothing   = errors.New("smoothing alpha must be within [0, 1]")
	ErrInvalidChartMode   = errors.New("invalid chart mode")
	ErrInvalidWidth       = errors.New("render width must not be negative")
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidLogFormat   = errors.New("log format must be text or json")
	ErrInvalidSampleRatio = errors.New("sample ratio must be within [0, 1]")
)

const envPrefix = "FLEETLENS"

// Config holds all fleetlens configuration.
type Config struct {
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Render    RenderConfig    `mapstructure:"render"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// CatalogConfig points at a metric catalog file. Empty uses the built-in one.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// AnalysisConfig holds query defaults applied when a request omits them.
type AnalysisConfig struct {
	DefaultOrder   string  `mapstructure:"default_order"`
	DefaultLimit   int     `mapstructure:"default_limit"`
	Locale         string  `mapstructure:"locale"`
	SmoothingAlpha float64 `mapstructure:"smoothing_alpha"`
	OtherLabel     string  `mapstructure:"other_label"`
	ChartMode      string  `mapstructure:"chart_mode"`
}

// RenderConfig drives the terminal and HTML renderers.
type RenderConfig struct {
	Theme   string `mapstructure:"theme"`
	NoColor bool   `mapstructure:"no_color"`
	Width   int    `mapstructure:"width"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	DebugTrace   bool    `mapstructure:"debug_trace"`
	Environment  string  `mapstructure:"environment"`
	// MetricsAddr enables the Prometheus scrape endpoint in MCP mode.
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// LoadConfig reads configPath, or searches fleetlens.yaml in the working
// directory, ./config and /etc/fleetlens, then applies FLEETLENS_*
// environment overrides. A missing file is only an error when configPath is
// given explicitly.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("fleetlens")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/fleetlens")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog.path", "")

	v.SetDefault("analysis.default_order", DefaultOrder)
	v.SetDefault("analysis.default_limit", DefaultLimit)
	v.SetDefault("analysis.locale", DefaultLocale)
	v.SetDefault("analysis.smoothing_alpha", DefaultSmoothingAlpha)
	v.SetDefault("analysis.other_label", "")
	v.SetDefault("analysis.chart_mode", DefaultChartMode)

	v.SetDefault("render.theme", DefaultTheme)
	v.SetDefault("render.no_color", DefaultNoColor)
	v.SetDefault("render.width", DefaultWidth)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)

	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.otlp_insecure", false)
	v.SetDefault("telemetry.otlp_headers", "")
	v.SetDefault("telemetry.sample_ratio", DefaultSampleRatio)
	v.SetDefault("telemetry.debug_trace", false)
	v.SetDefault("telemetry.environment", DefaultEnvironment)
	v.SetDefault("telemetry.metrics_addr", "")
}

// Validate checks every section and returns the first violation.
func (c *Config) Validate() error {
	if _, err := ranking.ParseOrder(c.Analysis.DefaultOrder); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOrder, err)
	}

	if c.Analysis.DefaultLimit < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLimit, c.Analysis.DefaultLimit)
	}

	if _, err := language.Parse(c.Analysis.Locale); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidLocale, c.Analysis.Locale, err)
	}

	if c.Analysis.SmoothingAlpha < 0 || c.Analysis.SmoothingAlpha > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSmoothing, c.Analysis.SmoothingAlpha)
	}

	switch c.Analysis.ChartMode {
	case "single", "categorical":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidChartMode, c.Analysis.ChartMode)
	}

	if c.Render.Width < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWidth, c.Render.Width)
	}

	if _, err := observability.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidLogLevel, err)
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, c.Telemetry.SampleRatio)
	}

	return nil
}

// Locale returns the collation locale, falling back to the root locale.
func (c *Config) Locale() language.Tag {
	tag, err := language.Parse(c.Analysis.Locale)
	if err != nil {
		return language.Und
	}

	return tag
}

// Observability maps the logging and telemetry sections onto an
// observability config for the given binary version and mode.
func (c *Config) Observability(version string, mode observability.AppMode) observability.Config {
	obs := observability.DefaultConfig()
	obs.ServiceVersion = version
	obs.Mode = mode
	obs.Environment = c.Telemetry.Environment
	obs.OTLPEndpoint = c.Telemetry.OTLPEndpoint
	obs.OTLPInsecure = c.Telemetry.OTLPInsecure
	obs.OTLPHeaders = observability.ParseOTLPHeaders(c.Telemetry.OTLPHeaders)
	obs.SampleRatio = c.Telemetry.SampleRatio
	obs.DebugTrace = c.Telemetry.DebugTrace
	obs.LogJSON = c.Logging.Format == "json"
	obs.Prometheus = mode == observability.ModeMCP && c.Telemetry.MetricsAddr != ""

	if level, err := observability.ParseLevel(c.Logging.Level); err == nil {
		obs.LogLevel = level
	}

	return obs
}
