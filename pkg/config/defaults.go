package config

// Analysis defaults.
const (
	DefaultOrder          = "best"
	DefaultLimit          = 0
	DefaultLocale         = "en"
	DefaultSmoothingAlpha = 0.0
	DefaultChartMode      = "single"
)

// Render defaults.
const (
	DefaultTheme   = "dark"
	DefaultNoColor = false
	DefaultWidth   = 0
)

// Logging defaults.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Telemetry defaults.
const (
	DefaultSampleRatio = 1.0
	DefaultEnvironment = "dev"
)
