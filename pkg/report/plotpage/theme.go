package plotpage

import (
	"errors"
	"fmt"
)

// Theme represents a color theme for the HTML report.
type Theme string

const (
	// ThemeLight is the light color theme.
	ThemeLight Theme = "light"
	// ThemeDark is the dark color theme.
	ThemeDark Theme = "dark"
)

// ErrUnknownTheme is returned by ParseTheme for unsupported names.
var ErrUnknownTheme = errors.New("unknown theme")

// ParseTheme converts a user supplied theme name. Empty means dark.
func ParseTheme(name string) (Theme, error) {
	switch Theme(name) {
	case "", ThemeDark:
		return ThemeDark, nil
	case ThemeLight:
		return ThemeLight, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
}

// ThemeConfig holds the page and chart colors of a theme.
type ThemeConfig struct {
	Background string
	Surface    string
	Border     string

	TextPrimary string
	TextMuted   string

	Accent string

	Good     string
	Warning  string
	Critical string

	ChartBackground string
	ChartGrid       string
	ChartAxis       string
	ChartText       string
	ChartTextMuted  string
}

// GetThemeConfig returns the configuration for a given theme.
func GetThemeConfig(theme Theme) ThemeConfig {
	if theme == ThemeLight {
		return lightTheme
	}

	return darkTheme
}

var lightTheme = ThemeConfig{
	Background: "#fafaf9", // stone-50.
	Surface:    "#ffffff",
	Border:     "#e7e5e4", // stone-200.

	TextPrimary: "#1c1917", // stone-900.
	TextMuted:   "#78716c", // stone-500.

	Accent: "#a16207", // amber-700.

	Good:     "#16a34a", // green-600.
	Warning:  "#ca8a04", // yellow-600.
	Critical: "#dc2626", // red-600.

	ChartBackground: "transparent",
	ChartGrid:       "#e7e5e4",
	ChartAxis:       "#a8a29e",
	ChartText:       "#44403c",
	ChartTextMuted:  "#78716c",
}

var darkTheme = ThemeConfig{
	Background: "#0c0a09", // stone-950.
	Surface:    "#1c1917", // stone-900.
	Border:     "#44403c", // stone-700.

	TextPrimary: "#fafaf9",
	TextMuted:   "#a8a29e",

	Accent: "#d97706", // amber-600.

	Good:     "#22c55e", // green-500.
	Warning:  "#eab308", // yellow-500.
	Critical: "#ef4444", // red-500.

	ChartBackground: "transparent",
	ChartGrid:       "#44403c",
	ChartAxis:       "#57534e",
	ChartText:       "#d6d3d1",
	ChartTextMuted:  "#a8a29e",
}
