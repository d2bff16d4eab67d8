// Package terminal renders analysis reports as text for the CLI.
package terminal

import (
	"os"
	"strconv"

	"github.com/fatih/color"
)

// Width bounds.
const (
	DefaultWidth = 80
	MinWidth     = 60
	MaxWidth     = 140
)

// Config holds terminal rendering configuration.
type Config struct {
	Width   int
	NoColor bool
}

// NewConfig resolves the rendering config. A zero width is detected from
// COLUMNS; NO_COLOR in the environment disables color as well.
func NewConfig(width int, noColor bool) Config {
	if width <= 0 {
		width = DetectWidth()
	}

	return Config{
		Width:   min(max(width, MinWidth), MaxWidth),
		NoColor: noColor || os.Getenv("NO_COLOR") != "",
	}
}

// DetectWidth returns COLUMNS, or DefaultWidth when unset or invalid.
func DetectWidth() int {
	width, err := strconv.Atoi(os.Getenv("COLUMNS"))
	if err != nil || width <= 0 {
		return DefaultWidth
	}

	return width
}

// paint returns a sprint function for attrs honoring cfg.NoColor.
func (c Config) paint(attrs ...color.Attribute) func(a ...any) string {
	style := color.New(attrs...)

	if c.NoColor {
		style.DisableColor()
	} else {
		style.EnableColor()
	}

	return style.SprintFunc()
}
