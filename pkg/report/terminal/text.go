package terminal

import (
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Bar and box glyphs.
const (
	barFilled = "█"
	barEmpty  = "░"

	boxHorizontal  = "━"
	boxVertical    = "┃"
	boxTopLeft     = "┏"
	boxTopRight    = "┓"
	boxBottomLeft  = "┗"
	boxBottomRight = "┛"
)

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// FormatValue renders v rounded to two decimals with thousands separators and
// the metric unit. Percent units attach without a space.
func FormatValue(v float64, unit string) string {
	num := humanize.Commaf(math.Round(v*100) / 100)

	switch unit {
	case "":
		return num
	case "%":
		return num + unit
	default:
		return num + " " + unit
	}
}

// DrawHeader draws a heavy-bordered header with title on the left and right
// aligned to the right edge.
func DrawHeader(title, right string, width int) string {
	inner := max(width-2, text.RuneWidthWithoutEscSequences(title)+text.RuneWidthWithoutEscSequences(right)+3)
	gap := inner - 2 - text.RuneWidthWithoutEscSequences(title) - text.RuneWidthWithoutEscSequences(right)

	var sb strings.Builder

	sb.WriteString(boxTopLeft + strings.Repeat(boxHorizontal, inner) + boxTopRight + "\n")
	sb.WriteString(boxVertical + " " + title + strings.Repeat(" ", gap) + right + " " + boxVertical + "\n")
	sb.WriteString(boxBottomLeft + strings.Repeat(boxHorizontal, inner) + boxBottomRight)

	return sb.String()
}

// DrawBar draws a share bar; share is clamped to [0, 1].
func DrawBar(share float64, width int) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(min(max(share, 0), 1) * float64(width)))

	return strings.Repeat(barFilled, filled) + strings.Repeat(barEmpty, width-filled)
}

// Sparkline maps values onto eight block heights between their min and max.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo, hi = min(lo, v), max(hi, v)
	}

	out := make([]rune, len(values))
	top := len(sparkLevels) - 1

	for i, v := range values {
		level := top / 2
		if hi > lo {
			level = int(math.Round((v - lo) / (hi - lo) * float64(top)))
		}

		out[i] = sparkLevels[level]
	}

	return string(out)
}

// Truncate shortens s to width runes, marking the cut with an ellipsis.
func Truncate(s string, width int) string {
	if text.RuneWidthWithoutEscSequences(s) <= width {
		return s
	}

	if width <= 1 {
		return text.Trim(s, width)
	}

	return text.Trim(s, width-1) + "…"
}
