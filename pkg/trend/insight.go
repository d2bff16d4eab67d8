package trend

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/fleetlens/pkg/metric"
)

// Insight kinds, in the order they are emitted.
const (
	KindAverage   = "average"
	KindDirection = "direction"
	KindRange     = "range"
	KindRemark    = "remark"
)

// Insight is one templated sentence about a trend.
type Insight struct {
	MetricID string `json:"metric_id"`
	Kind     string `json:"kind"`
	Text     string `json:"text"`
}

func describe(def metric.Definition, res Result, overrides RemarkTable) []Insight {
	insights := make([]Insight, 0, 4)

	add := func(kind, text string) {
		insights = append(insights, Insight{MetricID: def.ID, Kind: kind, Text: text})
	}

	add(KindAverage, fmt.Sprintf("Average %s is %s.", def.DisplayName, FormatValue(res.Average, def.Unit)))

	if res.PercentChange != nil {
		add(KindDirection, directionSentence(def.DisplayName, *res.PercentChange))
	}

	add(KindRange, fmt.Sprintf("%s ranged from %s to %s.",
		def.DisplayName, FormatValue(res.Min, def.Unit), FormatValue(res.Max, def.Unit)))

	if res.PercentChange == nil {
		return insights
	}

	if tmpl, ok := remarkFor(def.ID, res, overrides); ok {
		add(KindRemark, strings.NewReplacer(
			"{metric}", def.DisplayName,
			"{change}", formatPercent(*res.PercentChange),
		).Replace(tmpl))
	}

	return insights
}

func directionSentence(name string, change float64) string {
	switch {
	case change > 0:
		return fmt.Sprintf("%s increased by %s over the period.", name, formatPercent(change))
	case change < 0:
		return fmt.Sprintf("%s decreased by %s over the period.", name, formatPercent(change))
	default:
		return fmt.Sprintf("No significant change in %s over the period.", name)
	}
}

// FormatValue renders v with two decimals and its unit. Percent units attach
// without a space.
func FormatValue(v float64, unit string) string {
	num := strconv.FormatFloat(v, 'f', 2, 64)

	switch unit {
	case "":
		return num
	case "%":
		return num + unit
	default:
		return num + " " + unit
	}
}

func formatPercent(change float64) string {
	return strconv.FormatFloat(math.Abs(change), 'f', 1, 64) + "%"
}
