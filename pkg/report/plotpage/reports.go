package plotpage

import (
	"strconv"

	"github.com/Sumatoshi-tech/fleetlens/pkg/analysis"
	"github.com/Sumatoshi-tech/fleetlens/pkg/chart"
	"github.com/Sumatoshi-tech/fleetlens/pkg/metric"
	"github.com/Sumatoshi-tech/fleetlens/pkg/report/terminal"
	"github.com/Sumatoshi-tech/fleetlens/pkg/trend"
)

// ComparePage builds the page of a comparative report: a bar chart, or a pie
// when the chart has per-slice colors.
func ComparePage(report *analysis.CompareReport, theme Theme) *Page {
	def := report.Metric
	page := NewPage("Fleet comparison: "+def.DisplayName, def.ID).WithTheme(theme)

	section := Section{
		Title:    def.DisplayName,
		Subtitle: polarity(def),
		Insights: insightTexts(report.Insights),
	}

	if report.NoData {
		section.Subtitle = "No data."
		page.Add(section)

		return page
	}

	section.Stats = []Stat{
		{Label: "Entities", Value: strconv.Itoa(report.Summary.Count)},
		{Label: "Mean", Value: terminal.FormatValue(report.Summary.Mean, def.Unit)},
		{Label: "Median", Value: terminal.FormatValue(report.Summary.Median, def.Unit)},
		{Label: "Best", Value: report.Summary.Best.EntityName},
	}

	cOpts := NewChartOpts(theme)

	if isCategorical(report.Chart) {
		section.Chart = BuildPieChart(cOpts, report.Chart)
	} else {
		section.Chart = BuildBarChart(cOpts, report.Chart, def.Unit)
	}

	page.Add(section)

	return page
}

// TrendPage builds the page of a trend report: one multi-line chart plus the
// insights of every metric.
func TrendPage(report *analysis.TrendReport, cat *metric.Catalog, theme Theme) *Page {
	page := NewPage("Fleet trends", "").WithTheme(theme)

	section := Section{
		Title:    "Metrics over time",
		Insights: insightTexts(report.Insights),
	}

	if report.NoData {
		section.Subtitle = "No data."
		page.Add(section)

		return page
	}

	for _, res := range report.Results {
		if res.NoData() || res.PercentChange == nil {
			continue
		}

		def, err := cat.Lookup(res.MetricID)
		if err != nil {
			continue
		}

		section.Stats = append(section.Stats, Stat{
			Label: def.DisplayName,
			Value: strconv.FormatFloat(*res.PercentChange, 'f', 1, 64) + "%",
		})
	}

	section.Chart = BuildLineChart(NewChartOpts(theme), report.Chart, "")
	page.Add(section)

	return page
}

func isCategorical(model chart.Model) bool {
	return len(model.Datasets) == 1 && len(model.Datasets[0].Colors) > 0
}

func polarity(def metric.Definition) string {
	if def.LowerIsBetter {
		return "Lower is better, in " + def.Unit
	}

	return "Higher is better, in " + def.Unit
}

func insightTexts(insights []trend.Insight) []string {
	out := make([]string, len(insights))
	for i, in := range insights {
		out[i] = in.Text
	}

	return out
}
