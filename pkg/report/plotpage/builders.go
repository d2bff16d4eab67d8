package plotpage

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/fleetlens/pkg/chart"
)

const (
	chartWidth  = "100%"
	chartHeight = "480px"

	// missingValue is the ECharts placeholder for a point left out of a line.
	missingValue = "-"
)

// BuildBarChart renders every dataset of model as a bar series.
func BuildBarChart(cOpts *ChartOpts, model chart.Model, yAxisLabel string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(cOpts.Init(chartWidth, chartHeight)),
		charts.WithTooltipOpts(cOpts.Tooltip("axis")),
		charts.WithGridOpts(cOpts.Grid()),
		charts.WithXAxisOpts(cOpts.XAxis("")),
		charts.WithYAxisOpts(cOpts.YAxis(yAxisLabel)),
		charts.WithLegendOpts(cOpts.Legend()),
	)

	bar.SetXAxis(model.Labels)

	for _, ds := range model.Datasets {
		data := make([]opts.BarData, len(ds.Values))
		for i, v := range ds.Values {
			data[i] = opts.BarData{Value: v}
		}

		bar.AddSeries(ds.Label, data, charts.WithItemStyleOpts(opts.ItemStyle{Color: ds.Color}))
	}

	return bar
}

// BuildLineChart renders every dataset of model as a line series.
func BuildLineChart(cOpts *ChartOpts, model chart.Model, yAxisLabel string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(cOpts.Init(chartWidth, chartHeight)),
		charts.WithTooltipOpts(cOpts.Tooltip("axis")),
		charts.WithGridOpts(cOpts.Grid()),
		charts.WithDataZoomOpts(cOpts.DataZoom()...),
		charts.WithXAxisOpts(cOpts.XAxis("")),
		charts.WithYAxisOpts(cOpts.YAxis(yAxisLabel)),
		charts.WithLegendOpts(cOpts.Legend()),
	)

	line.SetXAxis(model.Labels)

	for _, ds := range model.Datasets {
		data := make([]opts.LineData, len(ds.Values))
		for i, v := range ds.Values {
			if i < len(ds.Gaps) && ds.Gaps[i] {
				data[i] = opts.LineData{Value: missingValue}

				continue
			}

			data[i] = opts.LineData{Value: v}
		}

		line.AddSeries(ds.Label, data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: ds.Color}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: ds.Color}),
		)
	}

	return line
}

// BuildPieChart renders the first dataset of a categorical model. Slice
// names carry the precomputed share so limited pies still show fleet-wide
// percentages.
func BuildPieChart(cOpts *ChartOpts, model chart.Model) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(cOpts.Init(chartWidth, chartHeight)),
		charts.WithTooltipOpts(cOpts.Tooltip("item")),
		charts.WithLegendOpts(cOpts.Legend()),
	)

	if len(model.Datasets) == 0 {
		return pie
	}

	ds := model.Datasets[0]
	data := make([]opts.PieData, len(model.Labels))

	for i, label := range model.Labels {
		item := opts.PieData{Name: label, Value: ds.Values[i]}

		if i < len(ds.Percentages) {
			item.Name = fmt.Sprintf("%s (%d%%)", label, ds.Percentages[i])
		}

		if i < len(ds.Colors) {
			item.ItemStyle = &opts.ItemStyle{Color: ds.Colors[i]}
		}

		data[i] = item
	}

	pie.AddSeries(ds.Label, data,
		charts.WithPieChartOpts(opts.PieChart{Radius: []string{"35%", "65%"}}),
	)

	return pie
}
