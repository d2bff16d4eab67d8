package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/fleetlens/pkg/chart"
	"github.com/Sumatoshi-tech/fleetlens/pkg/metric"
	"github.com/Sumatoshi-tech/fleetlens/pkg/observability"
	"github.com/Sumatoshi-tech/fleetlens/pkg/trend"
)

// TrendQuery selects one or more metrics over time. Metrics are reported in
// the order given.
type TrendQuery struct {
	MetricIDs []string
	Series    map[string][]metric.Point
	// SmoothingAlpha > 0 adds an EMA overlay per metric.
	SmoothingAlpha float64
	Remarks        trend.RemarkTable
	// LabelLayout formats chart labels and keeps first-seen order. Empty
	// picks time.DateOnly, or RFC 3339 in UTC when a series has several
	// points per day, and sorts the labels chronologically.
	LabelLayout string
}

// TrendReport is the outcome of a trend analysis. NoData is set when every
// selected series is empty.
type TrendReport struct {
	MetricIDs []string        `json:"metric_ids"`
	NoData    bool            `json:"no_data"`
	Results   []trend.Result  `json:"results"`
	Insights  []trend.Insight `json:"insights"`
	Chart     chart.Model     `json:"chart"`
}

// Trend runs a trend analysis.
func (e *Engine) Trend(ctx context.Context, q TrendQuery) (report *TrendReport, err error) {
	points := 0
	for _, id := range q.MetricIDs {
		points += len(q.Series[id])
	}

	ctx, end := e.begin(ctx, opTrend,
		attribute.String("metric.ids", strings.Join(q.MetricIDs, ",")),
		attribute.Int("analysis.samples", points),
	)
	defer func() { end(err) }()

	multi, err := trend.ComputeAll(e.cat, q.MetricIDs, q.Series, trend.Options{
		Remarks:        q.Remarks,
		SmoothingAlpha: q.SmoothingAlpha,
	})
	if err != nil {
		return nil, fmt.Errorf("trend: %w", err)
	}

	report = &TrendReport{
		MetricIDs: q.MetricIDs,
		NoData:    points == 0,
		Results:   multi.Results,
		Insights:  multi.Insights,
		Chart:     chart.Model{Labels: []string{}, Datasets: []chart.Dataset{}},
	}

	if !report.NoData {
		report.Chart, err = e.trendChart(q, multi)
		if err != nil {
			return nil, fmt.Errorf("trend: %w", err)
		}
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Bool("analysis.nodata", report.NoData),
		attribute.Int("analysis.insights", len(report.Insights)),
	)

	for _, res := range multi.Results {
		e.analysis.RecordQuery(ctx, observability.QueryStats{
			Kind:     kindTrend,
			MetricID: res.MetricID,
			Samples:  res.Points,
			Insights: len(res.Insights),
			NoData:   res.NoData(),
		})
	}

	e.logger.DebugContext(ctx, "trend done",
		"metrics", q.MetricIDs,
		"points", points,
		"insights", len(report.Insights),
	)

	return report, nil
}

// trendChart lays every metric out over the union of timestamps, with an
// extra smoothed line per metric when smoothing is on.
func (e *Engine) trendChart(q TrendQuery, multi trend.Multi) (chart.Model, error) {
	layout := q.LabelLayout
	sortSpec := chart.SortSpec{}

	if layout == "" {
		// Generated labels sort chronologically.
		layout = labelLayout(q)
		sortSpec.By = chart.SortByLabel
	}

	series := make([]chart.Series, 0, len(q.MetricIDs)*2)

	for i, id := range q.MetricIDs {
		points := q.Series[id]
		if len(points) == 0 {
			continue
		}

		if layout == time.RFC3339 {
			points = inUTC(points)
		}

		def := e.cat.MustLookup(id)
		line := chart.FromPoints(def.DisplayName, id, points, layout)
		series = append(series, line)

		if smoothed := multi.Results[i].Smoothed; len(smoothed) > 0 {
			series = append(series, chart.Series{
				Name:   def.DisplayName + " (smoothed)",
				Labels: line.Labels,
				Values: smoothed,
			})
		}
	}

	return chart.Project(e.cat, chart.Input{Series: series}, chart.ModeMultiSeries, sortSpec, 0)
}

// labelLayout is time.DateOnly unless a series holds two points on the same
// day, in which case full UTC timestamps keep them apart.
func labelLayout(q TrendQuery) string {
	for _, id := range q.MetricIDs {
		days := make(map[string]struct{}, len(q.Series[id]))

		for _, p := range q.Series[id] {
			day := p.Timestamp.Format(time.DateOnly)
			if _, dup := days[day]; dup {
				return time.RFC3339
			}

			days[day] = struct{}{}
		}
	}

	return time.DateOnly
}

func inUTC(points []metric.Point) []metric.Point {
	out := make([]metric.Point, len(points))

	for i, p := range points {
		out[i] = metric.Point{Timestamp: p.Timestamp.UTC(), Value: p.Value}
	}

	return out
}
