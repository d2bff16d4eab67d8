package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"

	"github.com/Sumatoshi-tech/fleetlens/pkg/aggregate"
	"github.com/Sumatoshi-tech/fleetlens/pkg/chart"
	"github.com/Sumatoshi-tech/fleetlens/pkg/metric"
	"github.com/Sumatoshi-tech/fleetlens/pkg/observability"
	"github.com/Sumatoshi-tech/fleetlens/pkg/ranking"
	"github.com/Sumatoshi-tech/fleetlens/pkg/table"
	"github.com/Sumatoshi-tech/fleetlens/pkg/trend"
)

// KindComparison marks insights produced by comparative analysis.
const KindComparison = "comparison"

// ErrCompareChartMode is returned for a chart mode a comparison cannot draw.
var ErrCompareChartMode = errors.New("compare chart mode must be single or categorical")

// ParseCompareMode converts a user supplied chart mode for a comparison.
// Empty means single.
func ParseCompareMode(s string) (chart.Mode, error) {
	mode, err := chart.ParseMode(s)
	if err != nil || mode == chart.ModeMultiSeries {
		return "", fmt.Errorf("%w: %q", ErrCompareChartMode, s)
	}

	return mode, nil
}

// CompareQuery selects one metric across a set of entities.
type CompareQuery struct {
	MetricID string
	Samples  []metric.Sample
	Order    ranking.Order
	// Limit caps the ranking, chart and table (<= 0 means all).
	Limit  int
	Locale language.Tag
	// ChartMode is single (bar) or categorical (pie). Empty means single;
	// multi-series is rejected with ErrCompareChartMode.
	ChartMode  chart.Mode
	OtherLabel string
	// Classify overrides the catalog threshold classifier.
	Classify metric.Classifier
}

// CompareReport is the outcome of a comparative analysis. With NoData set
// only MetricID and Metric are filled.
type CompareReport struct {
	MetricID string            `json:"metric_id"`
	Metric   metric.Definition `json:"metric"`
	NoData   bool              `json:"no_data"`
	Summary  aggregate.Result  `json:"summary"`
	Ranking  []ranking.Entity  `json:"ranking"`
	Chart    chart.Model       `json:"chart"`
	Table    table.Model       `json:"table"`
	Insights []trend.Insight   `json:"insights"`
}

// Compare runs a comparative analysis.
func (e *Engine) Compare(ctx context.Context, q CompareQuery) (report *CompareReport, err error) {
	ctx, end := e.begin(ctx, opCompare,
		attribute.String("metric.id", q.MetricID),
		attribute.Int("analysis.samples", len(q.Samples)),
		attribute.String("query.order", string(q.Order)),
		attribute.Int("query.limit", q.Limit),
	)
	defer func() { end(err) }()

	mode, err := ParseCompareMode(string(q.ChartMode))
	if err != nil {
		return nil, fmt.Errorf("compare: %w", err)
	}

	def, err := e.cat.Lookup(q.MetricID)
	if err != nil {
		return nil, fmt.Errorf("compare: %w", err)
	}

	report = &CompareReport{
		MetricID: q.MetricID,
		Metric:   def,
		Ranking:  []ranking.Entity{},
		Insights: []trend.Insight{},
	}

	summary, err := aggregate.Compute(e.cat, q.MetricID, q.Samples)
	if err != nil {
		return nil, fmt.Errorf("compare: %w", err)
	}

	if summary.NoData() {
		report.NoData = true
		e.finishCompare(ctx, report, len(q.Samples))

		return report, nil
	}

	report.Summary = summary

	classify := q.Classify
	if classify == nil {
		classify = e.cat.Classify
	}

	// Rank the full set once; the limit is applied to every view afterwards
	// so ranks and chart percentages refer to the whole fleet.
	full, err := ranking.Rank(e.cat, q.MetricID, q.Samples, ranking.Options{
		Order:    q.Order,
		Locale:   q.Locale,
		Classify: classify,
	})
	if err != nil {
		return nil, fmt.Errorf("compare: %w", err)
	}

	visible := full
	if q.Limit > 0 && len(visible) > q.Limit {
		visible = visible[:q.Limit]
	}

	report.Chart, err = chart.Project(e.cat, chart.Input{
		MetricID:   q.MetricID,
		Samples:    samplesOf(full),
		OtherLabel: q.OtherLabel,
	}, mode, chart.SortSpec{}, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("compare: %w", err)
	}

	report.Ranking = visible
	report.Table = table.Build(q.MetricID, visible, classify)
	report.Insights = comparisonInsights(def, summary, full)

	e.finishCompare(ctx, report, len(q.Samples))

	return report, nil
}

func (e *Engine) finishCompare(ctx context.Context, report *CompareReport, samples int) {
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Bool("analysis.nodata", report.NoData),
		attribute.Int("analysis.insights", len(report.Insights)),
	)

	e.analysis.RecordQuery(ctx, observability.QueryStats{
		Kind:     kindCompare,
		MetricID: report.MetricID,
		Samples:  samples,
		Insights: len(report.Insights),
		NoData:   report.NoData,
	})

	e.logger.DebugContext(ctx, "compare done",
		"metric", report.MetricID,
		"samples", samples,
		"ranked", len(report.Ranking),
		"no_data", report.NoData,
	)
}

func samplesOf(entities []ranking.Entity) []metric.Sample {
	out := make([]metric.Sample, len(entities))

	for i, e := range entities {
		out[i] = metric.Sample{EntityID: e.EntityID, EntityName: e.Name, Value: e.Value}
	}

	return out
}

func comparisonInsights(def metric.Definition, summary aggregate.Result, ranked []ranking.Entity) []trend.Insight {
	out := make([]trend.Insight, 0, 4)

	add := func(format string, args ...any) {
		out = append(out, trend.Insight{MetricID: def.ID, Kind: KindComparison, Text: fmt.Sprintf(format, args...)})
	}

	mean := trend.FormatValue(summary.Mean, def.Unit)

	add("Fleet average %s is %s across %d entities.", def.DisplayName, mean, summary.Count)
	add("Best performer: %s at %s%s.",
		summary.Best.EntityName, trend.FormatValue(summary.Best.Value, def.Unit), relativeToMean(def, summary, summary.Best.Value))

	if summary.Count > 1 {
		add("Worst performer: %s at %s%s.",
			summary.Worst.EntityName, trend.FormatValue(summary.Worst.Value, def.Unit), relativeToMean(def, summary, summary.Worst.Value))
		add("Spread between best and worst is %s.", trend.FormatValue(summary.Spread(), def.Unit))
	}

	counts := map[metric.Status]int{}
	for _, e := range ranked {
		counts[e.Status]++
	}

	if n := counts[metric.StatusCritical]; n > 0 {
		add("%d of %d entities are in critical status for %s.", n, len(ranked), def.DisplayName)
	}

	return out
}

// relativeToMean phrases how value compares with the fleet mean under the
// metric polarity. It is empty when the mean is zero.
func relativeToMean(def metric.Definition, summary aggregate.Result, value float64) string {
	deviation, ok := summary.DeviationFromMean(value)
	if !ok {
		return ""
	}

	magnitude := math.Abs(deviation)
	if magnitude < 0.05 {
		return ", in line with the fleet average"
	}

	word := "worse"
	if def.Better(value, summary.Mean) {
		word = "better"
	}

	return fmt.Sprintf(", %.1f%% %s than the fleet average", magnitude, word)
}
