package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricQueriesTotal  = "fleetlens.analysis.queries.total"
	metricSamplesTotal  = "fleetlens.analysis.samples.total"
	metricNoDataTotal   = "fleetlens.analysis.nodata.total"
	metricInsightsTotal = "fleetlens.analysis.insights.total"

	attrKind   = "kind"
	attrMetric = "metric"
)

// QueryStats summarizes one analysis query.
type QueryStats struct {
	// Kind is "compare" or "trend".
	Kind     string
	MetricID string
	Samples  int
	Insights int
	NoData   bool
}

// AnalysisMetrics holds the per-query analysis instruments.
type AnalysisMetrics struct {
	queries  metric.Int64Counter
	samples  metric.Int64Counter
	noData   metric.Int64Counter
	insights metric.Int64Counter
}

// NewAnalysisMetrics creates analysis instruments from mt.
func NewAnalysisMetrics(mt metric.Meter) (*AnalysisMetrics, error) {
	queries, err := mt.Int64Counter(metricQueriesTotal,
		metric.WithDescription("Analysis queries by kind and metric"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricQueriesTotal, err)
	}

	samples, err := mt.Int64Counter(metricSamplesTotal,
		metric.WithDescription("Samples and series points analyzed"),
		metric.WithUnit("{sample}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSamplesTotal, err)
	}

	noData, err := mt.Int64Counter(metricNoDataTotal,
		metric.WithDescription("Queries answered with an empty result"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricNoDataTotal, err)
	}

	insights, err := mt.Int64Counter(metricInsightsTotal,
		metric.WithDescription("Insight sentences generated"),
		metric.WithUnit("{insight}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricInsightsTotal, err)
	}

	return &AnalysisMetrics{
		queries:  queries,
		samples:  samples,
		noData:   noData,
		insights: insights,
	}, nil
}

// RecordQuery records one answered query. Safe on a nil receiver.
func (am *AnalysisMetrics) RecordQuery(ctx context.Context, stats QueryStats) {
	if am == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrKind, stats.Kind),
		attribute.String(attrMetric, stats.MetricID),
	)

	am.queries.Add(ctx, 1, attrs)
	am.samples.Add(ctx, int64(stats.Samples), metric.WithAttributes(attribute.String(attrKind, stats.Kind)))
	am.insights.Add(ctx, int64(stats.Insights), attrs)

	if stats.NoData {
		am.noData.Add(ctx, 1, attrs)
	}
}
