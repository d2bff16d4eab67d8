// Package analysis composes the aggregation, ranking, trend, chart and table
// components into the two fleet analyses: comparative analysis across
// entities and trend analysis over time. Every call is independent; the
// Engine keeps no query state.
package analysis

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/fleetlens/pkg/metric"
	"github.com/Sumatoshi-tech/fleetlens/pkg/observability"
)

const (
	opCompare = "analysis.compare"
	opTrend   = "analysis.trend"

	kindCompare = "compare"
	kindTrend   = "trend"
)

// Deps holds injectable collaborators. Zero-value fields disable the
// corresponding concern.
type Deps struct {
	Logger   *slog.Logger
	Tracer   trace.Tracer
	RED      *observability.REDMetrics
	Analysis *observability.AnalysisMetrics
}

// Engine runs analyses against one metric catalog.
type Engine struct {
	cat      *metric.Catalog
	logger   *slog.Logger
	tracer   trace.Tracer
	red      *observability.REDMetrics
	analysis *observability.AnalysisMetrics
}

// New returns an Engine over cat.
func New(cat *metric.Catalog, deps Deps) *Engine {
	e := &Engine{
		cat:      cat,
		logger:   deps.Logger,
		tracer:   deps.Tracer,
		red:      deps.RED,
		analysis: deps.Analysis,
	}

	if e.logger == nil {
		e.logger = observability.DiscardLogger()
	}

	if e.tracer == nil {
		e.tracer = nooptrace.NewTracerProvider().Tracer("")
	}

	return e
}

// Catalog returns the catalog the engine resolves metrics against.
func (e *Engine) Catalog() *metric.Catalog {
	return e.cat
}

// begin opens the span and RED tracking of one query; the returned function
// closes both and records the error, if any, on the span.
func (e *Engine) begin(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := e.tracer.Start(ctx, op, trace.WithAttributes(attrs...))
	track := e.red.Track(ctx, op)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		track(err)
		span.End()
	}
}
