package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/text/language"

	"github.com/Sumatoshi-tech/fleetlens/pkg/analysis"
	"github.com/Sumatoshi-tech/fleetlens/pkg/chart"
	"github.com/Sumatoshi-tech/fleetlens/pkg/metric"
	"github.com/Sumatoshi-tech/fleetlens/pkg/ranking"
)

// Tool name constants.
const (
	ToolNameCompare = "fleet_compare"
	ToolNameTrend   = "fleet_trend"
	ToolNameCatalog = "fleet_catalog"
)

// MaxObservations caps the samples or points accepted by one tool call.
const MaxObservations = 100_000

// Sentinel errors for tool input validation.
var (
	// ErrEmptyMetric indicates no metric id was given.
	ErrEmptyMetric = errors.New("metric_id parameter is required and must not be empty")
	// ErrEmptyMetrics indicates the metric_ids list is empty.
	ErrEmptyMetrics = errors.New("metric_ids parameter is required and must not be empty")
	// ErrTooManyObservations indicates the input exceeds MaxObservations.
	ErrTooManyObservations = errors.New("too many observations")
	// ErrMissingEntity indicates a sample without an entity id.
	ErrMissingEntity = errors.New("sample entity_id is required")
	// ErrBadTimestamp indicates a point timestamp that is not RFC 3339.
	ErrBadTimestamp = errors.New("timestamp must be RFC 3339")
)

// QueryDefaults are server-side defaults for omitted tool arguments.
type QueryDefaults struct {
	Order          ranking.Order
	Limit          int
	Locale         language.Tag
	ChartMode      chart.Mode
	OtherLabel     string
	SmoothingAlpha float64
}

// SampleInput is one entity observation.
type SampleInput struct {
	EntityID   string  `json:"entity_id"             jsonschema:"stable entity identifier"`
	EntityName string  `json:"entity_name,omitempty" jsonschema:"display name (defaults to entity_id)"`
	Value      float64 `json:"value"                 jsonschema:"metric value in the metric unit"`
}

// PointInput is one timestamped observation.
type PointInput struct {
	Timestamp string  `json:"timestamp" jsonschema:"RFC 3339 timestamp"`
	Value     float64 `json:"value"     jsonschema:"metric value in the metric unit"`
}

// CompareInput is the input schema for the fleet_compare tool.
type CompareInput struct {
	MetricID   string        `json:"metric_id"             jsonschema:"catalog metric id (see fleet_catalog)"`
	Samples    []SampleInput `json:"samples"               jsonschema:"one value per entity"`
	Order      string        `json:"order,omitempty"       jsonschema:"best, worst or alphabetical"`
	Limit      *int          `json:"limit,omitempty"       jsonschema:"maximum entities in ranking, chart and table (0 = all, omitted = server default)"`
	Locale     string        `json:"locale,omitempty"      jsonschema:"BCP 47 tag for alphabetical collation"`
	ChartMode  string        `json:"chart_mode,omitempty"  jsonschema:"single (bar) or categorical (pie)"`
	OtherLabel string        `json:"other_label,omitempty" jsonschema:"label of the remainder slice when limited"`
}

// TrendInput is the input schema for the fleet_trend tool.
type TrendInput struct {
	MetricIDs      []string                `json:"metric_ids"                jsonschema:"catalog metric ids, reported in this order"`
	Series         map[string][]PointInput `json:"series"                    jsonschema:"time series keyed by metric id"`
	SmoothingAlpha float64                 `json:"smoothing_alpha,omitempty" jsonschema:"EMA factor in (0, 1]; 0 disables smoothing"`
}

// CatalogInput is the input schema for the fleet_catalog tool.
type CatalogInput struct{}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

func (s *Server) handleCompare(ctx context.Context, _ *mcpsdk.CallToolRequest, input CompareInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	query, err := s.compareQuery(input)
	if err != nil {
		return errorResult(err)
	}

	report, err := s.engine.Compare(ctx, query)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(report)
}

func (s *Server) compareQuery(input CompareInput) (analysis.CompareQuery, error) {
	if input.MetricID == "" {
		return analysis.CompareQuery{}, ErrEmptyMetric
	}

	if len(input.Samples) > MaxObservations {
		return analysis.CompareQuery{}, fmt.Errorf("%w: %d (max %d)", ErrTooManyObservations, len(input.Samples), MaxObservations)
	}

	query := analysis.CompareQuery{
		MetricID:   input.MetricID,
		Samples:    make([]metric.Sample, len(input.Samples)),
		Order:      s.defaults.Order,
		Limit:      s.defaults.Limit,
		Locale:     s.defaults.Locale,
		ChartMode:  s.defaults.ChartMode,
		OtherLabel: s.defaults.OtherLabel,
	}

	for i, in := range input.Samples {
		if in.EntityID == "" {
			return analysis.CompareQuery{}, fmt.Errorf("%w: sample %d", ErrMissingEntity, i)
		}

		name := in.EntityName
		if name == "" {
			name = in.EntityID
		}

		query.Samples[i] = metric.Sample{EntityID: in.EntityID, EntityName: name, Value: in.Value}
	}

	var err error

	if input.Order != "" {
		if query.Order, err = ranking.ParseOrder(input.Order); err != nil {
			return analysis.CompareQuery{}, err
		}
	}

	if input.Limit != nil {
		query.Limit = max(*input.Limit, 0)
	}

	if input.Locale != "" {
		if query.Locale, err = language.Parse(input.Locale); err != nil {
			return analysis.CompareQuery{}, fmt.Errorf("locale: %w", err)
		}
	}

	if input.ChartMode != "" {
		if query.ChartMode, err = analysis.ParseCompareMode(input.ChartMode); err != nil {
			return analysis.CompareQuery{}, err
		}
	}

	if input.OtherLabel != "" {
		query.OtherLabel = input.OtherLabel
	}

	return query, nil
}

func (s *Server) handleTrend(ctx context.Context, _ *mcpsdk.CallToolRequest, input TrendInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	query, err := s.trendQuery(input)
	if err != nil {
		return errorResult(err)
	}

	report, err := s.engine.Trend(ctx, query)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(report)
}

func (s *Server) trendQuery(input TrendInput) (analysis.TrendQuery, error) {
	if len(input.MetricIDs) == 0 {
		return analysis.TrendQuery{}, ErrEmptyMetrics
	}

	query := analysis.TrendQuery{
		MetricIDs:      input.MetricIDs,
		Series:         make(map[string][]metric.Point, len(input.Series)),
		SmoothingAlpha: s.defaults.SmoothingAlpha,
	}

	if input.SmoothingAlpha > 0 {
		query.SmoothingAlpha = input.SmoothingAlpha
	}

	total := 0

	for id, points := range input.Series {
		total += len(points)
		if total > MaxObservations {
			return analysis.TrendQuery{}, fmt.Errorf("%w: more than %d points", ErrTooManyObservations, MaxObservations)
		}

		series := make([]metric.Point, len(points))

		for i, p := range points {
			ts, err := time.Parse(time.RFC3339, p.Timestamp)
			if err != nil {
				return analysis.TrendQuery{}, fmt.Errorf("%w: %s[%d]: %q", ErrBadTimestamp, id, i, p.Timestamp)
			}

			series[i] = metric.Point{Timestamp: ts, Value: p.Value}
		}

		query.Series[id] = series
	}

	return query, nil
}

func (s *Server) handleCatalog(_ context.Context, _ *mcpsdk.CallToolRequest, _ CatalogInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return jsonResult(s.engine.Catalog().Definitions())
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}
