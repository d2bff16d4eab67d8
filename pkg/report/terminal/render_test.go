package terminal_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/fleetlens/pkg/analysis"
	"github.com/Sumatoshi-tech/fleetlens/pkg/metric"
	"github.com/Sumatoshi-tech/fleetlens/pkg/report/terminal"
)

func newRenderer() (*terminal.Renderer, *analysis.Engine) {
	cat := metric.Default()

	return terminal.NewRenderer(terminal.Config{Width: 80, NoColor: true}, cat), analysis.New(cat, analysis.Deps{})
}

func TestRenderCompare(t *testing.T) {
	t.Parallel()

	r, engine := newRenderer()

	report, err := engine.Compare(context.Background(), analysis.CompareQuery{
		MetricID: "fuel_consumption",
		Samples: []metric.Sample{
			{EntityID: "t1", EntityName: "Truck 1", Value: 7.5},
			{EntityID: "t2", EntityName: "Truck 2", Value: 9.2},
			{EntityID: "t3", EntityName: "Truck 3", Value: 11},
		},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.RenderCompare(&buf, report))

	out := buf.String()
	assert.Contains(t, out, "COMPARE · Fuel Consumption")
	assert.Contains(t, out, "Entities 3")
	assert.Contains(t, out, "Status   good 1   warning 1   critical 1")
	assert.Contains(t, out, "7.5 L/100km")
	assert.Contains(t, out, "11 L/100km")
	assert.Contains(t, out, "critical")
	assert.Contains(t, out, "TOTAL: 3 ITEMS")
	assert.Contains(t, out, "RELATIVE")
	assert.NotContains(t, out, "SHARE")
	assert.Contains(t, out, "• Best performer: Truck 1")
	assert.NotContains(t, out, "\x1b[")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("Truck 1")), bytes.Index(buf.Bytes(), []byte("Truck 3")))
}

func TestRenderCompareNoData(t *testing.T) {
	t.Parallel()

	r, engine := newRenderer()

	report, err := engine.Compare(context.Background(), analysis.CompareQuery{MetricID: "safety_score"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.RenderCompare(&buf, report))

	assert.Contains(t, buf.String(), "No data for Safety Score.")
	assert.NotContains(t, buf.String(), "Insights")
}

func TestRenderCompareColor(t *testing.T) {
	t.Parallel()

	cat := metric.Default()
	r := terminal.NewRenderer(terminal.Config{Width: 80}, cat)

	report, err := analysis.New(cat, analysis.Deps{}).Compare(context.Background(), analysis.CompareQuery{
		MetricID: "fuel_consumption",
		Samples:  []metric.Sample{{EntityID: "t1", EntityName: "Truck 1", Value: 12}},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.RenderCompare(&buf, report))

	assert.Contains(t, buf.String(), "\x1b[")
}

func TestRenderTrend(t *testing.T) {
	t.Parallel()

	r, engine := newRenderer()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	report, err := engine.Trend(context.Background(), analysis.TrendQuery{
		MetricIDs: []string{"safety_score", "idle_time"},
		Series: map[string][]metric.Point{
			"safety_score": {
				{Timestamp: day, Value: 70},
				{Timestamp: day.AddDate(0, 0, 7), Value: 75},
				{Timestamp: day.AddDate(0, 0, 14), Value: 80},
			},
		},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.RenderTrend(&buf, report))

	out := buf.String()
	assert.Contains(t, out, "safety_score, idle_time")
	assert.Contains(t, out, "Safety Score")
	assert.Contains(t, out, "+14.3%")
	assert.Contains(t, out, "▁▅█")
	assert.Contains(t, out, "n/a")
	assert.Contains(t, out, "Safety Score increased by 14.3% over the period.")
}

func TestRenderTrendSparklineSkipsGaps(t *testing.T) {
	t.Parallel()

	r, engine := newRenderer()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	report, err := engine.Trend(context.Background(), analysis.TrendQuery{
		MetricIDs: []string{"fuel_consumption", "safety_score"},
		Series: map[string][]metric.Point{
			"fuel_consumption": {
				{Timestamp: day, Value: 8},
				{Timestamp: day.AddDate(0, 0, 14), Value: 9},
			},
			"safety_score": {
				{Timestamp: day.AddDate(0, 0, 7), Value: 80},
				{Timestamp: day.AddDate(0, 0, 21), Value: 90},
			},
		},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.RenderTrend(&buf, report))

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "▁█"))
	assert.NotContains(t, out, "▇▁█▁")
	assert.NotContains(t, out, "▁▇▁█")
}

func TestRenderTrendNoData(t *testing.T) {
	t.Parallel()

	r, engine := newRenderer()

	report, err := engine.Trend(context.Background(), analysis.TrendQuery{MetricIDs: []string{"idle_time"}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.RenderTrend(&buf, report))

	assert.Contains(t, buf.String(), "No data for the selected metrics.")
}

func TestRenderCatalog(t *testing.T) {
	t.Parallel()

	r, _ := newRenderer()

	var buf bytes.Buffer
	require.NoError(t, r.RenderCatalog(&buf))

	out := buf.String()
	assert.Contains(t, out, "METRIC CATALOG")

	for _, def := range metric.Default().Definitions() {
		assert.Contains(t, out, def.ID)
	}

	assert.Contains(t, out, "lower")
	assert.Contains(t, out, "higher")
}
