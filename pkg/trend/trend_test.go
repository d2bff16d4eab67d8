package trend_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/fleetlens/pkg/metric"
	"github.com/Sumatoshi-tech/fleetlens/pkg/trend"
)

var base = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return base.AddDate(0, 0, n)
}

func series(values ...float64) []metric.Point {
	out := make([]metric.Point, len(values))

	for i, v := range values {
		out[i] = metric.Point{Timestamp: day(i), Value: v}
	}

	return out
}

func testCatalog(t *testing.T) *metric.Catalog {
	t.Helper()

	cat, err := metric.NewCatalog(
		metric.Definition{ID: "distance", DisplayName: "Distance", Unit: "km", Thresholds: metric.Thresholds{Good: 1000, Warning: 400}},
		metric.Definition{ID: "fuel", DisplayName: "Fuel", Unit: "L/100km", LowerIsBetter: true, Thresholds: metric.Thresholds{Good: 8, Warning: 10}},
		metric.Definition{ID: "uptime", DisplayName: "Uptime", Unit: "%", Thresholds: metric.Thresholds{Good: 99, Warning: 95}},
	)
	require.NoError(t, err)

	return cat
}

func texts(insights []trend.Insight) []string {
	out := make([]string, len(insights))

	for i, in := range insights {
		out[i] = in.Text
	}

	return out
}

func kinds(insights []trend.Insight) []string {
	out := make([]string, len(insights))

	for i, in := range insights {
		out[i] = in.Kind
	}

	return out
}

func TestCompute_PercentChange(t *testing.T) {
	t.Parallel()

	res, err := trend.Compute(testCatalog(t), "distance", series(100, 110), trend.Options{})
	require.NoError(t, err)

	require.NotNil(t, res.PercentChange)
	assert.InDelta(t, 10.0, *res.PercentChange, 1e-9)
	assert.Equal(t, trend.DirectionIncrease, res.Direction)
	assert.Equal(t, trend.OutcomeImprovement, res.Outcome)
	assert.Equal(t, trend.BucketDramatic, res.Bucket)
	assert.InDelta(t, 105.0, res.Average, 1e-9)
	assert.InDelta(t, 100.0, res.Min, 1e-9)
	assert.InDelta(t, 110.0, res.Max, 1e-9)
	assert.Equal(t, 2, res.Points)
	assert.False(t, res.NoData())
}

func TestCompute_ZeroBaselineLeavesChangeUndefined(t *testing.T) {
	t.Parallel()

	var (
		res trend.Result
		err error
	)

	require.NotPanics(t, func() {
		res, err = trend.Compute(testCatalog(t), "distance", series(0, 5), trend.Options{})
	})
	require.NoError(t, err)

	assert.Nil(t, res.PercentChange)
	assert.Equal(t, trend.DirectionUndefined, res.Direction)
	assert.Equal(t, trend.OutcomeUndefined, res.Outcome)
	assert.Equal(t, trend.BucketNone, res.Bucket)
	assert.Equal(t, []string{trend.KindAverage, trend.KindRange}, kinds(res.Insights))
}

func TestCompute_HigherIsBetterImprovementRemark(t *testing.T) {
	t.Parallel()

	res, err := trend.Compute(metric.Default(), "safety_score", series(70, 80), trend.Options{})
	require.NoError(t, err)

	assert.Equal(t, trend.OutcomeImprovement, res.Outcome)
	assert.Equal(t, []string{
		"Average Safety Score is 75.00 pts.",
		"Safety Score increased by 14.3% over the period.",
		"Safety Score ranged from 70.00 pts to 80.00 pts.",
		"Safety scores rose 14.3%; recognise the drivers behind the improvement.",
	}, texts(res.Insights))
}

func TestCompute_LowerIsBetterIncreaseIsDecline(t *testing.T) {
	t.Parallel()

	res, err := trend.Compute(testCatalog(t), "fuel", series(8, 8.6), trend.Options{})
	require.NoError(t, err)

	assert.Equal(t, trend.DirectionIncrease, res.Direction)
	assert.Equal(t, trend.OutcomeDecline, res.Outcome)
	assert.Equal(t, trend.BucketNotable, res.Bucket)
	assert.Equal(t, "Fuel shows a notable decline of 7.5%; keep an eye on it.", res.Insights[len(res.Insights)-1].Text)
}

func TestCompute_NoChangeBranch(t *testing.T) {
	t.Parallel()

	res, err := trend.Compute(testCatalog(t), "distance", series(500, 700, 500), trend.Options{})
	require.NoError(t, err)

	require.NotNil(t, res.PercentChange)
	assert.Zero(t, *res.PercentChange)
	assert.Equal(t, trend.DirectionNoChange, res.Direction)
	assert.Equal(t, trend.OutcomeSteady, res.Outcome)
	assert.Equal(t, trend.BucketSlight, res.Bucket)
	assert.Equal(t, []string{
		"Average Distance is 566.67 km.",
		"No significant change in Distance over the period.",
		"Distance ranged from 500.00 km to 700.00 km.",
		"Distance is holding steady.",
	}, texts(res.Insights))
}

func TestCompute_DecreaseSentence(t *testing.T) {
	t.Parallel()

	res, err := trend.Compute(testCatalog(t), "uptime", series(99, 98), trend.Options{})
	require.NoError(t, err)

	assert.Equal(t, trend.BucketSlight, res.Bucket)
	assert.Equal(t, []string{
		"Average Uptime is 98.50%.",
		"Uptime decreased by 1.0% over the period.",
		"Uptime ranged from 98.00% to 99.00%.",
		"Uptime declined slightly, within normal variation.",
	}, texts(res.Insights))
}

func TestCompute_OrdersPointsByTimestamp(t *testing.T) {
	t.Parallel()

	points := []metric.Point{
		{Timestamp: day(2), Value: 120},
		{Timestamp: day(0), Value: 100},
		{Timestamp: day(1), Value: 90},
	}

	res, err := trend.Compute(testCatalog(t), "distance", points, trend.Options{})
	require.NoError(t, err)

	require.NotNil(t, res.PercentChange)
	assert.InDelta(t, 20.0, *res.PercentChange, 1e-9)
	assert.Equal(t, day(2), points[0].Timestamp, "input must not be reordered")
}

func TestCompute_EmptySeries(t *testing.T) {
	t.Parallel()

	res, err := trend.Compute(testCatalog(t), "distance", nil, trend.Options{})
	require.NoError(t, err)

	assert.True(t, res.NoData())
	assert.Equal(t, "distance", res.MetricID)
	assert.Nil(t, res.PercentChange)
	assert.NotNil(t, res.Insights)
	assert.Empty(t, res.Insights)
}

func TestCompute_SinglePoint(t *testing.T) {
	t.Parallel()

	res, err := trend.Compute(testCatalog(t), "distance", series(42), trend.Options{})
	require.NoError(t, err)

	require.NotNil(t, res.PercentChange)
	assert.Zero(t, *res.PercentChange)
	assert.Equal(t, trend.OutcomeSteady, res.Outcome)
}

func TestCompute_UnknownMetric(t *testing.T) {
	t.Parallel()

	_, err := trend.Compute(testCatalog(t), "nope", series(1, 2), trend.Options{})
	require.ErrorIs(t, err, metric.ErrUnknownMetric)
}

func TestCompute_Smoothing(t *testing.T) {
	t.Parallel()

	res, err := trend.Compute(testCatalog(t), "distance", series(100, 200, 100), trend.Options{SmoothingAlpha: 0.5})
	require.NoError(t, err)

	require.Len(t, res.Smoothed, 3)
	assert.InDelta(t, 100.0, res.Smoothed[0], 1e-9)
	assert.InDelta(t, 150.0, res.Smoothed[1], 1e-9)
	assert.InDelta(t, 125.0, res.Smoothed[2], 1e-9)

	plain, err := trend.Compute(testCatalog(t), "distance", series(100, 200, 100), trend.Options{})
	require.NoError(t, err)
	assert.Nil(t, plain.Smoothed)
}

func TestCompute_CustomRemarkOverridesDefault(t *testing.T) {
	t.Parallel()

	opts := trend.Options{Remarks: trend.RemarkTable{
		{MetricID: "safety_score", Sign: trend.SignPositive, Bucket: trend.BucketDramatic}: "{metric} up {change}, well done.",
	}}

	res, err := trend.Compute(metric.Default(), "safety_score", series(70, 80), opts)
	require.NoError(t, err)

	assert.Equal(t, "Safety Score up 14.3%, well done.", res.Insights[len(res.Insights)-1].Text)
}

func TestDefaultRemarks_ReturnsCopy(t *testing.T) {
	t.Parallel()

	first := trend.DefaultRemarks()
	require.NotEmpty(t, first)

	for k := range first {
		delete(first, k)
	}

	assert.NotEmpty(t, trend.DefaultRemarks())
}

func TestBucketFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		change float64
		want   trend.Bucket
	}{
		{name: "zero", change: 0, want: trend.BucketSlight},
		{name: "below notable", change: 4.99, want: trend.BucketSlight},
		{name: "notable boundary", change: 5, want: trend.BucketNotable},
		{name: "negative notable", change: -7, want: trend.BucketNotable},
		{name: "dramatic boundary", change: 10, want: trend.BucketDramatic},
		{name: "negative dramatic", change: -25, want: trend.BucketDramatic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, trend.BucketFor(tt.change))
		})
	}
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "12.50", trend.FormatValue(12.5, ""))
	assert.Equal(t, "95.00%", trend.FormatValue(95, "%"))
	assert.Equal(t, "8.25 L/100km", trend.FormatValue(8.25, "L/100km"))
}

func TestComputeAll_ConcatenatesInMetricOrder(t *testing.T) {
	t.Parallel()

	data := map[string][]metric.Point{
		"distance": series(100, 110),
		"fuel":     series(10, 8),
	}

	multi, err := trend.ComputeAll(testCatalog(t), []string{"fuel", "uptime", "distance"}, data, trend.Options{})
	require.NoError(t, err)

	require.Len(t, multi.Results, 3)
	assert.Equal(t, "fuel", multi.Results[0].MetricID)
	assert.True(t, multi.Results[1].NoData())
	assert.Equal(t, "distance", multi.Results[2].MetricID)

	want := append(append([]trend.Insight{}, multi.Results[0].Insights...), multi.Results[2].Insights...)
	assert.Equal(t, want, multi.Insights)
	assert.Equal(t, "fuel", multi.Insights[0].MetricID)
	assert.Equal(t, "distance", multi.Insights[len(multi.Insights)-1].MetricID)
}

func TestComputeAll_UnknownMetric(t *testing.T) {
	t.Parallel()

	_, err := trend.ComputeAll(testCatalog(t), []string{"distance", "bogus"}, nil, trend.Options{})
	require.ErrorIs(t, err, metric.ErrUnknownMetric)
}
