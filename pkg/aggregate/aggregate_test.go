package aggregate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/fleetlens/pkg/aggregate"
	"github.com/Sumatoshi-tech/fleetlens/pkg/metric"
)

func testCatalog(t *testing.T) *metric.Catalog {
	t.Helper()

	cat, err := metric.NewCatalog(
		metric.Definition{ID: "fuel", Unit: "L/100km", LowerIsBetter: true, Thresholds: metric.Thresholds{Good: 8, Warning: 10}},
		metric.Definition{ID: "safety", Unit: "pts", Thresholds: metric.Thresholds{Good: 85, Warning: 70}},
	)
	require.NoError(t, err)

	return cat
}

func samples(values ...float64) []metric.Sample {
	out := make([]metric.Sample, len(values))

	for i, v := range values {
		name := string(rune('A' + i))
		out[i] = metric.Sample{EntityID: name, EntityName: name, Value: v}
	}

	return out
}

func TestCompute_Statistics(t *testing.T) {
	t.Parallel()

	cat := testCatalog(t)

	tests := []struct {
		name       string
		values     []float64
		wantMean   float64
		wantMedian float64
		wantStdDev float64
	}{
		{name: "odd_median", values: []float64{1, 2, 3}, wantMean: 2, wantMedian: 2, wantStdDev: 0.816496580927726},
		{name: "even_median", values: []float64{1, 2, 3, 4}, wantMean: 2.5, wantMedian: 2.5, wantStdDev: 1.118033988749895},
		{name: "constant_zero_stddev", values: []float64{2, 2, 2, 2}, wantMean: 2, wantMedian: 2, wantStdDev: 0},
		{name: "unsorted_input", values: []float64{9.2, 8.5, 6.0}, wantMean: 23.7 / 3, wantMedian: 8.5, wantStdDev: 1.3735598518691008},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := aggregate.Compute(cat, "fuel", samples(tt.values...))
			require.NoError(t, err)

			assert.False(t, res.NoData())
			assert.Equal(t, len(tt.values), res.Count)
			assert.InDelta(t, tt.wantMean, res.Mean, 1e-9)
			assert.InDelta(t, tt.wantMedian, res.Median, 1e-9)
			assert.InDelta(t, tt.wantStdDev, res.StdDev, 1e-9)
		})
	}
}

func TestCompute_MeanIsSumOverCount(t *testing.T) {
	t.Parallel()

	values := []float64{3.3, 7.1, 0.25, 12.9, 4.4, 4.4}

	res, err := aggregate.Compute(testCatalog(t), "safety", samples(values...))
	require.NoError(t, err)

	var sum float64
	for _, v := range values {
		sum += v
	}

	assert.InDelta(t, sum/float64(len(values)), res.Mean, 1e-12)
}

func TestCompute_BestWorstFollowsPolarity(t *testing.T) {
	t.Parallel()

	cat := testCatalog(t)
	input := []metric.Sample{
		{EntityID: "a", EntityName: "A", Value: 5},
		{EntityID: "b", EntityName: "B", Value: 10},
	}

	lower, err := aggregate.Compute(cat, "fuel", input)
	require.NoError(t, err)
	assert.Equal(t, "A", lower.Best.EntityName)
	assert.Equal(t, "B", lower.Worst.EntityName)

	higher, err := aggregate.Compute(cat, "safety", input)
	require.NoError(t, err)
	assert.Equal(t, "B", higher.Best.EntityName)
	assert.Equal(t, "A", higher.Worst.EntityName)

	assert.InDelta(t, 5.0, higher.Spread(), 1e-9)
}

func TestCompute_TiesKeepInputOrder(t *testing.T) {
	t.Parallel()

	input := []metric.Sample{
		{EntityID: "first", Value: 4},
		{EntityID: "second", Value: 4},
	}

	res, err := aggregate.Compute(testCatalog(t), "fuel", input)
	require.NoError(t, err)

	assert.Equal(t, "first", res.Best.EntityID)
	assert.Equal(t, "second", res.Worst.EntityID)
}

func TestCompute_EmptyIsNoData(t *testing.T) {
	t.Parallel()

	res, err := aggregate.Compute(testCatalog(t), "fuel", nil)
	require.NoError(t, err)

	assert.True(t, res.NoData())
	assert.Equal(t, "fuel", res.MetricID)
	assert.Zero(t, res.Mean)
}

func TestCompute_UnknownMetric(t *testing.T) {
	t.Parallel()

	_, err := aggregate.Compute(testCatalog(t), "tire_pressure", samples(1))
	require.ErrorIs(t, err, metric.ErrUnknownMetric)
}

func TestCompute_DoesNotReorderInput(t *testing.T) {
	t.Parallel()

	input := samples(3, 1, 2)

	_, err := aggregate.Compute(testCatalog(t), "fuel", input)
	require.NoError(t, err)

	assert.Equal(t, []float64{3, 1, 2}, metric.Values(input))
}

func TestResult_DeviationFromMean(t *testing.T) {
	t.Parallel()

	res := aggregate.Result{Count: 2, Mean: 8}

	dev, ok := res.DeviationFromMean(6)
	assert.True(t, ok)
	assert.InDelta(t, -25.0, dev, 1e-9)

	_, ok = aggregate.Result{Count: 1}.DeviationFromMean(3)
	assert.False(t, ok)
}
