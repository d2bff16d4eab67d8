package chart_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/fleetlens/pkg/chart"
	"github.com/Sumatoshi-tech/fleetlens/pkg/metric"
)

func testCatalog(t *testing.T) *metric.Catalog {
	t.Helper()

	cat, err := metric.NewCatalog(
		metric.Definition{ID: "fuel", DisplayName: "Fuel", Unit: "L", Color: "#f59e0b", LowerIsBetter: true, Thresholds: metric.Thresholds{Good: 8, Warning: 10}},
		metric.Definition{ID: "distance", DisplayName: "Distance", Unit: "km", Thresholds: metric.Thresholds{Good: 1000, Warning: 400}},
	)
	require.NoError(t, err)

	return cat
}

func depots() []metric.Sample {
	return []metric.Sample{
		{EntityID: "n", EntityName: "North", Value: 30},
		{EntityID: "s", EntityName: "South", Value: 50},
		{EntityID: "e", EntityName: "East", Value: 20},
		{EntityID: "w", EntityName: "West", Value: 10},
	}
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}

	return total
}

func TestHue_KnownValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want int
	}{
		{name: "empty", in: "", want: 0},
		{name: "single char", in: "A", want: 65},
		{name: "two chars", in: "AB", want: 311},
		{name: "vehicle", in: "Truck1", want: 150},
		{name: "neighbour vehicle", in: "Truck2", want: 301},
		{name: "with space", in: "North Depot", want: 73},
		{name: "non ascii", in: "Ångström", want: 150},
		{name: "surrogate pair", in: "🚚", want: 323},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, chart.Hue(tt.in))
		})
	}
}

func TestColorForName_Deterministic(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hsl(150, 65%, 55%)", chart.ColorForName("Truck1"))
	assert.Equal(t, chart.ColorForName("Truck1"), chart.ColorForName("Truck1"))

	var wg sync.WaitGroup

	results := make([]string, 16)

	for i := range results {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			results[i] = chart.ColorForName("Long Haul Route 66")
		}(i)
	}

	wg.Wait()

	for _, got := range results {
		assert.Equal(t, results[0], got)
	}
}

func TestProject_SingleUsesCatalogColor(t *testing.T) {
	t.Parallel()

	model, err := chart.Project(testCatalog(t), chart.Input{MetricID: "fuel", Samples: depots()}, chart.ModeSingle, chart.SortSpec{}, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"North", "South", "East", "West"}, model.Labels)
	require.Len(t, model.Datasets, 1)
	assert.Equal(t, "Fuel", model.Datasets[0].Label)
	assert.Equal(t, "#f59e0b", model.Datasets[0].Color)
	assert.Equal(t, []float64{30, 50, 20, 10}, model.Datasets[0].Values)
	assert.Nil(t, model.Datasets[0].Percentages)
}

func TestProject_SingleFallsBackToHashColor(t *testing.T) {
	t.Parallel()

	model, err := chart.Project(testCatalog(t), chart.Input{MetricID: "distance", Samples: depots()}, chart.ModeSingle, chart.SortSpec{}, 0)
	require.NoError(t, err)

	assert.Equal(t, chart.ColorForName("Distance"), model.Datasets[0].Color)
}

func TestProject_SortThenLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		sort   chart.SortSpec
		limit  int
		labels []string
	}{
		{name: "input order", sort: chart.SortSpec{}, limit: 2, labels: []string{"North", "South"}},
		{name: "value ascending", sort: chart.SortSpec{By: chart.SortByValue}, limit: 3, labels: []string{"West", "East", "North"}},
		{name: "value descending", sort: chart.SortSpec{By: chart.SortByValue, Descending: true}, limit: 2, labels: []string{"South", "North"}},
		{name: "label", sort: chart.SortSpec{By: chart.SortByLabel}, limit: 0, labels: []string{"East", "North", "South", "West"}},
		{name: "limit above length", sort: chart.SortSpec{}, limit: 10, labels: []string{"North", "South", "East", "West"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			model, err := chart.Project(testCatalog(t), chart.Input{MetricID: "fuel", Samples: depots()}, chart.ModeSingle, tt.sort, tt.limit)
			require.NoError(t, err)

			assert.Equal(t, tt.labels, model.Labels)
			assert.Len(t, model.Datasets[0].Values, len(tt.labels))
		})
	}
}

func TestProject_CategoricalPercentagesOverFullSet(t *testing.T) {
	t.Parallel()

	model, err := chart.Project(testCatalog(t), chart.Input{MetricID: "distance", Samples: depots()}, chart.ModeCategorical, chart.SortSpec{}, 0)
	require.NoError(t, err)

	ds := model.Datasets[0]
	assert.Equal(t, []int{27, 45, 18, 9}, ds.Percentages)
	assert.InDelta(t, 100, sum(ds.Percentages), 2)
	assert.Equal(t, chart.ColorForName("North"), ds.Colors[0])
	assert.Equal(t, chart.ColorForName("West"), ds.Colors[3])
}

func TestProject_CategoricalLimitKeepsFullTotal(t *testing.T) {
	t.Parallel()

	model, err := chart.Project(testCatalog(t), chart.Input{MetricID: "distance", Samples: depots()},
		chart.ModeCategorical, chart.SortSpec{By: chart.SortByValue, Descending: true}, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"South", "North"}, model.Labels)
	// Percentages of the visible slices stay relative to the whole fleet.
	assert.Equal(t, []int{45, 27}, model.Datasets[0].Percentages)
}

func TestProject_CategoricalOtherSlice(t *testing.T) {
	t.Parallel()

	in := chart.Input{MetricID: "distance", Samples: depots(), OtherLabel: "Other"}

	model, err := chart.Project(testCatalog(t), in, chart.ModeCategorical, chart.SortSpec{By: chart.SortByValue, Descending: true}, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"South", "North", "Other"}, model.Labels)
	assert.Equal(t, []float64{50, 30, 30}, model.Datasets[0].Values)
	assert.Equal(t, []int{45, 27, 27}, model.Datasets[0].Percentages)
	assert.InDelta(t, 100, sum(model.Datasets[0].Percentages), 2)

	unlimited, err := chart.Project(testCatalog(t), in, chart.ModeCategorical, chart.SortSpec{}, 0)
	require.NoError(t, err)
	assert.NotContains(t, unlimited.Labels, "Other")
}

func TestProject_CategoricalZeroTotal(t *testing.T) {
	t.Parallel()

	samples := []metric.Sample{{EntityName: "A"}, {EntityName: "B"}}

	model, err := chart.Project(testCatalog(t), chart.Input{MetricID: "distance", Samples: samples}, chart.ModeCategorical, chart.SortSpec{}, 0)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 0}, model.Datasets[0].Percentages)
}

func TestProject_MultiSeries(t *testing.T) {
	t.Parallel()

	in := chart.Input{Series: []chart.Series{
		{Name: "Fuel", MetricID: "fuel", Labels: []string{"Mon", "Tue", "Wed"}, Values: []float64{8, 9, 7}},
		{Name: "Van 7", Labels: []string{"Tue", "Thu"}, Values: []float64{5, 6}},
	}}

	model, err := chart.Project(testCatalog(t), in, chart.ModeMultiSeries, chart.SortSpec{}, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"Mon", "Tue", "Wed", "Thu"}, model.Labels)
	require.Len(t, model.Datasets, 2)
	assert.Equal(t, []float64{8, 9, 7, 0}, model.Datasets[0].Values)
	assert.Equal(t, []float64{0, 5, 0, 6}, model.Datasets[1].Values)
	assert.Equal(t, "#f59e0b", model.Datasets[0].Color)
	assert.Equal(t, chart.ColorForName("Van 7"), model.Datasets[1].Color)

	assert.Equal(t, []bool{false, false, false, true}, model.Datasets[0].Gaps)
	assert.Equal(t, []bool{true, false, true, false}, model.Datasets[1].Gaps)
	assert.Equal(t, []float64{8, 9, 7}, model.Datasets[0].Present())
	assert.Equal(t, []float64{5, 6}, model.Datasets[1].Present())
}

func TestProject_MultiSeriesZeroValueIsNotAGap(t *testing.T) {
	t.Parallel()

	in := chart.Input{Series: []chart.Series{
		{Name: "a", Labels: []string{"Mon", "Tue"}, Values: []float64{0, 4}},
		{Name: "b", Labels: []string{"Mon", "Tue"}, Values: []float64{1, 0}},
	}}

	model, err := chart.Project(testCatalog(t), in, chart.ModeMultiSeries, chart.SortSpec{}, 0)
	require.NoError(t, err)

	for _, ds := range model.Datasets {
		assert.Nil(t, ds.Gaps, ds.Label)
		assert.Equal(t, ds.Values, ds.Present(), ds.Label)
	}
}

func TestProject_MultiSeriesSortByLabelAndLimit(t *testing.T) {
	t.Parallel()

	in := chart.Input{Series: []chart.Series{
		{Name: "a", Labels: []string{"c", "a", "b"}, Values: []float64{3, 1, 2}},
	}}

	model, err := chart.Project(testCatalog(t), in, chart.ModeMultiSeries, chart.SortSpec{By: chart.SortByLabel}, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, model.Labels)
	assert.Equal(t, []float64{1, 2}, model.Datasets[0].Values)
}

func TestProject_Errors(t *testing.T) {
	t.Parallel()

	cat := testCatalog(t)

	_, err := chart.Project(cat, chart.Input{MetricID: "nope"}, chart.ModeSingle, chart.SortSpec{}, 0)
	require.ErrorIs(t, err, metric.ErrUnknownMetric)

	_, err = chart.Project(cat, chart.Input{MetricID: "fuel"}, chart.Mode("radar"), chart.SortSpec{}, 0)
	require.ErrorIs(t, err, chart.ErrUnknownMode)

	_, err = chart.Project(cat, chart.Input{MetricID: "fuel"}, chart.ModeSingle, chart.SortSpec{By: "size"}, 0)
	require.ErrorIs(t, err, chart.ErrUnknownSort)

	_, err = chart.Project(cat, chart.Input{}, chart.ModeMultiSeries, chart.SortSpec{}, 0)
	require.ErrorIs(t, err, chart.ErrNoSeries)

	_, err = chart.Project(cat, chart.Input{Series: []chart.Series{{Name: "x", MetricID: "bogus"}}}, chart.ModeMultiSeries, chart.SortSpec{}, 0)
	require.ErrorIs(t, err, metric.ErrUnknownMetric)
}

func TestProject_EmptySamples(t *testing.T) {
	t.Parallel()

	model, err := chart.Project(testCatalog(t), chart.Input{MetricID: "fuel"}, chart.ModeSingle, chart.SortSpec{}, 3)
	require.NoError(t, err)

	assert.Empty(t, model.Labels)
	require.Len(t, model.Datasets, 1)
	assert.Empty(t, model.Datasets[0].Values)
}

func TestProject_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	samples := depots()

	_, err := chart.Project(testCatalog(t), chart.Input{MetricID: "fuel", Samples: samples}, chart.ModeSingle, chart.SortSpec{By: chart.SortByValue}, 2)
	require.NoError(t, err)

	assert.Equal(t, depots(), samples)
}

func TestFromPoints(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	points := []metric.Point{
		{Timestamp: day.AddDate(0, 0, 1), Value: 2},
		{Timestamp: day, Value: 1},
	}

	s := chart.FromPoints("Fuel", "fuel", points, "")

	assert.Equal(t, []string{"2024-05-01", "2024-05-02"}, s.Labels)
	assert.Equal(t, []float64{1, 2}, s.Values)
	assert.Equal(t, "fuel", s.MetricID)
}

func TestFromSamples(t *testing.T) {
	t.Parallel()

	s := chart.FromSamples("Fleet", "", depots())

	assert.Equal(t, []string{"North", "South", "East", "West"}, s.Labels)
	assert.Equal(t, []float64{30, 50, 20, 10}, s.Values)
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	mode, err := chart.ParseMode("categorical")
	require.NoError(t, err)
	assert.Equal(t, chart.ModeCategorical, mode)

	mode, err = chart.ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, chart.ModeSingle, mode)

	_, err = chart.ParseMode("donut")
	require.ErrorIs(t, err, chart.ErrUnknownMode)
}
