// Package aggregate computes summary statistics for one metric over a set of
// entity samples.
package aggregate

import (
	"cmp"
	"slices"

	"github.com/Sumatoshi-tech/fleetlens/pkg/alg/stats"
	"github.com/Sumatoshi-tech/fleetlens/pkg/metric"
)

// Result summarizes one metric over one sample set. A zero Count is the
// "no data" outcome; every other field is then zero.
type Result struct {
	MetricID string        `json:"metric_id"`
	Count    int           `json:"count"`
	Mean     float64       `json:"mean"`
	Median   float64       `json:"median"`
	StdDev   float64       `json:"std_dev"`
	Best     metric.Sample `json:"best"`
	Worst    metric.Sample `json:"worst"`
}

// NoData reports whether the result was computed over an empty sample set.
func (r Result) NoData() bool {
	return r.Count == 0
}

// Spread returns the absolute distance between the best and worst values.
func (r Result) Spread() float64 {
	if r.Best.Value > r.Worst.Value {
		return r.Best.Value - r.Worst.Value
	}

	return r.Worst.Value - r.Best.Value
}

// DeviationFromMean returns how far value lies from the mean, in percent of
// the mean. The second result is false when the mean is zero.
func (r Result) DeviationFromMean(value float64) (float64, bool) {
	return stats.PercentChange(r.Mean, value)
}

// Compute aggregates samples of the given metric. The only error is an
// unknown metric id; an empty sample set yields a NoData result.
func Compute(cat *metric.Catalog, metricID string, samples []metric.Sample) (Result, error) {
	def, err := cat.Lookup(metricID)
	if err != nil {
		return Result{}, err
	}

	if len(samples) == 0 {
		return Result{MetricID: metricID}, nil
	}

	values := metric.Values(samples)
	mean, stddev := stats.MeanStdDev(values)

	ascending := slices.Clone(samples)
	slices.SortStableFunc(ascending, func(a, b metric.Sample) int {
		return cmp.Compare(a.Value, b.Value)
	})

	lowest, highest := ascending[0], ascending[len(ascending)-1]

	best, worst := highest, lowest
	if def.LowerIsBetter {
		best, worst = lowest, highest
	}

	return Result{
		MetricID: metricID,
		Count:    len(samples),
		Mean:     mean,
		Median:   stats.Median(values),
		StdDev:   stddev,
		Best:     best,
		Worst:    worst,
	}, nil
}
