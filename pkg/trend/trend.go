// Package trend computes the change of fleet metrics over time and phrases it
// as templated insights.
package trend

import (
	"cmp"
	"math"
	"slices"

	"github.com/Sumatoshi-tech/fleetlens/pkg/alg/stats"
	"github.com/Sumatoshi-tech/fleetlens/pkg/metric"
)

// Magnitude bucket boundaries, in absolute percent change.
const (
	NotableChangePct  = 5.0
	DramaticChangePct = 10.0
)

// Direction is the sign of the percent change.
type Direction string

// Directions. DirectionUndefined means the baseline was zero.
const (
	DirectionUndefined Direction = ""
	DirectionIncrease  Direction = "increase"
	DirectionDecrease  Direction = "decrease"
	DirectionNoChange  Direction = "no_change"
)

// Outcome is the direction judged against the metric polarity.
type Outcome string

// Outcomes.
const (
	OutcomeUndefined   Outcome = ""
	OutcomeImprovement Outcome = "improvement"
	OutcomeDecline     Outcome = "decline"
	OutcomeSteady      Outcome = "steady"
)

// Bucket classifies the magnitude of a change.
type Bucket string

// Buckets.
const (
	BucketNone     Bucket = ""
	BucketSlight   Bucket = "slight"
	BucketNotable  Bucket = "notable"
	BucketDramatic Bucket = "dramatic"
)

// BucketFor returns the magnitude bucket of a percent change.
func BucketFor(percentChange float64) Bucket {
	magnitude := math.Abs(percentChange)

	switch {
	case magnitude >= DramaticChangePct:
		return BucketDramatic
	case magnitude >= NotableChangePct:
		return BucketNotable
	default:
		return BucketSlight
	}
}

// Options tunes a trend computation. The zero value uses DefaultRemarks and
// no smoothing.
type Options struct {
	// Remarks extends DefaultRemarks; its entries win on conflicts.
	Remarks RemarkTable
	// SmoothingAlpha > 0 adds an EMA-smoothed copy of the series.
	SmoothingAlpha float64
}

// Result is the trend of one metric over one series. PercentChange is nil
// when the first value is zero; Points == 0 means the series was empty.
type Result struct {
	MetricID      string    `json:"metric_id"`
	Points        int       `json:"points"`
	Average       float64   `json:"average"`
	PercentChange *float64  `json:"percent_change,omitempty"`
	Min           float64   `json:"min"`
	Max           float64   `json:"max"`
	Direction     Direction `json:"direction,omitempty"`
	Outcome       Outcome   `json:"outcome,omitempty"`
	Bucket        Bucket    `json:"bucket,omitempty"`
	Smoothed      []float64 `json:"smoothed,omitempty"`
	Insights      []Insight `json:"insights"`
}

// NoData reports whether the series was empty.
func (r Result) NoData() bool {
	return r.Points == 0
}

// Compute derives the trend of metricID over series. Points are ordered by
// timestamp (stable) before first and last are taken. The only error is an
// unknown metric id.
func Compute(cat *metric.Catalog, metricID string, series []metric.Point, opts Options) (Result, error) {
	def, err := cat.Lookup(metricID)
	if err != nil {
		return Result{}, err
	}

	if len(series) == 0 {
		return Result{MetricID: metricID, Insights: []Insight{}}, nil
	}

	ordered := slices.Clone(series)
	slices.SortStableFunc(ordered, func(a, b metric.Point) int {
		return cmp.Compare(a.Timestamp.UnixNano(), b.Timestamp.UnixNano())
	})

	values := metric.PointValues(ordered)

	res := Result{
		MetricID: metricID,
		Points:   len(values),
		Average:  stats.Mean(values),
		Min:      stats.Min(values),
		Max:      stats.Max(values),
		Smoothed: stats.Smooth(values, opts.SmoothingAlpha),
	}

	if change, ok := stats.PercentChange(values[0], values[len(values)-1]); ok {
		res.PercentChange = &change
		res.Direction = directionOf(change)
		res.Outcome = outcomeOf(res.Direction, def.LowerIsBetter)
		res.Bucket = BucketFor(change)
	}

	res.Insights = describe(def, res, opts.Remarks)

	return res, nil
}

// Multi is the outcome of a multi-metric trend query.
type Multi struct {
	Results  []Result  `json:"results"`
	Insights []Insight `json:"insights"`
}

// ComputeAll runs Compute once per metric id, in the given order, and
// concatenates the insights. A metric without a series yields an empty result.
func ComputeAll(cat *metric.Catalog, metricIDs []string, series map[string][]metric.Point, opts Options) (Multi, error) {
	out := Multi{
		Results:  make([]Result, 0, len(metricIDs)),
		Insights: []Insight{},
	}

	for _, id := range metricIDs {
		res, err := Compute(cat, id, series[id], opts)
		if err != nil {
			return Multi{}, err
		}

		out.Results = append(out.Results, res)
		out.Insights = append(out.Insights, res.Insights...)
	}

	return out, nil
}

func directionOf(change float64) Direction {
	switch {
	case change > 0:
		return DirectionIncrease
	case change < 0:
		return DirectionDecrease
	default:
		return DirectionNoChange
	}
}

func outcomeOf(dir Direction, lowerIsBetter bool) Outcome {
	switch dir {
	case DirectionNoChange:
		return OutcomeSteady
	case DirectionIncrease:
		if lowerIsBetter {
			return OutcomeDecline
		}

		return OutcomeImprovement
	case DirectionDecrease:
		if lowerIsBetter {
			return OutcomeImprovement
		}

		return OutcomeDecline
	default:
		return OutcomeUndefined
	}
}
