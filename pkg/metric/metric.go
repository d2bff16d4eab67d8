// Package metric holds the fleet metric catalog and the observation types
// every analysis consumes: per-entity samples and time-ordered points.
package metric

import "time"

// Definition describes one measurable fleet quantity.
type Definition struct {
	ID            string     `json:"id"              yaml:"id"`
	DisplayName   string     `json:"display_name"    yaml:"display_name"`
	Unit          string     `json:"unit"            yaml:"unit"`
	Color         string     `json:"color,omitempty" yaml:"color"`
	LowerIsBetter bool       `json:"lower_is_better" yaml:"lower_is_better"`
	Thresholds    Thresholds `json:"thresholds"      yaml:"thresholds"`
}

// Thresholds are the status boundaries of a metric, expressed in the
// metric's own unit. For lower-is-better metrics Good <= Warning, otherwise
// Good >= Warning.
type Thresholds struct {
	Good    float64 `json:"good"    yaml:"good"`
	Warning float64 `json:"warning" yaml:"warning"`
}

// Better reports whether a is strictly better than b under the metric polarity.
func (d Definition) Better(a, b float64) bool {
	if d.LowerIsBetter {
		return a < b
	}

	return a > b
}

// Sample is one observation of one metric for one entity.
type Sample struct {
	EntityID   string  `json:"entity_id"   yaml:"entity_id"`
	EntityName string  `json:"entity_name" yaml:"entity_name"`
	Value      float64 `json:"value"       yaml:"value"`
}

// Values extracts the sample values in input order.
func Values(samples []Sample) []float64 {
	out := make([]float64, len(samples))

	for i, s := range samples {
		out[i] = s.Value
	}

	return out
}

// Point is one observation in a time-ordered series.
type Point struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Value     float64   `json:"value"     yaml:"value"`
}

// PointValues extracts the point values in series order.
func PointValues(points []Point) []float64 {
	out := make([]float64, len(points))

	for i, p := range points {
		out[i] = p.Value
	}

	return out
}

// Status is the health classification of a value.
type Status string

// Status values. StatusUnknown is only the zero value and never produced by
// a classifier.
const (
	StatusUnknown  Status = ""
	StatusGood     Status = "good"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// Classifier maps a value of the given metric to a status.
type Classifier func(value float64, metricID string) Status
