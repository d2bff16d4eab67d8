// Package chart projects analysis results into library-agnostic chart models:
// labels, datasets and deterministic colors.
package chart

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Sumatoshi-tech/fleetlens/pkg/alg/stats"
	"github.com/Sumatoshi-tech/fleetlens/pkg/metric"
)

// Mode selects the chart shape.
type Mode string

// Chart modes.
const (
	ModeSingle      Mode = "single"
	ModeMultiSeries Mode = "multi_series"
	ModeCategorical Mode = "categorical"
)

// SortBy selects the sort key of a projection.
type SortBy string

// Sort keys. SortNone keeps input order.
const (
	SortNone    SortBy = ""
	SortByValue SortBy = "value"
	SortByLabel SortBy = "label"
)

// Sentinel errors.
var (
	ErrUnknownMode = errors.New("unknown chart mode")
	ErrUnknownSort = errors.New("unknown sort key")
	ErrNoSeries    = errors.New("multi-series chart needs at least one series")
)

// SortSpec orders labels before the limit is applied.
type SortSpec struct {
	By         SortBy
	Descending bool
}

// Dataset is one plotted series.
type Dataset struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
	Color  string    `json:"color"`
	// Colors holds one color per label in categorical mode.
	Colors []string `json:"colors,omitempty"`
	// Percentages holds round(value/total*100) per label in categorical mode,
	// with total summed over the full input.
	Percentages []int `json:"percentages,omitempty"`
	// Gaps marks, in multi-series mode, the labels this series has no point
	// for. Their Values entry is 0 and should not be drawn. Nil when the
	// series covers every label.
	Gaps []bool `json:"gaps,omitempty"`
}

// Present returns the values that are not gaps, in label order.
func (d Dataset) Present() []float64 {
	if len(d.Gaps) == 0 {
		return d.Values
	}

	out := make([]float64, 0, len(d.Values))

	for i, v := range d.Values {
		if i >= len(d.Gaps) || !d.Gaps[i] {
			out = append(out, v)
		}
	}

	return out
}

// Model is the chart-ready structure consumed by a charting layer.
type Model struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Series is one named line of a multi-series chart.
type Series struct {
	Name string
	// MetricID, when set, resolves the series color from the catalog.
	MetricID string
	Labels   []string
	Values   []float64
}

// Input carries the data of one projection. Single and categorical modes read
// Samples; multi-series mode reads Series.
type Input struct {
	MetricID string
	Samples  []metric.Sample
	Series   []Series
	// OtherLabel folds categories cut by the limit into one remainder slice.
	OtherLabel string
}

// ParseMode converts a user supplied mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSingle, ModeMultiSeries, ModeCategorical:
		return Mode(s), nil
	case "":
		return ModeSingle, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// FromPoints builds a series from a time series, ordered by timestamp and
// labelled with layout.
func FromPoints(name, metricID string, points []metric.Point, layout string) Series {
	ordered := slices.Clone(points)
	slices.SortStableFunc(ordered, func(a, b metric.Point) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	s := Series{
		Name:     name,
		MetricID: metricID,
		Labels:   make([]string, len(ordered)),
		Values:   metric.PointValues(ordered),
	}

	for i, p := range ordered {
		s.Labels[i] = p.Timestamp.Format(cmp.Or(layout, time.DateOnly))
	}

	return s
}

// FromSamples builds a series labelled by entity name.
func FromSamples(name, metricID string, samples []metric.Sample) Series {
	s := Series{
		Name:     name,
		MetricID: metricID,
		Labels:   make([]string, len(samples)),
		Values:   metric.Values(samples),
	}

	for i, sample := range samples {
		s.Labels[i] = sample.EntityName
	}

	return s
}

// Project shapes in as a chart of the given mode. Sorting happens before the
// limit (<= 0 means no limit).
func Project(cat *metric.Catalog, in Input, mode Mode, sortSpec SortSpec, limit int) (Model, error) {
	switch sortSpec.By {
	case SortNone, SortByValue, SortByLabel:
	default:
		return Model{}, fmt.Errorf("%w: %q", ErrUnknownSort, sortSpec.By)
	}

	switch mode {
	case ModeSingle:
		return projectSingle(cat, in, sortSpec, limit)
	case ModeCategorical:
		return projectCategorical(cat, in, sortSpec, limit)
	case ModeMultiSeries:
		return projectMulti(cat, in, sortSpec, limit)
	default:
		return Model{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

type item struct {
	label string
	value float64
}

func itemsOf(samples []metric.Sample) []item {
	out := make([]item, len(samples))

	for i, s := range samples {
		out[i] = item{label: s.EntityName, value: s.Value}
	}

	return out
}

func sortItems(items []item, spec SortSpec) {
	var compare func(a, b item) int

	switch spec.By {
	case SortByValue:
		compare = func(a, b item) int { return cmp.Compare(a.value, b.value) }
	case SortByLabel:
		compare = func(a, b item) int { return cmp.Compare(a.label, b.label) }
	default:
		return
	}

	if spec.Descending {
		asc := compare
		compare = func(a, b item) int { return asc(b, a) }
	}

	slices.SortStableFunc(items, compare)
}

func truncate[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}

	return s
}

func projectSingle(cat *metric.Catalog, in Input, spec SortSpec, limit int) (Model, error) {
	def, err := cat.Lookup(in.MetricID)
	if err != nil {
		return Model{}, err
	}

	items := itemsOf(in.Samples)
	sortItems(items, spec)
	items = truncate(items, limit)

	ds := Dataset{
		Label:  def.DisplayName,
		Values: make([]float64, len(items)),
		Color:  resolveColor(def.Color, def.DisplayName),
	}
	labels := make([]string, len(items))

	for i, it := range items {
		labels[i] = it.label
		ds.Values[i] = it.value
	}

	return Model{Labels: labels, Datasets: []Dataset{ds}}, nil
}

func projectCategorical(cat *metric.Catalog, in Input, spec SortSpec, limit int) (Model, error) {
	def, err := cat.Lookup(in.MetricID)
	if err != nil {
		return Model{}, err
	}

	items := itemsOf(in.Samples)
	total := stats.Sum(metric.Values(in.Samples))

	sortItems(items, spec)

	visible := truncate(items, limit)
	if in.OtherLabel != "" && len(visible) < len(items) {
		var rest float64
		for _, it := range items[len(visible):] {
			rest += it.value
		}

		visible = append(slices.Clone(visible), item{label: in.OtherLabel, value: rest})
	}

	ds := Dataset{
		Label:       def.DisplayName,
		Values:      make([]float64, len(visible)),
		Color:       resolveColor(def.Color, def.DisplayName),
		Colors:      make([]string, len(visible)),
		Percentages: make([]int, len(visible)),
	}
	labels := make([]string, len(visible))

	for i, it := range visible {
		labels[i] = it.label
		ds.Values[i] = it.value
		ds.Colors[i] = ColorForName(it.label)
		ds.Percentages[i] = stats.Share(it.value, total)
	}

	return Model{Labels: labels, Datasets: []Dataset{ds}}, nil
}

func projectMulti(cat *metric.Catalog, in Input, spec SortSpec, limit int) (Model, error) {
	if len(in.Series) == 0 {
		return Model{}, ErrNoSeries
	}

	colors := make([]string, len(in.Series))

	for i, s := range in.Series {
		declared := ""

		if s.MetricID != "" {
			def, err := cat.Lookup(s.MetricID)
			if err != nil {
				return Model{}, err
			}

			declared = def.Color
		}

		colors[i] = resolveColor(declared, s.Name)
	}

	lookup := make([]map[string]float64, len(in.Series))
	totals := map[string]float64{}

	var labels []string

	for i, s := range in.Series {
		lookup[i] = make(map[string]float64, len(s.Labels))

		for j, label := range s.Labels {
			if j >= len(s.Values) {
				break
			}

			if _, seen := totals[label]; !seen {
				labels = append(labels, label)
			}

			lookup[i][label] = s.Values[j]
			totals[label] += s.Values[j]
		}
	}

	items := make([]item, len(labels))
	for i, label := range labels {
		items[i] = item{label: label, value: totals[label]}
	}

	sortItems(items, spec)
	items = truncate(items, limit)

	model := Model{
		Labels:   make([]string, len(items)),
		Datasets: make([]Dataset, len(in.Series)),
	}

	for i, it := range items {
		model.Labels[i] = it.label
	}

	for i, s := range in.Series {
		ds := Dataset{Label: s.Name, Values: make([]float64, len(items)), Color: colors[i]}
		gaps := make([]bool, len(items))
		missing := false

		for j, it := range items {
			v, ok := lookup[i][it.label]
			ds.Values[j] = v
			gaps[j] = !ok
			missing = missing || !ok
		}

		if missing {
			ds.Gaps = gaps
		}

		model.Datasets[i] = ds
	}

	return model, nil
}
