package metric

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrUnknownMetric matches any *UnknownMetricError.
	ErrUnknownMetric = errors.New("unknown metric")
	// ErrEmptyMetricID is returned for definitions without an id.
	ErrEmptyMetricID = errors.New("metric id must not be empty")
	// ErrDuplicateMetric is returned when two definitions share an id.
	ErrDuplicateMetric = errors.New("duplicate metric id")
	// ErrInvalidThresholds is returned when thresholds contradict the polarity.
	ErrInvalidThresholds = errors.New("thresholds contradict metric polarity")
)

// UnknownMetricError reports a metric id that does not resolve in the catalog.
// It signals a wiring bug between the caller and the catalog, not bad data.
type UnknownMetricError struct {
	ID string
}

func (e *UnknownMetricError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownMetric, e.ID)
}

// Is makes errors.Is(err, ErrUnknownMetric) succeed.
func (e *UnknownMetricError) Is(target error) bool {
	return target == ErrUnknownMetric
}

// Catalog is the read-only registry of metric definitions. It is built once
// and safe for concurrent use.
type Catalog struct {
	byID  map[string]Definition
	order []string
}

// NewCatalog validates defs and builds a catalog preserving their order.
func NewCatalog(defs ...Definition) (*Catalog, error) {
	cat := &Catalog{
		byID:  make(map[string]Definition, len(defs)),
		order: make([]string, 0, len(defs)),
	}

	for _, def := range defs {
		if def.ID == "" {
			return nil, ErrEmptyMetricID
		}

		if _, dup := cat.byID[def.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateMetric, def.ID)
		}

		if !thresholdsConsistent(def) {
			return nil, fmt.Errorf("%w: %q (good=%v warning=%v lower_is_better=%t)",
				ErrInvalidThresholds, def.ID, def.Thresholds.Good, def.Thresholds.Warning, def.LowerIsBetter)
		}

		if def.DisplayName == "" {
			def.DisplayName = def.ID
		}

		cat.byID[def.ID] = def
		cat.order = append(cat.order, def.ID)
	}

	return cat, nil
}

func thresholdsConsistent(def Definition) bool {
	if def.LowerIsBetter {
		return def.Thresholds.Good <= def.Thresholds.Warning
	}

	return def.Thresholds.Good >= def.Thresholds.Warning
}

// Lookup resolves a metric id.
func (c *Catalog) Lookup(id string) (Definition, error) {
	def, ok := c.byID[id]
	if !ok {
		return Definition{}, &UnknownMetricError{ID: id}
	}

	return def, nil
}

// MustLookup resolves a metric id and panics when it is unknown.
func (c *Catalog) MustLookup(id string) Definition {
	def, err := c.Lookup(id)
	if err != nil {
		panic(err)
	}

	return def
}

// IDs returns the metric ids in catalog order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)

	return out
}

// Definitions returns all definitions in catalog order.
func (c *Catalog) Definitions() []Definition {
	out := make([]Definition, 0, len(c.order))

	for _, id := range c.order {
		out = append(out, c.byID[id])
	}

	return out
}

// Classify maps value to a status using the metric's thresholds and polarity.
// It satisfies Classifier and panics on an unknown metric id.
func (c *Catalog) Classify(value float64, metricID string) Status {
	def := c.MustLookup(metricID)
	th := def.Thresholds

	if def.LowerIsBetter {
		switch {
		case value <= th.Good:
			return StatusGood
		case value <= th.Warning:
			return StatusWarning
		default:
			return StatusCritical
		}
	}

	switch {
	case value >= th.Good:
		return StatusGood
	case value >= th.Warning:
		return StatusWarning
	default:
		return StatusCritical
	}
}
