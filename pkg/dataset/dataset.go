// Package dataset decodes the sample and series files handed to fleetlens by
// the data collaborator. JSON is accepted as a subset of YAML.
package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/fleetlens/pkg/metric"
)

// Sentinel errors.
var (
	ErrEmptyDataset   = errors.New("dataset has neither samples nor series")
	ErrMissingEntity  = errors.New("sample without entity_id")
	ErrMissingTime    = errors.New("series point without timestamp")
	ErrUnknownMetrics = errors.New("dataset references metrics missing from the catalog")
)

// Dataset holds already-fetched observations keyed by metric id.
type Dataset struct {
	Samples map[string][]metric.Sample `json:"samples,omitempty" yaml:"samples"`
	Series  map[string][]metric.Point  `json:"series,omitempty"  yaml:"series"`
}

// Load reads and decodes the dataset file at path. "-" reads stdin.
func Load(path string) (*Dataset, error) {
	var (
		data []byte
		err  error
	)

	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}

	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}

	ds, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}

	return ds, nil
}

// Parse decodes a YAML or JSON dataset and checks its shape.
func Parse(data []byte) (*Dataset, error) {
	var ds Dataset

	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	if len(ds.Samples) == 0 && len(ds.Series) == 0 {
		return nil, ErrEmptyDataset
	}

	for id, samples := range ds.Samples {
		for i := range samples {
			if samples[i].EntityID == "" {
				return nil, fmt.Errorf("%w: %s[%d]", ErrMissingEntity, id, i)
			}

			if samples[i].EntityName == "" {
				samples[i].EntityName = samples[i].EntityID
			}
		}
	}

	for id, points := range ds.Series {
		for i, p := range points {
			if p.Timestamp.IsZero() {
				return nil, fmt.Errorf("%w: %s[%d]", ErrMissingTime, id, i)
			}
		}
	}

	return &ds, nil
}

// MetricIDs returns every metric id present in the dataset, sorted.
func (d *Dataset) MetricIDs() []string {
	seen := make(map[string]struct{}, len(d.Samples)+len(d.Series))

	for id := range d.Samples {
		seen[id] = struct{}{}
	}

	for id := range d.Series {
		seen[id] = struct{}{}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}

// Check reports every dataset metric the catalog cannot resolve.
func (d *Dataset) Check(cat *metric.Catalog) error {
	var missing []string

	for _, id := range d.MetricIDs() {
		if _, err := cat.Lookup(id); err != nil {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownMetrics, strings.Join(missing, ", "))
	}

	return nil
}
