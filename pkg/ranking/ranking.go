// Package ranking orders fleet entities by a metric under a chosen policy.
//
// Ranks are assigned against the full sorted order and the list is truncated
// afterwards, so a capped list still shows each entity's position in the
// whole fleet.
package ranking

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Sumatoshi-tech/fleetlens/pkg/metric"
)

// Order selects the ranking policy.
type Order string

// Supported orders.
const (
	OrderBest         Order = "best"
	OrderWorst        Order = "worst"
	OrderAlphabetical Order = "alphabetical"
)

// ErrUnknownOrder is returned for an unsupported order name.
var ErrUnknownOrder = errors.New("unknown ranking order")

// ParseOrder converts a case-insensitive order name into an Order.
func ParseOrder(s string) (Order, error) {
	order := Order(strings.ToLower(strings.TrimSpace(s)))

	switch order {
	case OrderBest, OrderWorst, OrderAlphabetical:
		return order, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOrder, s)
	}
}

// Entity is a sample annotated with its position and status.
type Entity struct {
	EntityID string        `json:"entity_id"`
	Name     string        `json:"name"`
	Value    float64       `json:"value"`
	Rank     int           `json:"rank"`
	Status   metric.Status `json:"status"`
}

// Options controls a ranking call. The zero value ranks best-first with no
// limit, root-locale collation and catalog thresholds.
type Options struct {
	Order Order
	// Limit caps the returned entities; zero or negative means no cap.
	Limit int
	// Locale drives alphabetical collation. language.Und uses the root collation.
	Locale language.Tag
	// Classify overrides the catalog threshold classifier.
	Classify metric.Classifier
}

// Rank sorts samples of metricID under opts and returns the ranked entities.
// An empty sample set yields an empty result.
func Rank(cat *metric.Catalog, metricID string, samples []metric.Sample, opts Options) ([]Entity, error) {
	def, err := cat.Lookup(metricID)
	if err != nil {
		return nil, err
	}

	order := opts.Order
	if order == "" {
		order = OrderBest
	}

	compare, err := comparator(def, order, opts.Locale)
	if err != nil {
		return nil, err
	}

	if len(samples) == 0 {
		return []Entity{}, nil
	}

	classify := opts.Classify
	if classify == nil {
		classify = cat.Classify
	}

	sorted := slices.Clone(samples)
	slices.SortStableFunc(sorted, compare)

	ranked := make([]Entity, len(sorted))

	for i, s := range sorted {
		ranked[i] = Entity{
			EntityID: s.EntityID,
			Name:     s.EntityName,
			Value:    s.Value,
			Rank:     i + 1,
			Status:   classify(s.Value, metricID),
		}
	}

	if opts.Limit > 0 && len(ranked) > opts.Limit {
		ranked = ranked[:opts.Limit]
	}

	return ranked, nil
}

func comparator(def metric.Definition, order Order, locale language.Tag) (func(a, b metric.Sample) int, error) {
	ascending := func(a, b metric.Sample) int { return cmp.Compare(a.Value, b.Value) }
	descending := func(a, b metric.Sample) int { return cmp.Compare(b.Value, a.Value) }

	switch order {
	case OrderBest:
		if def.LowerIsBetter {
			return ascending, nil
		}

		return descending, nil
	case OrderWorst:
		if def.LowerIsBetter {
			return descending, nil
		}

		return ascending, nil
	case OrderAlphabetical:
		coll := collate.New(locale)

		return func(a, b metric.Sample) int {
			return coll.CompareString(a.EntityName, b.EntityName)
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOrder, order)
	}
}
