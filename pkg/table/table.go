// Package table projects ranked entities into row and column models.
package table

import (
	"github.com/Sumatoshi-tech/fleetlens/pkg/metric"
	"github.com/Sumatoshi-tech/fleetlens/pkg/ranking"
)

// Align is the horizontal alignment of a column.
type Align string

// Alignments.
const (
	AlignLeft   Align = "left"
	AlignRight  Align = "right"
	AlignCenter Align = "center"
)

// Column keys.
const (
	KeyRank   = "rank"
	KeyName   = "name"
	KeyValue  = "value"
	KeyStatus = "status"
)

// Row is one table line. Unit formatting is left to the renderer.
type Row struct {
	Rank     int           `json:"rank"`
	EntityID string        `json:"entity_id"`
	Name     string        `json:"name"`
	Value    float64       `json:"value"`
	Status   metric.Status `json:"status"`
}

// Column describes one table column.
type Column struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Align Align  `json:"align"`
}

// Model is a complete table: columns plus rows.
type Model struct {
	MetricID string   `json:"metric_id"`
	Columns  []Column `json:"columns"`
	Rows     []Row    `json:"rows"`
}

// DefaultColumns returns the standard ranking columns.
func DefaultColumns() []Column {
	return []Column{
		{Key: KeyRank, Title: "#", Align: AlignRight},
		{Key: KeyName, Title: "Name", Align: AlignLeft},
		{Key: KeyValue, Title: "Value", Align: AlignRight},
		{Key: KeyStatus, Title: "Status", Align: AlignCenter},
	}
}

// BuildRows converts entities of metricID into rows, classifying each value
// with classify.
func BuildRows(metricID string, entities []ranking.Entity, classify metric.Classifier) []Row {
	rows := make([]Row, len(entities))

	for i, e := range entities {
		rows[i] = Row{
			Rank:     e.Rank,
			EntityID: e.EntityID,
			Name:     e.Name,
			Value:    e.Value,
			Status:   classify(e.Value, metricID),
		}
	}

	return rows
}

// Build returns the full table model for entities of metricID.
func Build(metricID string, entities []ranking.Entity, classify metric.Classifier) Model {
	return Model{
		MetricID: metricID,
		Columns:  DefaultColumns(),
		Rows:     BuildRows(metricID, entities, classify),
	}
}

// Counts tallies rows per status.
func (m Model) Counts() map[metric.Status]int {
	out := make(map[metric.Status]int, 3)

	for _, r := range m.Rows {
		out[r.Status]++
	}

	return out
}
