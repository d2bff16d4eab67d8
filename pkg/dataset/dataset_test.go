package dataset_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/fleetlens/pkg/dataset"
	"github.com/Sumatoshi-tech/fleetlens/pkg/metric"
)

const yamlDataset = `samples:
  fuel_consumption:
    - {entity_id: t1, entity_name: Truck1, value: 8.5}
    - {entity_id: t2, entity_name: Truck2, value: 6.0}
    - {entity_id: t3, value: 9.2}
series:
  safety_score:
    - {timestamp: 2024-03-01T00:00:00Z, value: 70}
    - {timestamp: 2024-03-08T00:00:00Z, value: 80}
`

const jsonDataset = `{
  "samples": {"idle_time": [{"entity_id": "v1", "entity_name": "Van 1", "value": 1.5}]},
  "series": {"idle_time": [{"timestamp": "2024-04-01T08:00:00Z", "value": 1.5}]}
}`

func TestParse_YAML(t *testing.T) {
	t.Parallel()

	ds, err := dataset.Parse([]byte(yamlDataset))
	require.NoError(t, err)

	fuel := ds.Samples["fuel_consumption"]
	require.Len(t, fuel, 3)
	assert.Equal(t, metric.Sample{EntityID: "t1", EntityName: "Truck1", Value: 8.5}, fuel[0])
	assert.Equal(t, "t3", fuel[2].EntityName, "name defaults to id")

	safety := ds.Series["safety_score"]
	require.Len(t, safety, 2)
	assert.Equal(t, time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC), safety[1].Timestamp.UTC())
	assert.InDelta(t, 80.0, safety[1].Value, 1e-9)

	assert.Equal(t, []string{"fuel_consumption", "safety_score"}, ds.MetricIDs())
}

func TestParse_JSON(t *testing.T) {
	t.Parallel()

	ds, err := dataset.Parse([]byte(jsonDataset))
	require.NoError(t, err)

	assert.Equal(t, "Van 1", ds.Samples["idle_time"][0].EntityName)
	assert.Len(t, ds.Series["idle_time"], 1)
	assert.Equal(t, []string{"idle_time"}, ds.MetricIDs())
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want error
	}{
		{name: "empty document", in: "", want: dataset.ErrEmptyDataset},
		{name: "no sections", in: "other: 1\n", want: dataset.ErrEmptyDataset},
		{name: "missing entity", in: "samples:\n  fuel_consumption:\n    - {value: 3}\n", want: dataset.ErrMissingEntity},
		{name: "missing timestamp", in: "series:\n  fuel_consumption:\n    - {value: 3}\n", want: dataset.ErrMissingTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := dataset.Parse([]byte(tt.in))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	_, err := dataset.Parse([]byte("samples: [oops"))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fleet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlDataset), 0o600))

	ds, err := dataset.Load(path)
	require.NoError(t, err)
	assert.Len(t, ds.Samples["fuel_consumption"], 3)

	_, err = dataset.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestCheck(t *testing.T) {
	t.Parallel()

	ds, err := dataset.Parse([]byte(yamlDataset))
	require.NoError(t, err)
	require.NoError(t, ds.Check(metric.Default()))

	ds.Samples["tyre_pressure"] = []metric.Sample{{EntityID: "x", EntityName: "x", Value: 1}}

	err = ds.Check(metric.Default())
	require.ErrorIs(t, err, dataset.ErrUnknownMetrics)
	assert.Contains(t, err.Error(), "tyre_pressure")
}
