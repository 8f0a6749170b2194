package park

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecorder_WritesRowsAndCounts(t *testing.T) {
	// GIVEN a recorder in a fresh directory
	dir := t.TempDir()
	m, err := NewMetricsRecorder(dir, "metrics.csv")
	require.NoError(t, err)

	// WHEN a handful of events land
	m.RecordArrival(1, "Child", 0)
	m.RecordBoard("RollerCoaster", 3, 10, 0.9)
	m.RecordAbandon(1, "RollerCoaster", 15, 25)
	m.RecordOrder(1, "BurgerTruck", 30)
	m.RecordServed(1, "BurgerTruck", 34)
	m.RecordBreakdown("RollerCoaster", "BROKEN", 40, 5)
	m.RecordRepaired("RollerCoaster", 45)
	m.RecordExit(1, 50, "time_up")
	require.NoError(t, m.Close())

	// THEN the counters aggregate per event type
	c := m.Snapshot()
	assert.Equal(t, 1, c.Arrivals)
	assert.Equal(t, 1, c.BoardingRuns)
	assert.Equal(t, 3, c.RidersBoarded)
	assert.Equal(t, 1, c.Abandons)
	assert.Equal(t, 1, c.Orders)
	assert.Equal(t, 1, c.Served)
	assert.Equal(t, 1, c.Breakdowns)
	assert.Equal(t, 1, c.Repairs)
	assert.Equal(t, 1, c.Exits)

	// AND the CSV holds a header plus one row per event
	f, err := os.Open(filepath.Join(dir, "metrics.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 9)
	assert.Equal(t, metricsHeader, rows[0])

	// Every row carries the same run ID.
	for _, r := range rows[1:] {
		assert.Equal(t, m.RunID(), r[1])
	}
	assert.Equal(t, "arrival", rows[1][3])
	assert.Equal(t, "Child", rows[1][5])
	assert.Equal(t, "ride_board", rows[2][3])
	assert.Equal(t, "3", rows[2][7])
	assert.Equal(t, "0.90", rows[2][8])
}

func TestMetricsRecorder_AppendsWithoutDuplicateHeader(t *testing.T) {
	// GIVEN two runs writing into the same file
	dir := t.TempDir()
	m1, err := NewMetricsRecorder(dir, "metrics.csv")
	require.NoError(t, err)
	m1.RecordArrival(1, "Tourist", 0)
	require.NoError(t, m1.Close())

	m2, err := NewMetricsRecorder(dir, "metrics.csv")
	require.NoError(t, err)
	m2.RecordArrival(2, "Tourist", 0)
	require.NoError(t, m2.Close())

	// THEN the header appears once and the run IDs differ
	f, err := os.Open(filepath.Join(dir, "metrics.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.NotEqual(t, rows[1][1], rows[2][1])
}

func TestMetricsRecorder_NilReceiverIsSafe(t *testing.T) {
	// Actors call metrics unconditionally; a nil recorder must be a no-op.
	var m *MetricsRecorder
	m.RecordArrival(1, "Child", 0)
	m.RecordBoard("X", 1, 0, 0)
	m.RecordRepaired("X", 0)
	m.Print(10)
	assert.Equal(t, Counters{}, m.Snapshot())
	assert.NoError(t, m.Close())
	assert.Empty(t, m.RunID())
	assert.Empty(t, m.Path())
}
