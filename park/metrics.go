// Tracks simulation-wide events and counters: arrivals, boardings, queue
// abandonment, food orders, breakdowns and repairs. Every Record method is
// safe to call from any goroutine, and safe on a nil recorder so actors
// never depend on metrics being wired.

package park

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Counters aggregates in-memory statistics for final reporting and for
// read-only sampling by external observers. Snapshot returns a copy; the
// core never blocks on a consumer.
type Counters struct {
	Arrivals      int // visitors that entered the park
	BoardingRuns  int // ride cycles that boarded at least one rider
	RidersBoarded int // total riders across all cycles
	Abandons      int // queue abandonments
	Exits         int // visitors that left
	Orders        int // food orders placed
	Served        int // food orders served
	Breakdowns    int // breakdown episodes started
	Repairs       int // breakdown episodes ended
}

// MetricsRecorder is a thread-safe CSV event log. One row per event, tagged
// with a run ID so rows from repeated runs can be told apart after the fact.
type MetricsRecorder struct {
	runID string
	path  string

	mu       sync.Mutex
	file     *os.File
	writer   *csv.Writer
	counters Counters
}

var metricsHeader = []string{
	"wall_time",
	"run_id",
	"sim_minute",
	"event",
	"visitor_id",
	"visitor_type",
	"facility",
	"count",
	"popularity",
	"reason",
}

// NewMetricsRecorder opens (or creates) outDir/filename for appending and
// writes the header when the file is new.
func NewMetricsRecorder(outDir, filename string) (*MetricsRecorder, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("metrics: create output dir: %w", err)
	}
	path := filepath.Join(outDir, filename)

	info, err := os.Stat(path)
	fresh := err != nil || info.Size() == 0

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("metrics: open %s: %w", path, err)
	}

	m := &MetricsRecorder{
		runID:  uuid.NewString(),
		path:   path,
		file:   file,
		writer: csv.NewWriter(file),
	}
	if fresh {
		if err := m.writer.Write(metricsHeader); err != nil {
			file.Close()
			return nil, fmt.Errorf("metrics: write header: %w", err)
		}
		m.writer.Flush()
	}
	return m, nil
}

// RunID returns the identifier stamped on every row of this run.
func (m *MetricsRecorder) RunID() string {
	if m == nil {
		return ""
	}
	return m.runID
}

// Path returns the CSV file location.
func (m *MetricsRecorder) Path() string {
	if m == nil {
		return ""
	}
	return m.path
}

// Snapshot returns a copy of the aggregate counters.
func (m *MetricsRecorder) Snapshot() Counters {
	if m == nil {
		return Counters{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters
}

// row holds one event's fields; zero values render as empty cells.
type row struct {
	minute      int64
	event       string
	visitorID   int64
	visitorType string
	facility    string
	count       int
	popularity  float64
	reason      string
}

func (m *MetricsRecorder) write(r row, bump func(*Counters)) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if bump != nil {
		bump(&m.counters)
	}
	visitor := ""
	if r.visitorID != 0 {
		visitor = strconv.FormatInt(r.visitorID, 10)
	}
	count := ""
	if r.count != 0 {
		count = strconv.Itoa(r.count)
	}
	popularity := ""
	if r.popularity != 0 {
		popularity = strconv.FormatFloat(r.popularity, 'f', 2, 64)
	}
	m.writer.Write([]string{
		time.Now().UTC().Format(time.RFC3339),
		m.runID,
		strconv.FormatInt(r.minute, 10),
		r.event,
		visitor,
		r.visitorType,
		r.facility,
		count,
		popularity,
		r.reason,
	})
	m.writer.Flush()
}

// ---------- arrivals ----------

func (m *MetricsRecorder) RecordArrival(visitorID int64, visitorType string, minute int64) {
	m.write(row{minute: minute, event: "arrival", visitorID: visitorID, visitorType: visitorType},
		func(c *Counters) { c.Arrivals++ })
}

// ---------- ride-related ----------

func (m *MetricsRecorder) RecordBoard(rideName string, count int, minute int64, popularity float64) {
	m.write(row{minute: minute, event: "ride_board", facility: rideName, count: count, popularity: popularity},
		func(c *Counters) { c.BoardingRuns++; c.RidersBoarded += count })
}

func (m *MetricsRecorder) RecordAbandon(visitorID int64, rideName string, waitedMinutes int64, minute int64) {
	m.write(row{minute: minute, event: "queue_abandon", visitorID: visitorID, facility: rideName,
		reason: fmt.Sprintf("waited=%d", waitedMinutes)},
		func(c *Counters) { c.Abandons++ })
}

func (m *MetricsRecorder) RecordExit(visitorID int64, minute int64, reason string) {
	m.write(row{minute: minute, event: "exit", visitorID: visitorID, reason: reason},
		func(c *Counters) { c.Exits++ })
}

// ---------- food/service ----------

func (m *MetricsRecorder) RecordOrder(visitorID int64, facility string, minute int64) {
	m.write(row{minute: minute, event: "order", visitorID: visitorID, facility: facility},
		func(c *Counters) { c.Orders++ })
}

func (m *MetricsRecorder) RecordServed(visitorID int64, facility string, minute int64) {
	m.write(row{minute: minute, event: "served", visitorID: visitorID, facility: facility},
		func(c *Counters) { c.Served++ })
}

// ---------- maintenance ----------

func (m *MetricsRecorder) RecordBreakdown(rideName, kind string, minute int64, repairMinutes int64) {
	m.write(row{minute: minute, event: "breakdown", facility: rideName,
		reason: fmt.Sprintf("%s for %dmin", kind, repairMinutes)},
		func(c *Counters) { c.Breakdowns++ })
}

func (m *MetricsRecorder) RecordRepaired(rideName string, minute int64) {
	m.write(row{minute: minute, event: "repaired", facility: rideName},
		func(c *Counters) { c.Repairs++ })
}

// ---------- reporting ----------

// Print displays aggregated counters at the end of the simulation.
func (m *MetricsRecorder) Print(horizonMinutes int64) {
	if m == nil {
		return
	}
	c := m.Snapshot()
	fmt.Println("=== Park Simulation Metrics ===")
	fmt.Printf("Simulated minutes    : %d\n", horizonMinutes)
	fmt.Printf("Visitors arrived     : %d\n", c.Arrivals)
	fmt.Printf("Visitors exited      : %d\n", c.Exits)
	fmt.Printf("Ride cycles run      : %d\n", c.BoardingRuns)
	fmt.Printf("Riders boarded       : %d\n", c.RidersBoarded)
	if c.BoardingRuns > 0 {
		fmt.Printf("Avg riders per cycle : %.2f\n", float64(c.RidersBoarded)/float64(c.BoardingRuns))
	}
	fmt.Printf("Queue abandons       : %d\n", c.Abandons)
	fmt.Printf("Food orders / served : %d / %d\n", c.Orders, c.Served)
	fmt.Printf("Breakdowns / repairs : %d / %d\n", c.Breakdowns, c.Repairs)
}

// Close flushes and closes the CSV file.
func (m *MetricsRecorder) Close() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writer.Flush()
	if err := m.writer.Error(); err != nil {
		m.file.Close()
		return fmt.Errorf("metrics: flush: %w", err)
	}
	return m.file.Close()
}
