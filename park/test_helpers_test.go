package park

import (
	"fmt"
	"sync"
	"testing"
)

// newTestClock returns a fast clock (1ms per simulated minute) stopped
// automatically at test cleanup so guardians and waiters exit.
func newTestClock(t *testing.T, horizon int64) *Clock {
	t.Helper()
	c := NewClock(0.001, horizon)
	t.Cleanup(c.Stop)
	return c
}

// stepN advances the shared minute counter directly, bypassing the real-time
// driver, so tests control virtual time deterministically.
func stepN(c *Clock, n int64) {
	for i := int64(0); i < n; i++ {
		c.step()
	}
}

// newTestMetrics returns a recorder writing into the test's temp dir.
func newTestMetrics(t *testing.T) *MetricsRecorder {
	t.Helper()
	m, err := NewMetricsRecorder(t.TempDir(), "metrics.csv")
	if err != nil {
		t.Fatalf("NewMetricsRecorder: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

// stubGuest implements Rider and Diner for queue and loop tests.
type stubGuest struct {
	id   int64
	gone bool // simulate a guest that already left the park

	mu          sync.Mutex
	rideNotices []string
	foodNotices []string
}

func (s *stubGuest) ID() int64 { return s.id }

func (s *stubGuest) NotifyRideFinished(rideName string, minute int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gone {
		return fmt.Errorf("guest %d already left", s.id)
	}
	s.rideNotices = append(s.rideNotices, fmt.Sprintf("%s@%d", rideName, minute))
	return nil
}

func (s *stubGuest) NotifyOrderServed(facilityName string, minute int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gone {
		return fmt.Errorf("guest %d already left", s.id)
	}
	s.foodNotices = append(s.foodNotices, fmt.Sprintf("%s@%d", facilityName, minute))
	return nil
}

func (s *stubGuest) rideNotifications() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.rideNotices))
	copy(out, s.rideNotices)
	return out
}

func (s *stubGuest) foodNotifications() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.foodNotices))
	copy(out, s.foodNotices)
	return out
}
