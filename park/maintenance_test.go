package park

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailureInjector_CertainHazardBreaksEveryRide(t *testing.T) {
	// GIVEN an injector with meanUptime clamped to 1 (hazard = 1.0)
	clock := newTestClock(t, 100)
	rides := []*Ride{
		newTestRide(t, clock, RideConfig{Name: "A", Capacity: 2, RunDuration: 1, BoardWindow: 1}),
		newTestRide(t, clock, RideConfig{Name: "B", Capacity: 2, RunDuration: 1, BoardWindow: 1}),
	}
	inj := NewFailureInjector(rides, clock, 0, 5, 42)

	// WHEN one minute of injection runs
	inj.tick()

	// THEN every ride is down with a positive repair deadline
	for _, r := range rides {
		assert.Equal(t, StateBroken, r.State(), "ride %s", r.Name())
		assert.Greater(t, r.BrokenUntil(), int64(0), "ride %s", r.Name())
	}
}

func TestFailureInjector_SkipsRidesAlreadyDown(t *testing.T) {
	// GIVEN a ride already broken until minute 50
	clock := newTestClock(t, 100)
	r := newTestRide(t, clock, RideConfig{Name: "A", Capacity: 2, RunDuration: 1, BoardWindow: 1})
	r.BreakFor(50)
	require.Equal(t, int64(50), r.BrokenUntil())

	inj := NewFailureInjector([]*Ride{r}, clock, 0, 5, 42)

	// WHEN many injection minutes pass
	for i := 0; i < 20; i++ {
		inj.tick()
	}

	// THEN the episode is untouched: no extension, no second breakdown
	assert.Equal(t, int64(50), r.BrokenUntil())
	assert.Equal(t, 1, r.metrics.Snapshot().Breakdowns)
}

func TestFailureInjector_ZeroHazardNeverBreaks(t *testing.T) {
	// GIVEN a huge mean uptime so the per-minute hazard is negligible
	clock := newTestClock(t, 100)
	r := newTestRide(t, clock, RideConfig{Name: "A", Capacity: 2, RunDuration: 1, BoardWindow: 1})
	inj := NewFailureInjector([]*Ride{r}, clock, 1e12, 5, 42)

	for i := 0; i < 1000; i++ {
		inj.tick()
	}

	assert.Equal(t, StateOpen, r.State())
}

func TestFailureInjector_SameSeedSameFailures(t *testing.T) {
	// GIVEN two injectors over identical parks and the same seed
	sample := func(seed int64) []RideState {
		clock := newTestClock(t, 100)
		rides := []*Ride{
			newTestRide(t, clock, RideConfig{Name: "A", Capacity: 2, RunDuration: 1, BoardWindow: 1}),
			newTestRide(t, clock, RideConfig{Name: "B", Capacity: 2, RunDuration: 1, BoardWindow: 1}),
			newTestRide(t, clock, RideConfig{Name: "C", Capacity: 2, RunDuration: 1, BoardWindow: 1}),
		}
		inj := NewFailureInjector(rides, clock, 3, 5, seed)
		for i := 0; i < 10; i++ {
			inj.tick()
		}
		states := make([]RideState, len(rides))
		for i, r := range rides {
			states[i] = r.State()
		}
		return states
	}

	// THEN the failure pattern reproduces exactly
	assert.Equal(t, sample(7), sample(7))
}
