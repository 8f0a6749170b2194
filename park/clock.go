// Implements the Clock, the shared virtual-time driver for the park.
// One simulated minute costs speedFactor of real time; the orchestrator's
// RunUntilHorizon loop is the only writer of the shared minute counter.

package park

import (
	"sync"
	"sync/atomic"
	"time"
)

// minSpeedFactor is the floor applied to the configured speed factor.
// Zero or negative sleeps would make entity loops spin and the simulation
// racy or non-terminating, so the clock silently clamps.
const minSpeedFactor = 0.001

// Clock is the process-wide tick source. All entity loops sleep against it
// and re-check ShouldStop every iteration; a loop that skips the check is a
// leaked goroutine at shutdown.
type Clock struct {
	tick    time.Duration // real time per simulated minute
	horizon int64         // closing time, in simulated minutes
	now     atomic.Int64  // current simulated minute, monotonic
	stopped atomic.Bool

	stopOnce sync.Once
	done     chan struct{} // closed by Stop
}

// NewClock creates a clock that converts one simulated minute into
// speedFactor real seconds, running until horizonMinutes.
// speedFactor is clamped to a small positive minimum rather than rejected.
func NewClock(speedFactor float64, horizonMinutes int64) *Clock {
	if speedFactor < minSpeedFactor {
		speedFactor = minSpeedFactor
	}
	return &Clock{
		tick:    time.Duration(speedFactor * float64(time.Second)),
		horizon: horizonMinutes,
		done:    make(chan struct{}),
	}
}

// Now returns the current simulated minute. Reads never observe the counter
// move backward.
func (c *Clock) Now() int64 {
	return c.now.Load()
}

// Horizon returns the closing time in simulated minutes.
func (c *Clock) Horizon() int64 {
	return c.horizon
}

// TickInterval returns how much real time one simulated minute costs.
func (c *Clock) TickInterval() time.Duration {
	return c.tick
}

// Done returns a channel closed when the clock is stopped. Sleepers select
// on it so a stop request is observed within one tick period.
func (c *Clock) Done() <-chan struct{} {
	return c.done
}

// AdvanceBy blocks the calling entity for n simulated minutes, returning
// early if the clock is stopped mid-sleep. It never writes the shared minute
// counter; RunUntilHorizon owns that.
func (c *Clock) AdvanceBy(n int64) {
	for i := int64(0); i < n; i++ {
		if c.ShouldStop() {
			return
		}
		timer := time.NewTimer(c.tick)
		select {
		case <-c.done:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// RunUntilHorizon advances the shared minute counter once per tick until the
// horizon or an external stop request. Invoked exactly once, by the
// orchestrator; entities only read the counter.
func (c *Clock) RunUntilHorizon() {
	for c.now.Load() < c.horizon && !c.stopped.Load() {
		timer := time.NewTimer(c.tick)
		select {
		case <-c.done:
			timer.Stop()
			return
		case <-timer.C:
		}
		c.step()
	}
}

// step advances the counter by one minute. Only RunUntilHorizon (and tests
// that drive time deterministically) call it.
func (c *Clock) step() {
	c.now.Add(1)
}

// Stop requests shutdown. Idempotent; all blocked AdvanceBy calls observe it
// within one tick period.
func (c *Clock) Stop() {
	c.stopOnce.Do(func() {
		c.stopped.Store(true)
		close(c.done)
	})
}

// ShouldStop reports whether entity loops must exit: either Stop was called
// or the horizon has been reached.
func (c *Clock) ShouldStop() bool {
	return c.stopped.Load() || c.now.Load() >= c.horizon
}
