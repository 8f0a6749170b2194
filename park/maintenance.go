// Implements the FailureInjector, the maintenance daemon. It runs its own
// tick loop, samples a per-ride hazard each simulated minute, and takes
// operational rides down through their BreakFor transition. Recovery is the
// ride's own repair guardian's job.

package park

import (
	"math/rand/v2"
	"sync"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat/distuv"
)

// FailureInjector randomly breaks rides using a mean-time-between-failure
// hazard model: each operational ride fails with probability 1/meanUptime
// per simulated minute, for an exponentially distributed repair time with
// mean meanRepair.
type FailureInjector struct {
	rides      []*Ride
	clock      *Clock
	hazard     float64
	repairTime distuv.Exponential
	rng        *rand.Rand
}

// NewFailureInjector creates the daemon. meanUptime and meanRepair are in
// simulated minutes and clamped to at least one; the seed isolates the
// failure stream from every other sampling stream.
func NewFailureInjector(rides []*Ride, clock *Clock, meanUptime, meanRepair float64, seed int64) *FailureInjector {
	if clock == nil {
		panic("NewFailureInjector: clock must not be nil")
	}
	if meanUptime < 1 {
		meanUptime = 1
	}
	if meanRepair < 1 {
		meanRepair = 1
	}
	src := rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)
	return &FailureInjector{
		rides:  rides,
		clock:  clock,
		hazard: 1 / meanUptime,
		repairTime: distuv.Exponential{
			Rate: 1 / meanRepair,
			Src:  src,
		},
		rng: rand.New(src),
	}
}

// Run drives the daemon until the clock says stop.
func (f *FailureInjector) Run(wg *sync.WaitGroup) {
	defer wg.Done()
	for !f.clock.ShouldStop() {
		f.tick()
		f.clock.AdvanceBy(1)
	}
}

// tick samples the hazard once per operational ride. Rides already down are
// skipped; BreakFor idempotence would only extend their episode anyway.
func (f *FailureInjector) tick() {
	for _, r := range f.rides {
		if r.IsBroken() {
			continue
		}
		if f.rng.Float64() >= f.hazard {
			continue
		}
		repair := int64(f.repairTime.Rand() + 0.5)
		if repair < 1 {
			repair = 1
		}
		logrus.Infof("maintenance: breaking ride %s for %d minutes at minute %d",
			r.Name(), repair, f.clock.Now())
		r.BreakFor(repair)
	}
}
