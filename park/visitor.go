// Implements the Visitor actor and the static archetype table. Archetypes
// are data, not subclasses: every visitor is the same type parameterized by
// a profile row.

package park

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// VisitorProfile is one row of the archetype table: behavioral parameters
// sampled at creation time plus the ride-choice strategy.
type VisitorProfile struct {
	Kind            string
	Strategy        RideChoiceStrategy
	RidePrefs       map[string]float64
	TimeBudgetMin   int64 // simulated minutes in the park
	TimeBudgetMax   int64
	PatienceMin     int64 // minutes willing to wait in a ride queue
	PatienceMax     int64
	FastpassProb    float64
	HungerRate      float64 // hunger points per simulated minute
	HungerThreshold float64 // seek food at or above this level
	FoodPrefs       []string
}

// VisitorProfiles is the static registration table replacing the original's
// per-archetype subclasses and factory classes.
var VisitorProfiles = map[string]VisitorProfile{
	"Child": {
		Kind:     "Child",
		Strategy: PreferenceStrategy{},
		RidePrefs: map[string]float64{
			"SpinningTeacups": 1.6, "FerrisWheel": 1.4, "BumperCars": 1.2,
			"RollerCoaster": 0.8, "DropTower": 0.5, "HauntedHouse": 0.7,
		},
		TimeBudgetMin: 120, TimeBudgetMax: 240,
		PatienceMin: 10, PatienceMax: 25,
		FastpassProb:    0.2,
		HungerRate:      1.5,
		HungerThreshold: 30,
		FoodPrefs:       []string{"IceCreamStand"},
	},
	"Tourist": {
		Kind:          "Tourist",
		Strategy:      RandomStrategy{},
		RidePrefs:     map[string]float64{},
		TimeBudgetMin: 240, TimeBudgetMax: 420,
		PatienceMin: 15, PatienceMax: 45,
		FastpassProb:    0.2,
		HungerRate:      1.0,
		HungerThreshold: 65,
		FoodPrefs:       []string{"BurgerTruck"},
	},
	"AdrenalineAddict": {
		Kind:     "AdrenalineAddict",
		Strategy: PopularityWaitTradeoff{WaitPenaltyAfter: 8},
		RidePrefs: map[string]float64{
			"RollerCoaster": 1.8, "DropTower": 1.6, "SpaceSimulator": 1.7,
			"SpinningTeacups": 0.4, "FerrisWheel": 0.4, "HauntedHouse": 0.8,
		},
		TimeBudgetMin: 480, TimeBudgetMax: 600,
		PatienceMin: 15, PatienceMax: 45,
		FastpassProb:    0.4,
		HungerRate:      0.3,
		HungerThreshold: 75,
		FoodPrefs:       []string{"IceCreamStand"},
	},
}

// Visitor is one park guest: a goroutine that alternates between queuing for
// rides and seeking food until its time budget runs out or the park closes.
// It implements Rider and Diner; the ride and food loops reach it only
// through those notifications.
type Visitor struct {
	id      int64
	kind    string
	park    *Park
	clock   *Clock
	metrics *MetricsRecorder
	rng     *rand.Rand

	strategy    RideChoiceStrategy
	ridePrefs   map[string]float64
	foodPrefs   []string
	timeBudget  int64
	patience    int64
	hasFastpass bool

	hungerRate      float64
	hungerThreshold float64

	mu         sync.Mutex
	hunger     float64
	eating     bool
	departed   bool
	ridesTaken int

	rideDone chan struct{} // one-shot wakeup per boarding cycle
}

func newVisitor(id int64, profile VisitorProfile, p *Park, clock *Clock, metrics *MetricsRecorder, rng *rand.Rand) *Visitor {
	if rng == nil {
		panic("newVisitor: rng must not be nil")
	}
	return &Visitor{
		id:              id,
		kind:            profile.Kind,
		park:            p,
		clock:           clock,
		metrics:         metrics,
		rng:             rng,
		strategy:        profile.Strategy,
		ridePrefs:       profile.RidePrefs,
		foodPrefs:       profile.FoodPrefs,
		timeBudget:      randRange(rng, profile.TimeBudgetMin, profile.TimeBudgetMax),
		patience:        randRange(rng, profile.PatienceMin, profile.PatienceMax),
		hasFastpass:     rng.Float64() < profile.FastpassProb,
		hungerRate:      profile.HungerRate,
		hungerThreshold: profile.HungerThreshold,
		rideDone:        make(chan struct{}, 1),
	}
}

// ID identifies the visitor in the metrics log.
func (v *Visitor) ID() int64 { return v.id }

// Kind returns the archetype name.
func (v *Visitor) Kind() string { return v.kind }

// HasFastpass reports whether the visitor enqueues on the priority lane.
func (v *Visitor) HasFastpass() bool { return v.hasFastpass }

// RidesTaken returns how many boarding cycles included this visitor.
func (v *Visitor) RidesTaken() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ridesTaken
}

// Departed reports whether the visitor has left the park.
func (v *Visitor) Departed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.departed
}

// NotifyRideFinished is the ride's end-of-cycle signal. Returns an error
// when the visitor has already left; the caller logs and moves on.
func (v *Visitor) NotifyRideFinished(rideName string, minute int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.departed {
		return fmt.Errorf("visitor %d already left the park", v.id)
	}
	v.ridesTaken++
	select {
	case v.rideDone <- struct{}{}:
	default:
	}
	logrus.Debugf("visitor %d: finished %s at minute %d", v.id, rideName, minute)
	return nil
}

// NotifyOrderServed is the food facility's completion signal.
func (v *Visitor) NotifyOrderServed(facilityName string, minute int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.departed {
		return fmt.Errorf("visitor %d already left the park", v.id)
	}
	v.hunger = 0
	v.eating = false
	logrus.Debugf("visitor %d: served at %s, minute %d", v.id, facilityName, minute)
	return nil
}

// Run is the visitor's day: ride until hungry, eat, repeat, leave when the
// time budget expires or the park closes.
func (v *Visitor) Run(wg *sync.WaitGroup) {
	defer wg.Done()

	arrival := v.clock.Now()
	departure := arrival + v.timeBudget
	lastUpdate := arrival

	for !v.clock.ShouldStop() {
		now := v.clock.Now()
		if now >= departure {
			break
		}

		if elapsed := now - lastUpdate; elapsed > 0 {
			v.mu.Lock()
			if !v.eating {
				v.hunger = minFloat(100, v.hunger+v.hungerRate*float64(elapsed))
			}
			v.mu.Unlock()
			lastUpdate = now
		}

		if v.shouldEat() {
			v.seekFood()
			v.clock.AdvanceBy(randRange(v.rng, 2, 5))
		} else {
			v.chooseAndQueue()
			v.clock.AdvanceBy(randRange(v.rng, 1, 3))
		}
	}

	v.mu.Lock()
	v.departed = true
	v.mu.Unlock()
	v.metrics.RecordExit(v.id, v.clock.Now(), "time_up")
}

func (v *Visitor) shouldEat() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hunger >= v.hungerThreshold && !v.eating
}

// seekFood joins a food queue, preferring the profile's facilities when any
// are present. A rejected enqueue simply clears the eating flag; the visitor
// retries on a later iteration.
func (v *Visitor) seekFood() {
	facilities := v.park.FoodFacilities()
	if len(facilities) == 0 {
		return
	}
	if len(v.foodPrefs) > 0 {
		var preferred []*FoodFacility
		for _, f := range facilities {
			for _, name := range v.foodPrefs {
				if f.Name() == name {
					preferred = append(preferred, f)
					break
				}
			}
		}
		if len(preferred) > 0 {
			facilities = preferred
		}
	}
	target := facilities[v.rng.Intn(len(facilities))]

	v.mu.Lock()
	v.eating = true
	v.mu.Unlock()

	if !v.park.JoinFoodQueue(v, target) {
		v.mu.Lock()
		v.eating = false
		v.mu.Unlock()
	}
}

// chooseAndQueue picks a ride, joins its queue, and waits out the visitor's
// patience for the end-of-ride notification.
func (v *Visitor) chooseAndQueue() {
	ride := v.strategy.PickRide(v, v.park)
	if ride == nil {
		v.clock.AdvanceBy(randRange(v.rng, 1, 5))
		return
	}
	if !v.park.JoinRideQueue(v, ride) {
		// CapacityRejected: try something else next iteration.
		return
	}
	v.waitForRide(ride)
}

// waitForRide blocks until the boarding-cycle notification, the patience
// budget, or shutdown. On timeout the visitor abandons the queue; if the
// item is gone the visitor is mid-cycle and waits for the notification.
func (v *Visitor) waitForRide(r *Ride) {
	for waited := int64(0); waited < v.patience; waited++ {
		if v.clock.ShouldStop() {
			return
		}
		timer := time.NewTimer(v.clock.TickInterval())
		select {
		case <-v.rideDone:
			timer.Stop()
			return
		case <-v.clock.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}

	if r.Queue().RemoveByIdentity(v) {
		v.metrics.RecordAbandon(v.id, r.Name(), v.patience, v.clock.Now())
		return
	}
	// Already extracted into a boarding batch; the notification will come.
	select {
	case <-v.rideDone:
	case <-v.clock.Done():
	}
}

func randRange(rng *rand.Rand, lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Int63n(hi-lo+1)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
