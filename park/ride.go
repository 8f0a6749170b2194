// Implements the Ride, a per-ride control loop driven by the shared clock.
// The ride owns its queue and its state; the failure injector and the repair
// guardian request transitions through BreakFor/ScheduleMaintenance, never by
// touching state fields directly.

package park

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// RideState enumerates the ride lifecycle states. Exactly one is active at a
// time; transition is the only legal way to change it.
type RideState int

const (
	StateOpen RideState = iota
	StateBoarding
	StateBroken
	StateMaintenance
)

// String returns the state name for logs and metrics.
func (s RideState) String() string {
	switch s {
	case StateOpen:
		return "OPEN"
	case StateBoarding:
		return "BOARDING"
	case StateBroken:
		return "BROKEN"
	case StateMaintenance:
		return "MAINTENANCE"
	default:
		return "UNKNOWN"
	}
}

// CanEnqueue reports whether visitors may join the queue in this state.
func (s RideState) CanEnqueue() bool {
	return s == StateOpen || s == StateBoarding
}

// RideConfig parameterizes one ride. Ride "subtypes" are configuration
// entries, not code.
type RideConfig struct {
	Name        string
	Capacity    int   // seats per boarding cycle
	RunDuration int64 // simulated minutes one cycle takes
	BoardWindow int64 // max minutes to linger in BOARDING with no boarders
	Popularity  float64
}

// Ride runs OPEN -> BOARDING -> OPEN cycles against the clock and can be
// forced into BROKEN or MAINTENANCE from outside its own loop.
type Ride struct {
	cfg     RideConfig
	queue   *RideQueue
	clock   *Clock
	metrics *MetricsRecorder

	// mu guards every field below it, including transitions requested by
	// external goroutines. Lock order is always ride.mu before queue.mu.
	mu            sync.Mutex
	state         RideState
	windowMinutes int64 // minutes spent in the current BOARDING window
	brokenUntil   int64 // absolute minute the current breakdown episode ends
	guardianLive  bool  // exactly one repair guardian per breakdown episode
}

// NewRide creates a ride in the OPEN state. BoardWindow is clamped to at
// least one minute; a non-positive capacity or nil collaborator is a
// programmer error.
func NewRide(cfg RideConfig, queue *RideQueue, clock *Clock, metrics *MetricsRecorder) *Ride {
	if queue == nil || clock == nil {
		panic("NewRide: queue and clock must not be nil")
	}
	if cfg.Capacity <= 0 {
		panic("NewRide: capacity must be positive")
	}
	if cfg.BoardWindow < 1 {
		cfg.BoardWindow = 1
	}
	if cfg.RunDuration < 1 {
		cfg.RunDuration = 1
	}
	return &Ride{
		cfg:     cfg,
		queue:   queue,
		clock:   clock,
		metrics: metrics,
		state:   StateOpen,
	}
}

// Name returns the ride's name.
func (r *Ride) Name() string { return r.cfg.Name }

// Popularity returns the ride's popularity weight, opaque to the core and
// consumed by ride-choice strategies.
func (r *Ride) Popularity() float64 { return r.cfg.Popularity }

// Capacity returns the seats per boarding cycle.
func (r *Ride) Capacity() int { return r.cfg.Capacity }

// RunDuration returns the simulated minutes one cycle takes.
func (r *Ride) RunDuration() int64 { return r.cfg.RunDuration }

// Queue returns the ride's queue, for producers and wait estimation.
func (r *Ride) Queue() *RideQueue { return r.queue }

// State returns the current lifecycle state.
func (r *Ride) State() RideState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// CanEnqueue reports whether visitors may currently join the queue.
func (r *Ride) CanEnqueue() bool {
	return r.State().CanEnqueue()
}

// IsBroken reports true for both BROKEN and MAINTENANCE; both are "down"
// from the scheduling policy's point of view.
func (r *Ride) IsBroken() bool {
	s := r.State()
	return s == StateBroken || s == StateMaintenance
}

// BrokenUntil returns the absolute minute the current breakdown episode
// ends, or the last episode's end when the ride is operational.
func (r *Ride) BrokenUntil() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.brokenUntil
}

// ---- Ride control loop ----

// Run drives the state machine: one tick of work per simulated minute until
// the clock says stop. Meant to run on its own goroutine.
func (r *Ride) Run(wg *sync.WaitGroup) {
	defer wg.Done()
	for !r.clock.ShouldStop() {
		r.tick()
		r.clock.AdvanceBy(1)
	}
	logrus.Debugf("ride %s: stopped in state %s", r.cfg.Name, r.State())
}

// tick performs one simulated minute of work for the current state. It is
// invoked only from the ride's own loop; external actors go through
// BreakFor/ScheduleMaintenance.
func (r *Ride) tick() {
	r.mu.Lock()
	switch r.state {
	case StateOpen:
		if r.queue.Size() > 0 {
			r.transitionLocked(StateBoarding)
		}
		r.mu.Unlock()

	case StateBoarding:
		r.windowMinutes++
		batch := r.queue.ExtractBoardingBatch(r.cfg.Capacity)
		if len(batch) > 0 {
			// The cycle sleeps for RunDuration; release the lock so
			// concurrent BreakFor calls are not blocked behind it.
			r.mu.Unlock()
			r.runCycle(batch)
			return
		}
		if r.windowMinutes >= r.cfg.BoardWindow {
			r.transitionLocked(StateOpen)
		}
		r.mu.Unlock()

	case StateBroken, StateMaintenance:
		// Recovery is owned by the repair guardian, which polls at finer
		// than tick granularity so concurrent deadline extensions land.
		r.mu.Unlock()
	}
}

// runCycle simulates one ride cycle for the boarded batch and notifies every
// rider exactly once. Called without the ride lock held.
func (r *Ride) runCycle(batch []*QueueItem) {
	r.metrics.RecordBoard(r.cfg.Name, len(batch), r.clock.Now(), r.cfg.Popularity)
	logrus.Infof("ride %s: boarding %d riders at minute %d", r.cfg.Name, len(batch), r.clock.Now())

	r.clock.AdvanceBy(r.cfg.RunDuration)

	end := r.clock.Now()
	for _, item := range batch {
		if err := item.Rider.NotifyRideFinished(r.cfg.Name, end); err != nil {
			// Best-effort: the rider may already have left the park.
			logrus.Warnf("ride %s: rider notification failed: %v", r.cfg.Name, err)
		}
	}

	r.mu.Lock()
	// A breakdown may have landed mid-cycle; the cycle finishes but must not
	// stomp the BROKEN/MAINTENANCE state the guardian now owns.
	if r.state == StateBoarding {
		r.transitionLocked(StateOpen)
	}
	r.mu.Unlock()
}

// transitionLocked runs the outgoing state's exit hook and the incoming
// state's enter hook. Caller holds r.mu.
func (r *Ride) transitionLocked(next RideState) {
	prev := r.state
	r.state = next
	switch next {
	case StateBoarding:
		r.windowMinutes = 0
	}
	logrus.Debugf("ride %s: %s -> %s at minute %d", r.cfg.Name, prev, next, r.clock.Now())
}

// ---- External triggers for maintenance/failures ----

// BreakFor marks the ride broken until now + max(1, repairMinutes), callable
// from any goroutine. If the ride is already down, the deadline is only ever
// extended; no second guardian is spawned and no double transition happens.
func (r *Ride) BreakFor(repairMinutes int64) {
	r.forceDown(StateBroken, repairMinutes)
}

// ScheduleMaintenance takes the ride down for planned maintenance. Same
// deadline and guardian protocol as BreakFor.
func (r *Ride) ScheduleMaintenance(minutes int64) {
	r.forceDown(StateMaintenance, minutes)
}

func (r *Ride) forceDown(state RideState, minutes int64) {
	if minutes < 1 {
		minutes = 1
	}
	now := r.clock.Now()
	deadline := now + minutes

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateBroken || r.state == StateMaintenance {
		// AlreadyTerminalNoop: a concurrent break only extends the episode.
		if deadline > r.brokenUntil {
			r.brokenUntil = deadline
			logrus.Infof("ride %s: %s extended until minute %d", r.cfg.Name, r.state, deadline)
		}
		return
	}

	r.brokenUntil = deadline
	r.transitionLocked(state)
	r.metrics.RecordBreakdown(r.cfg.Name, state.String(), now, minutes)
	logrus.Warnf("ride %s: %s until minute %d", r.cfg.Name, state, deadline)

	if !r.guardianLive {
		r.guardianLive = true
		go r.repairGuardian()
	}
}

// repairGuardian counts down one breakdown episode. It polls at finer than
// tick resolution because the deadline can be extended while the ride's own
// loop is asleep, and performs the BROKEN/MAINTENANCE -> OPEN transition
// exactly once before exiting.
func (r *Ride) repairGuardian() {
	poll := r.clock.TickInterval() / 4
	if poll < time.Millisecond {
		poll = time.Millisecond
	}
	for {
		r.mu.Lock()
		if r.clock.Now() >= r.brokenUntil {
			r.transitionLocked(StateOpen)
			r.guardianLive = false
			r.metrics.RecordRepaired(r.cfg.Name, r.clock.Now())
			logrus.Infof("ride %s: repaired at minute %d", r.cfg.Name, r.clock.Now())
			r.mu.Unlock()
			return
		}
		r.mu.Unlock()

		timer := time.NewTimer(poll)
		select {
		case <-r.clock.Done():
			timer.Stop()
			r.mu.Lock()
			r.guardianLive = false
			r.mu.Unlock()
			return
		case <-timer.C:
		}
	}
}
