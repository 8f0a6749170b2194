// Implements food facilities: the simpler sibling of the ride loop, built on
// the single-lane ServiceQueue. Each facility serves up to capacity orders
// in parallel, with a random cook time per order.

package park

import (
	"math/rand"
	"sync"

	"github.com/sirupsen/logrus"
)

// FoodConfig parameterizes one food facility. Facility "kinds" (burger
// truck, ice cream stand) are configuration entries, not code.
type FoodConfig struct {
	Name       string
	MinService int64 // minimum cook time, simulated minutes
	MaxService int64 // maximum cook time, simulated minutes
	Capacity   int   // orders cooked in parallel
}

type inFlightOrder struct {
	diner     Diner
	visitorID int64
	etaMinute int64
}

// FoodFacility runs a service loop against the clock: finish orders whose
// ETA passed, then pull new orders from the queue up to capacity.
type FoodFacility struct {
	cfg     FoodConfig
	queue   *ServiceQueue
	clock   *Clock
	metrics *MetricsRecorder
	rng     *rand.Rand

	mu       sync.Mutex
	inflight []inFlightOrder
}

// NewFoodFacility creates a facility. A non-positive capacity or inverted
// service-time range is a programmer error.
func NewFoodFacility(cfg FoodConfig, queue *ServiceQueue, clock *Clock, metrics *MetricsRecorder, rng *rand.Rand) *FoodFacility {
	if queue == nil || clock == nil || rng == nil {
		panic("NewFoodFacility: queue, clock and rng must not be nil")
	}
	if cfg.Capacity <= 0 {
		panic("NewFoodFacility: capacity must be positive")
	}
	if cfg.MinService < 1 || cfg.MaxService < cfg.MinService {
		panic("NewFoodFacility: invalid service time range")
	}
	return &FoodFacility{
		cfg:     cfg,
		queue:   queue,
		clock:   clock,
		metrics: metrics,
		rng:     rng,
	}
}

// Name returns the facility's name.
func (f *FoodFacility) Name() string { return f.cfg.Name }

// Queue returns the facility's order queue, for producers.
func (f *FoodFacility) Queue() *ServiceQueue { return f.queue }

// InFlight returns the number of orders currently being cooked.
func (f *FoodFacility) InFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inflight)
}

// Run drives the service loop until the clock says stop, then flushes any
// orders that finished before shutdown.
func (f *FoodFacility) Run(wg *sync.WaitGroup) {
	defer wg.Done()
	for !f.clock.ShouldStop() {
		f.tick()
		f.clock.AdvanceBy(1)
	}
	f.finishOrders(f.clock.Now())
}

func (f *FoodFacility) tick() {
	now := f.clock.Now()
	f.mu.Lock()
	defer f.mu.Unlock()

	f.finishOrdersLocked(now)

	for len(f.inflight) < f.cfg.Capacity {
		item := f.queue.Dequeue()
		if item == nil {
			break
		}
		f.startOrderLocked(item.Diner, now)
	}
}

func (f *FoodFacility) startOrderLocked(diner Diner, now int64) {
	cook := f.cfg.MinService + f.rng.Int63n(f.cfg.MaxService-f.cfg.MinService+1)
	f.inflight = append(f.inflight, inFlightOrder{
		diner:     diner,
		visitorID: diner.ID(),
		etaMinute: now + cook,
	})
	f.metrics.RecordOrder(diner.ID(), f.cfg.Name, now)
	logrus.Debugf("food %s: order from visitor %d, ready at minute %d", f.cfg.Name, diner.ID(), now+cook)
}

func (f *FoodFacility) finishOrders(now int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finishOrdersLocked(now)
}

func (f *FoodFacility) finishOrdersLocked(now int64) {
	remaining := f.inflight[:0]
	for _, order := range f.inflight {
		if order.etaMinute > now {
			remaining = append(remaining, order)
			continue
		}
		if err := order.diner.NotifyOrderServed(f.cfg.Name, now); err != nil {
			// Best-effort: the diner may already have left the park.
			logrus.Warnf("food %s: diner notification failed: %v", f.cfg.Name, err)
		}
		f.metrics.RecordServed(order.visitorID, f.cfg.Name, now)
	}
	f.inflight = remaining
}
