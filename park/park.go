// Implements the Park, the explicit registry of rides, food facilities and
// visitors. The orchestrator owns the single Park value; collaborators that
// need to enumerate rides receive it by reference. No ambient globals.

package park

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Park is the shared registry actors consult: open rides for choice
// strategies, wait estimation, and the join helpers visitors go through.
type Park struct {
	clock   *Clock
	metrics *MetricsRecorder

	nextVisitorID atomic.Int64

	mu       sync.Mutex
	rides    []*Ride
	food     []*FoodFacility
	visitors []*Visitor
}

// NewPark creates an empty registry bound to the simulation clock.
func NewPark(clock *Clock, metrics *MetricsRecorder) *Park {
	if clock == nil {
		panic("NewPark: clock must not be nil")
	}
	return &Park{clock: clock, metrics: metrics}
}

// AddRide registers a ride.
func (p *Park) AddRide(r *Ride) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rides = append(p.rides, r)
}

// AddFoodFacility registers a food facility.
func (p *Park) AddFoodFacility(f *FoodFacility) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.food = append(p.food, f)
}

// Rides returns a snapshot of all registered rides.
func (p *Park) Rides() []*Ride {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Ride, len(p.rides))
	copy(out, p.rides)
	return out
}

// FoodFacilities returns a snapshot of all registered facilities.
func (p *Park) FoodFacilities() []*FoodFacility {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*FoodFacility, len(p.food))
	copy(out, p.food)
	return out
}

// Visitors returns a snapshot of every visitor created so far.
func (p *Park) Visitors() []*Visitor {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Visitor, len(p.visitors))
	copy(out, p.visitors)
	return out
}

// OpenRides returns the rides whose state currently admits new riders.
func (p *Park) OpenRides() []*Ride {
	var open []*Ride
	for _, r := range p.Rides() {
		if r.CanEnqueue() {
			open = append(open, r)
		}
	}
	return open
}

// RideByName returns the named ride, or nil.
func (p *Park) RideByName(name string) *Ride {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range p.rides {
		if r.Name() == name {
			return r
		}
	}
	return nil
}

// EstimatedWaitMinutes is the quick heuristic strategies use:
// ceil(queueLength / capacity) boarding cycles, each costing RunDuration.
func (p *Park) EstimatedWaitMinutes(rideName string) int64 {
	r := p.RideByName(rideName)
	if r == nil {
		return 0
	}
	qLen := int64(r.Queue().Size())
	cap := int64(r.Capacity())
	cycles := (qLen + cap - 1) / cap
	return cycles * r.RunDuration()
}

// CreateVisitor builds a visitor of the named archetype from the static
// profile table and registers it. The visitor's private sampling stream is
// derived from its id, so creation order alone fixes every visitor's
// behavior for a given master seed. Call from one goroutine at a time (the
// arrival generator in production).
func (p *Park) CreateVisitor(kind string, rng *PartitionedRNG) (*Visitor, error) {
	profile, ok := VisitorProfiles[kind]
	if !ok {
		return nil, fmt.Errorf("unknown visitor type %q", kind)
	}
	if rng == nil {
		panic("CreateVisitor: rng must not be nil")
	}
	id := p.nextVisitorID.Add(1)
	v := newVisitor(id, profile, p, p.clock, p.metrics, rng.ForSubsystem(SubsystemVisitor(id)))

	p.mu.Lock()
	p.visitors = append(p.visitors, v)
	p.mu.Unlock()
	return v, nil
}

// JoinRideQueue enqueues the visitor on the ride, using the fastpass lane
// when the visitor holds one. Returns false when the ride is down or the
// lane is at capacity; the visitor decides the fallback.
func (p *Park) JoinRideQueue(v *Visitor, r *Ride) bool {
	if !r.CanEnqueue() {
		return false
	}
	return r.Queue().Enqueue(v, p.clock.Now(), v.HasFastpass())
}

// JoinFoodQueue enqueues the visitor at the facility.
func (p *Park) JoinFoodQueue(v *Visitor, f *FoodFacility) bool {
	return f.Queue().Enqueue(v, p.clock.Now())
}
