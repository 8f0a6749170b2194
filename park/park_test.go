package park

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPark(t *testing.T, clock *Clock) *Park {
	t.Helper()
	return NewPark(clock, newTestMetrics(t))
}

func addRide(t *testing.T, p *Park, clock *Clock, cfg RideConfig) *Ride {
	t.Helper()
	r := NewRide(cfg, NewRideQueue(clock, false, 0, 0), clock, nil)
	p.AddRide(r)
	return r
}

func TestPark_RideByName(t *testing.T) {
	clock := newTestClock(t, 100)
	p := newTestPark(t, clock)
	r := addRide(t, p, clock, RideConfig{Name: "FerrisWheel", Capacity: 10, RunDuration: 4, BoardWindow: 2})

	assert.Same(t, r, p.RideByName("FerrisWheel"))
	assert.Nil(t, p.RideByName("NoSuchRide"))
}

func TestPark_OpenRidesExcludesDownRides(t *testing.T) {
	// GIVEN one open and one broken ride
	clock := newTestClock(t, 100)
	p := newTestPark(t, clock)
	open := addRide(t, p, clock, RideConfig{Name: "A", Capacity: 4, RunDuration: 2, BoardWindow: 2})
	down := addRide(t, p, clock, RideConfig{Name: "B", Capacity: 4, RunDuration: 2, BoardWindow: 2})
	down.BreakFor(100)

	// THEN only the open ride is offered to choice strategies
	rides := p.OpenRides()
	require.Len(t, rides, 1)
	assert.Same(t, open, rides[0])
}

func TestPark_EstimatedWaitMinutes(t *testing.T) {
	// GIVEN a 4-seat ride with a 5-minute cycle and 9 waiting riders
	clock := newTestClock(t, 100)
	p := newTestPark(t, clock)
	r := addRide(t, p, clock, RideConfig{Name: "Coaster", Capacity: 4, RunDuration: 5, BoardWindow: 2})
	for i := int64(0); i < 9; i++ {
		r.Queue().Enqueue(&stubGuest{id: i}, 0, false)
	}

	// THEN the estimate is ceil(9/4) = 3 cycles of 5 minutes
	assert.Equal(t, int64(15), p.EstimatedWaitMinutes("Coaster"))
	assert.Equal(t, int64(0), p.EstimatedWaitMinutes("NoSuchRide"))
}

func TestPark_CreateVisitor_AssignsSequentialIDs(t *testing.T) {
	clock := newTestClock(t, 100)
	p := newTestPark(t, clock)
	rng := NewPartitionedRNG(42)

	v1, err := p.CreateVisitor("Child", rng)
	require.NoError(t, err)
	v2, err := p.CreateVisitor("Tourist", rng)
	require.NoError(t, err)

	assert.Equal(t, int64(1), v1.ID())
	assert.Equal(t, int64(2), v2.ID())
	assert.Equal(t, "Child", v1.Kind())
	assert.Equal(t, "Tourist", v2.Kind())
	assert.Len(t, p.Visitors(), 2)
}

func TestPark_CreateVisitor_UnknownKind(t *testing.T) {
	clock := newTestClock(t, 100)
	p := newTestPark(t, clock)

	v, err := p.CreateVisitor("Alien", NewPartitionedRNG(42))
	assert.Nil(t, v)
	assert.Error(t, err)
}

func TestPark_CreateVisitor_DeterministicPerSeed(t *testing.T) {
	// GIVEN two parks populated identically from the same master seed
	build := func() *Visitor {
		clock := newTestClock(t, 100)
		p := newTestPark(t, clock)
		v, err := p.CreateVisitor("AdrenalineAddict", NewPartitionedRNG(777))
		require.NoError(t, err)
		return v
	}
	a, b := build(), build()

	// THEN creation-time sampling replays exactly
	assert.Equal(t, a.timeBudget, b.timeBudget)
	assert.Equal(t, a.patience, b.patience)
	assert.Equal(t, a.hasFastpass, b.hasFastpass)
}

func TestPark_JoinRideQueue_RespectsStateAndFastpass(t *testing.T) {
	clock := newTestClock(t, 100)
	p := newTestPark(t, clock)
	r := NewRide(RideConfig{Name: "Coaster", Capacity: 4, RunDuration: 5, BoardWindow: 2},
		NewRideQueue(clock, true, 0, 0), clock, nil)
	p.AddRide(r)

	v, err := p.CreateVisitor("Child", NewPartitionedRNG(42))
	require.NoError(t, err)

	// An open ride admits the visitor on the lane its fastpass dictates.
	require.True(t, p.JoinRideQueue(v, r))
	if v.HasFastpass() {
		assert.Equal(t, 1, r.Queue().LenPriority())
	} else {
		assert.Equal(t, 1, r.Queue().LenRegular())
	}

	// A broken ride turns the visitor away before touching the queue.
	r.Queue().RemoveByIdentity(v)
	r.BreakFor(10)
	assert.False(t, p.JoinRideQueue(v, r))
	assert.Equal(t, 0, r.Queue().Size())
}

func TestPark_JoinFoodQueue(t *testing.T) {
	clock := newTestClock(t, 100)
	p := newTestPark(t, clock)
	f := NewFoodFacility(FoodConfig{Name: "BurgerTruck", MinService: 1, MaxService: 2, Capacity: 1},
		NewServiceQueue(clock, 1), clock, nil, rand.New(rand.NewSource(1)))
	p.AddFoodFacility(f)

	v, err := p.CreateVisitor("Tourist", NewPartitionedRNG(42))
	require.NoError(t, err)

	assert.True(t, p.JoinFoodQueue(v, f))
	// Line capacity is 1: the next join is turned away.
	v2, err := p.CreateVisitor("Tourist", NewPartitionedRNG(43))
	require.NoError(t, err)
	assert.False(t, p.JoinFoodQueue(v2, f))
}
