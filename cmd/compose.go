// Composes a runnable simulation from a ParkConfig: clock, metrics, park
// registry, rides, food facilities, failure injector and arrival generator,
// all sharing one partitioned RNG.

package cmd

import (
	"fmt"
	"sync"

	"github.com/sibyllerdx/parksim/park"
	"github.com/sibyllerdx/parksim/park/arrival"
)

// simulation bundles the composed actors and their lifecycle bookkeeping.
type simulation struct {
	clock    *park.Clock
	metrics  *park.MetricsRecorder
	registry *park.Park
	rides    []*park.Ride
	food     []*park.FoodFacility
	injector *park.FailureInjector
	arrivals *arrival.Generator

	wg sync.WaitGroup
}

// composeSimulation wires every actor from the validated configuration.
func composeSimulation(cfg *ParkConfig, seed int64, outDir, metricsFile string) (*simulation, error) {
	clock := park.NewClock(cfg.Time.SpeedFactor, cfg.Time.OpenMinutes)
	rng := park.NewPartitionedRNG(seed)

	metrics, err := park.NewMetricsRecorder(outDir, metricsFile)
	if err != nil {
		return nil, err
	}

	registry := park.NewPark(clock, metrics)

	s := &simulation{
		clock:    clock,
		metrics:  metrics,
		registry: registry,
	}

	for _, entry := range cfg.Rides {
		maxPriority := 0
		if cfg.Policy.Fastpass {
			maxPriority = entry.QueueCapacity / 2
		}
		queue := park.NewRideQueue(clock, cfg.Policy.Fastpass, entry.QueueCapacity, maxPriority)
		ride := park.NewRide(park.RideConfig{
			Name:        entry.Name,
			Capacity:    entry.Capacity,
			RunDuration: entry.RunDuration,
			BoardWindow: entry.BoardWindow,
			Popularity:  entry.Popularity,
		}, queue, clock, metrics)
		registry.AddRide(ride)
		s.rides = append(s.rides, ride)
	}

	for _, entry := range cfg.Food {
		queue := park.NewServiceQueue(clock, entry.Capacity*2)
		facility := park.NewFoodFacility(park.FoodConfig{
			Name:       entry.Name,
			MinService: entry.ServiceTime[0],
			MaxService: entry.ServiceTime[1],
			Capacity:   entry.Capacity,
		}, queue, clock, metrics, rng.ForSubsystem(park.SubsystemFood(entry.Name)))
		registry.AddFoodFacility(facility)
		s.food = append(s.food, facility)
	}

	s.injector = park.NewFailureInjector(s.rides, clock,
		cfg.Maintenance.MeanUptime, cfg.Maintenance.MeanRepair,
		rng.DerivedSeed(park.SubsystemMaintenance))

	curve := make([]arrival.CurvePoint, len(cfg.Arrival.CurvePoints))
	for i, p := range cfg.Arrival.CurvePoints {
		curve[i] = arrival.CurvePoint{Minute: p.Minute, Mean: p.Mean}
	}
	s.arrivals, err = arrival.NewGenerator(arrival.Config{
		Clock:       clock,
		Park:        registry,
		Metrics:     metrics,
		RNG:         rng,
		CurvePoints: curve,
		VisitorMix:  cfg.Arrival.VisitorTypes,
		Jitter:      cfg.Arrival.Jitter,
		Spawn:       s.spawnVisitor,
	})
	if err != nil {
		metrics.Close()
		return nil, fmt.Errorf("compose arrival generator: %w", err)
	}

	return s, nil
}

// spawnVisitor starts a visitor goroutine tracked by the simulation's
// WaitGroup so shutdown joins every guest.
func (s *simulation) spawnVisitor(v *park.Visitor) {
	s.wg.Add(1)
	go v.Run(&s.wg)
}

// run starts every actor, drives the clock to the horizon, then stops and
// joins. Returns the final counters.
func (s *simulation) run() park.Counters {
	for _, r := range s.rides {
		s.wg.Add(1)
		go r.Run(&s.wg)
	}
	for _, f := range s.food {
		s.wg.Add(1)
		go f.Run(&s.wg)
	}
	s.wg.Add(1)
	go s.injector.Run(&s.wg)
	s.wg.Add(1)
	go s.arrivals.Run(&s.wg)

	s.clock.RunUntilHorizon()
	s.clock.Stop()
	s.wg.Wait()

	return s.metrics.Snapshot()
}
