// Package arrival generates visitors minute by minute from a piecewise-linear
// arrival curve. Counts are Poisson-sampled around the interpolated mean;
// visitor archetypes are drawn from a weighted mix.
//
// This is the Poisson-per-minute policy; a pre-scheduled total-visitor-count
// generator would be a different implementation of the same collaborator.
package arrival

import (
	"fmt"
	"math/rand"
	randv2 "math/rand/v2"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sibyllerdx/parksim/park"
)

// CurvePoint is one control point of the arrival curve: the mean number of
// arrivals per minute at that simulated minute.
type CurvePoint struct {
	Minute int64
	Mean   float64
}

// Config wires a Generator.
type Config struct {
	Clock   *park.Clock
	Park    *park.Park
	Metrics *park.MetricsRecorder
	RNG     *park.PartitionedRNG

	CurvePoints []CurvePoint
	VisitorMix  map[string]float64 // archetype name -> weight
	Jitter      float64            // uniform noise added to the per-minute mean

	// Spawn starts the visitor's goroutine; supplied by the orchestrator so
	// the generator stays out of lifecycle bookkeeping.
	Spawn func(*park.Visitor)
}

// Generator is the arrival actor: one loop iteration per simulated minute.
type Generator struct {
	clock   *park.Clock
	park    *park.Park
	metrics *park.MetricsRecorder
	rng     *park.PartitionedRNG
	spawn   func(*park.Visitor)

	points  []CurvePoint
	types   []string
	weights []float64
	jitter  float64

	mixRNG     *rand.Rand
	poissonSrc randv2.Source
}

// NewGenerator validates the curve and mix and derives the arrival sampling
// streams from the partitioned RNG.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.Clock == nil || cfg.Park == nil || cfg.RNG == nil || cfg.Spawn == nil {
		return nil, fmt.Errorf("arrival: clock, park, rng and spawn are required")
	}
	if len(cfg.CurvePoints) == 0 {
		return nil, fmt.Errorf("arrival: at least one curve point is required")
	}
	if len(cfg.VisitorMix) == 0 {
		return nil, fmt.Errorf("arrival: visitor mix must not be empty")
	}

	points := make([]CurvePoint, len(cfg.CurvePoints))
	copy(points, cfg.CurvePoints)
	sort.Slice(points, func(i, j int) bool { return points[i].Minute < points[j].Minute })

	// Sorted type names keep the weighted draw independent of map iteration
	// order, so a seed reproduces the same mix.
	types := make([]string, 0, len(cfg.VisitorMix))
	for name := range cfg.VisitorMix {
		types = append(types, name)
	}
	sort.Strings(types)

	total := 0.0
	for _, name := range types {
		w := cfg.VisitorMix[name]
		if w < 0 {
			return nil, fmt.Errorf("arrival: negative weight for visitor type %q", name)
		}
		total += w
	}
	if total <= 0 {
		return nil, fmt.Errorf("arrival: visitor mix weights sum to zero")
	}
	weights := make([]float64, len(types))
	for i, name := range types {
		weights[i] = cfg.VisitorMix[name] / total
	}

	seed := cfg.RNG.DerivedSeed(park.SubsystemArrival)
	return &Generator{
		clock:      cfg.Clock,
		park:       cfg.Park,
		metrics:    cfg.Metrics,
		rng:        cfg.RNG,
		spawn:      cfg.Spawn,
		points:     points,
		types:      types,
		weights:    weights,
		jitter:     cfg.Jitter,
		mixRNG:     cfg.RNG.ForSubsystem(park.SubsystemArrival),
		poissonSrc: randv2.NewPCG(uint64(seed), uint64(seed)^0xda942042e4dd58b5),
	}, nil
}

// MeanAt linearly interpolates the arrival curve at minute, clamped at both
// ends.
func (g *Generator) MeanAt(minute int64) float64 {
	pts := g.points
	if minute <= pts[0].Minute {
		return pts[0].Mean
	}
	if minute >= pts[len(pts)-1].Minute {
		return pts[len(pts)-1].Mean
	}
	for i := 0; i+1 < len(pts); i++ {
		p1, p2 := pts[i], pts[i+1]
		if p1.Minute <= minute && minute <= p2.Minute {
			span := p2.Minute - p1.Minute
			if span == 0 {
				return p1.Mean
			}
			t := float64(minute-p1.Minute) / float64(span)
			return p1.Mean + t*(p2.Mean-p1.Mean)
		}
	}
	return pts[len(pts)-1].Mean
}

// SampleCount draws Poisson(mean + jitter), clamped to non-negative.
func (g *Generator) SampleCount(mean float64) int {
	if g.jitter > 0 {
		mean += (g.mixRNG.Float64()*2 - 1) * g.jitter
	}
	if mean <= 0 {
		return 0
	}
	p := distuv.Poisson{Lambda: mean, Src: g.poissonSrc}
	return int(p.Rand())
}

// Run generates arrivals once per simulated minute until the park closes.
func (g *Generator) Run(wg *sync.WaitGroup) {
	defer wg.Done()
	for !g.clock.ShouldStop() {
		minute := g.clock.Now()
		n := g.SampleCount(g.MeanAt(minute))

		for i := 0; i < n; i++ {
			kind := g.pickType()
			v, err := g.park.CreateVisitor(kind, g.rng)
			if err != nil {
				logrus.Warnf("arrival: %v", err)
				continue
			}
			g.metrics.RecordArrival(v.ID(), kind, minute)
			g.spawn(v)
		}

		g.clock.AdvanceBy(1)
	}
}

func (g *Generator) pickType() string {
	x := g.mixRNG.Float64()
	acc := 0.0
	for i, w := range g.weights {
		acc += w
		if x <= acc {
			return g.types[i]
		}
	}
	return g.types[len(g.types)-1]
}
