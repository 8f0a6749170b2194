package park

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// === Subsystem Constants ===

const (
	// SubsystemArrival is the RNG subsystem for visitor arrival generation.
	// Uses the master seed directly so --seed reproduces the arrival stream.
	SubsystemArrival = "arrival"

	// SubsystemMaintenance is the RNG subsystem for the failure injector.
	SubsystemMaintenance = "maintenance"
)

// SubsystemVisitor returns the subsystem name for visitor N.
// Each visitor owns an isolated stream so goroutine interleaving does not
// perturb another visitor's sampling.
func SubsystemVisitor(id int64) string {
	return fmt.Sprintf("visitor_%d", id)
}

// SubsystemFood returns the subsystem name for a food facility.
func SubsystemFood(name string) string {
	return "food_" + name
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula:
//   - For SubsystemArrival: uses the master seed directly
//   - For all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// Thread-safety: ForSubsystem must be called from the orchestrator goroutine
// during wiring; the returned *rand.Rand belongs to exactly one entity loop.
type PartitionedRNG struct {
	seed       int64
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a master seed.
func NewPartitionedRNG(seed int64) *PartitionedRNG {
	return &PartitionedRNG{
		seed:       seed,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}

	rng := rand.New(rand.NewSource(p.DerivedSeed(name)))
	p.subsystems[name] = rng
	return rng
}

// DerivedSeed returns the seed the named subsystem's stream is built from.
// Exposed for samplers that need a raw seed rather than a *rand.Rand.
func (p *PartitionedRNG) DerivedSeed(name string) int64 {
	if name == SubsystemArrival {
		return p.seed
	}
	return p.seed ^ fnv1a64(name)
}

// Seed returns the master seed used to create this PartitionedRNG.
func (p *PartitionedRNG) Seed() int64 {
	return p.seed
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
