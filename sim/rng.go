package sim

import (
	"hash/fnv"
	"math/rand"
)

// === Subsystem Constants ===

const (
	// SubsystemTieBreak is the RNG subsystem for strategy tie-breaks.
	// Uses the master seed directly so a Seeded(s) run draws from rand.NewSource(s).
	SubsystemTieBreak = "tiebreak"

	// SubsystemWorkload is the RNG subsystem for request profile sampling.
	SubsystemWorkload = "workload"
)

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula:
//   - For SubsystemTieBreak: uses masterSeed directly
//   - For all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	masterSeed int64
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a master seed.
func NewPartitionedRNG(seed uint64) *PartitionedRNG {
	return &PartitionedRNG{
		masterSeed: int64(seed),
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

	derivedSeed := p.masterSeed
	if name != SubsystemTieBreak {
		derivedSeed ^= fnv1a64(name)
	}

	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

// === TieBreaker ===

// TieBreaker produces a bounded random index. Intn(n) returns a value in [0, n).
// *rand.Rand satisfies this interface.
type TieBreaker interface {
	Intn(n int) int
}

// StableTieBreaker always returns 0, selecting the first candidate among ties.
type StableTieBreaker struct{}

// Intn implements TieBreaker.
func (StableTieBreaker) Intn(n int) int {
	if n <= 0 {
		panic("StableTieBreaker.Intn: non-positive bound")
	}
	return 0
}

// NewTieBreaker returns the single tie-break source used for a run.
// Stable runs never touch an RNG; seeded runs draw from the tiebreak
// subsystem of rng.
func NewTieBreaker(tb TieBreak, rng *PartitionedRNG) TieBreaker {
	if !tb.IsSeeded() {
		return StableTieBreaker{}
	}
	return rng.ForSubsystem(SubsystemTieBreak)
}
