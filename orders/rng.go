package orders

import (
	"hash/fnv"
	"math/rand"
)

// PartitionedRNG derives isolated, deterministic RNG streams per subsystem
// from one master seed, so that adding or removing a consumer never
// perturbs another subsystem's draw sequence.
type PartitionedRNG struct {
	masterSeed int64
	streams    map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a master seed.
func NewPartitionedRNG(masterSeed int64) *PartitionedRNG {
	return &PartitionedRNG{masterSeed: masterSeed, streams: make(map[string]*rand.Rand)}
}

// ForSubsystem returns the (cached, deterministically-seeded) RNG stream
// for the named subsystem.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.streams[name]; ok {
		return rng
	}
	seed := p.masterSeed ^ fnv1a64(name)
	rng := rand.New(rand.NewSource(seed))
	p.streams[name] = rng
	return rng
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return int64(h.Sum64())
}
