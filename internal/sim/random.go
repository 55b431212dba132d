package sim

import (
	"hash/fnv"
	"math/rand"
)

// DeterministicSeedValue hashes the root seed and a subsystem label into
// a stable RNG seed. Equal inputs yield equal streams on every run and
// platform.
func DeterministicSeedValue(rootSeed, label string) int64 {
	hasher := fnv.New64a()
	hasher.Write([]byte(rootSeed))
	hasher.Write([]byte{0})
	hasher.Write([]byte(label))
	sum := hasher.Sum64()
	if sum == 0 {
		sum = 1
	}
	return int64(sum)
}

// NewDeterministicRNG returns a rand.Rand seeded for one subsystem.
func NewDeterministicRNG(rootSeed, label string) *rand.Rand {
	return rand.New(rand.NewSource(DeterministicSeedValue(rootSeed, label)))
}
