package classifier

import (
	"math/rand/v2"
	"sync"
)

// Random is the single source of randomness behind a prediction. Draw order
// per prediction is: delay (Float64), cloud type (IntN), confidence (Float64).
type Random interface {
	Float64() float64
	IntN(n int) int
}

// lockedRandom makes a *rand.Rand safe for concurrent requests.
type lockedRandom struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom returns a goroutine-safe PCG source seeded with seed.
func NewRandom(seed uint64) Random {
	return &lockedRandom{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewUnseededRandom returns a goroutine-safe source seeded from the runtime.
func NewUnseededRandom() Random {
	return NewRandom(rand.Uint64())
}

func (r *lockedRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

func (r *lockedRandom) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}
