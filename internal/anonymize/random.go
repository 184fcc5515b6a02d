package anonymize

import (
	crand "crypto/rand"
	"encoding/binary"
	mrand "math/rand"
	"sync"
)

// cryptoSource adapts crypto/rand to math/rand's Source64 so the generator
// helpers (uniform floats, gaussian, shuffle) draw from the OS entropy pool.
type cryptoSource struct{}

func (cryptoSource) Seed(int64) {}

func (s cryptoSource) Int63() int64 {
	return int64(s.Uint64() >> 1)
}

func (cryptoSource) Uint64() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		// crypto/rand only fails when the OS entropy source is broken.
		panic("anonymize: crypto/rand read failed: " + err.Error())
	}
	return binary.BigEndian.Uint64(b[:])
}

// secureRand is the engine's shared random source. math/rand generators are
// not safe for concurrent use, so access is serialized; the randomized
// methods are rare enough per cell that contention is not a concern.
type secureRand struct {
	mu sync.Mutex
	r  *mrand.Rand
}

func newSecureRand() *secureRand {
	return &secureRand{r: mrand.New(cryptoSource{})}
}

// Float64 returns a uniform value in [0, 1).
func (s *secureRand) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// Uniform returns a uniform value in [lo, hi).
func (s *secureRand) Uniform(lo, hi float64) float64 {
	return lo + s.Float64()*(hi-lo)
}

// NormFloat64 returns a standard normal value.
func (s *secureRand) NormFloat64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.NormFloat64()
}

// IntN returns a uniform value in [0, n).
func (s *secureRand) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Intn(n)
}

// Shuffle permutes n elements via the given swap function (Fisher-Yates).
func (s *secureRand) Shuffle(n int, swap func(i, j int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.Shuffle(n, swap)
}
