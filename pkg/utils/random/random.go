package random

import (
	crand "crypto/rand"
	"encoding/binary"
	rand "math/rand/v2"
	"sync"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from seed.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// Locked is a *rand.Rand that can be shared between goroutines.
type Locked struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewLocked seeds a shared source. A zero seed draws one from crypto/rand.
func NewLocked(seed int64) *Locked {
	if seed == 0 {
		seed = Seed()
	}
	return &Locked{r: New(seed)}
}

func (l *Locked) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// Seed returns a non-zero seed from the operating system.
func Seed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 1
	}
	if v := int64(binary.LittleEndian.Uint64(b[:])); v != 0 {
		return v
	}
	return 1
}
