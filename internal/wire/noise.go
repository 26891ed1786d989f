package wire

import (
	"math/rand"
	"time"
)

// Channel simulates a lossy transmission line by flipping each bit of an
// outgoing packet with an independent probability. The sending side runs
// every wire image through it, checksum and sequence byte included, so
// both endpoints exercise their recovery paths against realistic damage.
type Channel struct {
	p   float64
	rng *rand.Rand
}

// NewChannel returns a channel with the given bit-error probability.
// The PRNG belongs to the caller so experiments and tests can seed it; a
// nil rng falls back to a time-seeded source.
func NewChannel(p float64, rng *rand.Rand) *Channel {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Channel{p: p, rng: rng}
}

// Corrupt returns a copy of b with simulated bit errors applied. A nil
// channel or a zero probability returns b unchanged.
func (c *Channel) Corrupt(b []byte) []byte {
	if c == nil || c.p <= 0 {
		return b
	}
	out := make([]byte, len(b))
	copy(out, b)
	for i := range out {
		for bit := 0; bit < 8; bit++ {
			if c.rng.Float64() < c.p {
				out[i] ^= 1 << bit
			}
		}
	}
	return out
}
