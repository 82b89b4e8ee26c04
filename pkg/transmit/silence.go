package transmit

import (
	"math/rand"
	"time"
)

// SilenceGenerator picks the silence gap written after each page. The
// gap is a random sample count in [minDelay, maxDelay) seconds; when
// maxDelay <= minDelay the gap is exactly minDelay seconds.
type SilenceGenerator struct {
	rng        *rand.Rand
	sampleRate int
	minDelay   int // seconds
	maxDelay   int // seconds
}

// NewSilenceGenerator creates a silence generator. A nil rng gets a
// time-seeded source; tests pass a fixed seed for reproducible gaps.
func NewSilenceGenerator(rng *rand.Rand, sampleRate, minDelay, maxDelay int) *SilenceGenerator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SilenceGenerator{
		rng:        rng,
		sampleRate: sampleRate,
		minDelay:   minDelay,
		maxDelay:   maxDelay,
	}
}

// NextLength returns the next silence gap in samples
func (g *SilenceGenerator) NextLength() int {
	min := g.minDelay * g.sampleRate
	if g.maxDelay <= g.minDelay {
		return min
	}
	return min + g.rng.Intn((g.maxDelay-g.minDelay)*g.sampleRate)
}
