package redisgate

import (
	"math/rand"
	"time"
)

// backoff grows the delay between failed checks exponentially with ±20% jitter.
type backoff struct {
	initial time.Duration
	max     time.Duration
	current time.Duration
}

func newBackoff(initial, max time.Duration) *backoff {
	if max < initial {
		max = initial
	}
	return &backoff{initial: initial, max: max, current: initial}
}

// Next returns the jittered current delay and doubles it for the next call.
func (b *backoff) Next() time.Duration {
	jitter := float64(b.current) * 0.2 * (rand.Float64()*2 - 1)
	d := time.Duration(float64(b.current) + jitter)

	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}
	return d
}

// Reset restores the initial delay.
func (b *backoff) Reset() {
	b.current = b.initial
}
