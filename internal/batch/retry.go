package batch

import (
	"math"
	"math/rand"
	"time"

	"passtract/internal/providers"
)

// Policy decides retry eligibility and backoff delay. It is a pure
// computation; the processor owns the actual sleeping.
type Policy struct {
	MaxRetries     int
	BaseDelay      time.Duration
	BackoffFactor  float64
	MaxDelay       time.Duration
	JitterFraction float64

	// Jitter returns a value in [0, 1) scaling the jitter window.
	// Nil means rand.Float64; tests pin it for determinism.
	Jitter func() float64
}

// DefaultPolicy returns the standard retry policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:     3,
		BaseDelay:      time.Second,
		BackoffFactor:  2.0,
		MaxDelay:       60 * time.Second,
		JitterFraction: 0.25,
	}
}

// ShouldRetry reports whether another attempt is permitted after failure
// number attempt (zero-based). Terminal error kinds never retry.
func (p Policy) ShouldRetry(attempt int, kind providers.ErrorKind) bool {
	return attempt < p.MaxRetries && kind.Retryable()
}

// DelayFor returns the backoff delay before retry number attempt
// (zero-based): min(maxDelay, base*factor^attempt) plus jitter drawn
// uniformly from [0, delay*jitterFraction] to desynchronize concurrent
// retries.
func (p Policy) DelayFor(attempt int) time.Duration {
	delay := float64(p.BaseDelay) * math.Pow(p.BackoffFactor, float64(attempt))
	if max := float64(p.MaxDelay); delay > max {
		delay = max
	}

	jitter := p.Jitter
	if jitter == nil {
		jitter = rand.Float64
	}
	delay += delay * p.JitterFraction * jitter()

	return time.Duration(delay)
}
