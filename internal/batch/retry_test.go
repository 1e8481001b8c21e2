package batch

import (
	"testing"
	"time"

	"passtract/internal/providers"
)

func TestPolicy_Defaults(t *testing.T) {
	p := DefaultPolicy()

	if p.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", p.MaxRetries)
	}
	if p.BaseDelay != time.Second {
		t.Errorf("BaseDelay = %v, want 1s", p.BaseDelay)
	}
	if p.BackoffFactor != 2.0 {
		t.Errorf("BackoffFactor = %v, want 2.0", p.BackoffFactor)
	}
	if p.MaxDelay != 60*time.Second {
		t.Errorf("MaxDelay = %v, want 60s", p.MaxDelay)
	}
}

func TestPolicy_ShouldRetry(t *testing.T) {
	p := DefaultPolicy()

	retryable := []providers.ErrorKind{
		providers.KindTransientNetwork,
		providers.KindRateLimit,
		providers.KindTransientModel,
	}
	terminal := []providers.ErrorKind{
		providers.KindInvalidInput,
		providers.KindUnsupportedFormat,
	}

	for _, kind := range retryable {
		if !p.ShouldRetry(0, kind) {
			t.Errorf("ShouldRetry(0, %s) = false, want true", kind)
		}
		if p.ShouldRetry(p.MaxRetries, kind) {
			t.Errorf("ShouldRetry(%d, %s) = true, want false", p.MaxRetries, kind)
		}
	}

	for _, kind := range terminal {
		for attempt := 0; attempt <= p.MaxRetries; attempt++ {
			if p.ShouldRetry(attempt, kind) {
				t.Errorf("ShouldRetry(%d, %s) = true, want false", attempt, kind)
			}
		}
	}
}

func TestPolicy_DelayForGrowth(t *testing.T) {
	p := DefaultPolicy()
	p.Jitter = func() float64 { return 0 }

	// Exponential growth without jitter: 1s, 2s, 4s.
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	for i, w := range want {
		if got := p.DelayFor(i); got != w {
			t.Errorf("DelayFor(%d) = %v, want %v", i, got, w)
		}
	}

	// Non-decreasing up to the cap.
	prev := time.Duration(0)
	for i := 0; i < 12; i++ {
		d := p.DelayFor(i)
		if d < prev {
			t.Errorf("DelayFor(%d) = %v, decreased from %v", i, d, prev)
		}
		prev = d
	}
}

func TestPolicy_DelayForCap(t *testing.T) {
	p := DefaultPolicy()
	p.Jitter = func() float64 { return 1 }

	// Even with maximal jitter the delay never exceeds max*(1+fraction).
	ceiling := time.Duration(float64(p.MaxDelay) * (1 + p.JitterFraction))
	for i := 0; i < 20; i++ {
		if d := p.DelayFor(i); d > ceiling {
			t.Errorf("DelayFor(%d) = %v, want <= %v", i, d, ceiling)
		}
	}
}

func TestPolicy_DelayForJitterWindow(t *testing.T) {
	p := DefaultPolicy()

	// With random jitter the delay stays in [base, base*(1+fraction)].
	base := 2 * time.Second // attempt 1
	max := time.Duration(float64(base) * (1 + p.JitterFraction))
	for i := 0; i < 50; i++ {
		d := p.DelayFor(1)
		if d < base || d > max {
			t.Fatalf("DelayFor(1) = %v, want in [%v, %v]", d, base, max)
		}
	}
}

func TestPolicy_ZeroRetries(t *testing.T) {
	p := DefaultPolicy()
	p.MaxRetries = 0

	if p.ShouldRetry(0, providers.KindTransientNetwork) {
		t.Error("ShouldRetry(0, transient) = true with zero retries, want false")
	}
}
