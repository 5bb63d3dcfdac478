package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	b := NewCircuitBreaker(3, time.Minute, 1)

	for i := 0; i < 3; i++ {
		if err := b.Allow(); err != nil {
			t.Fatalf("request %d unexpectedly blocked: %v", i, err)
		}
		b.RecordFailure()
	}

	if got := b.State(); got != CircuitStateOpen {
		t.Fatalf("expected open circuit, got %s", got)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := NewCircuitBreaker(2, time.Minute, 1)

	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()

	if got := b.State(); got != CircuitStateClosed {
		t.Fatalf("expected closed circuit, got %s", got)
	}
}

func TestCircuitBreaker_HalfOpenProbeBudget(t *testing.T) {
	b := NewCircuitBreaker(1, time.Minute, 1)
	start := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	now := start
	b.now = func() time.Time { return now }

	b.RecordFailure()
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected open, got %v", err)
	}

	now = start.Add(2 * time.Minute)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected probe allowed after timeout, got %v", err)
	}
	// Budget exhausted while the probe is in flight.
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected second probe blocked, got %v", err)
	}

	b.RecordSuccess()
	if got := b.State(); got != CircuitStateClosed {
		t.Fatalf("expected closed after probe success, got %s", got)
	}
	if err := b.Allow(); err != nil {
		t.Fatalf("expected traffic after close, got %v", err)
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	b := NewCircuitBreaker(1, time.Minute, 1)
	start := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	now := start
	b.now = func() time.Time { return now }

	b.RecordFailure()
	now = start.Add(2 * time.Minute)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected probe allowed, got %v", err)
	}
	b.RecordFailure()

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected reopened circuit, got %v", err)
	}
}

func TestNormalizeCircuitBreakerConfig(t *testing.T) {
	got := NormalizeCircuitBreakerConfig(CircuitBreakerConfig{Enabled: true})
	if got.FailureThreshold != 5 || got.OpenTimeout != 15*time.Second || got.HalfOpenMaxReq != 2 {
		t.Fatalf("unexpected defaults: %+v", got)
	}

	explicit := CircuitBreakerConfig{Enabled: true, FailureThreshold: 9, OpenTimeout: time.Minute, HalfOpenMaxReq: 3}
	if got := NormalizeCircuitBreakerConfig(explicit); got != explicit {
		t.Fatalf("explicit config altered: %+v", got)
	}
}
