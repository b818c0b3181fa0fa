package retrylimit

import (
	"context"
	"errors"
	"testing"
)

func TestWithRetryMaxSucceedsAfterFailures(t *testing.T) {
	attempts := 0
	err := WithRetryMax(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}, nil, 5)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestWithRetryMaxExhaustsAttempts(t *testing.T) {
	sentinel := errors.New("always fails")
	attempts := 0
	err := WithRetryMax(context.Background(), func() error {
		attempts++
		return sentinel
	}, nil, 2)

	if !errors.Is(err, sentinel) {
		t.Errorf("error should wrap the last failure, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestWithRetryMaxStopsOnFatalError(t *testing.T) {
	fatal := &FatalError{Err: errors.New("not configured")}
	attempts := 0
	err := WithRetryMax(context.Background(), func() error {
		attempts++
		return fatal
	}, nil, 5)

	if err != fatal {
		t.Errorf("expected the fatal error back, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestWithRetryMaxHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetryMax(ctx, func() error {
		t.Error("fn should not run with a cancelled context")
		return nil
	}, nil, 3)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestAdaptiveLimiterAdjustsWithinBounds(t *testing.T) {
	lim := NewAdaptiveLimiter(4, 1, 8, 1, 0.5)

	lim.Failure()
	if got := lim.CurrentLimit(); got != 2 {
		t.Errorf("limit after failure = %v, want 2", got)
	}
	lim.Failure()
	lim.Failure()
	lim.Failure()
	if got := lim.CurrentLimit(); got != 1 {
		t.Errorf("limit should not drop below min, got %v", got)
	}
}
