package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Config{MaxAttempts: 5, InitialDelay: time.Hour}, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("success must not retry, got %d calls", calls)
	}
}

func TestDoTransientFailuresThenSuccess(t *testing.T) {
	const transient = 3
	initial := 10 * time.Millisecond

	calls := 0
	start := time.Now()
	err := Do(context.Background(), Config{MaxAttempts: 5, InitialDelay: initial}, func() error {
		calls++
		if calls <= transient {
			return errors.New("rate limited")
		}
		return nil
	})
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != transient+1 {
		t.Fatalf("calls = %d, want %d", calls, transient+1)
	}
	// Cumulative backoff before the (T+1)th attempt: initial * (2^T - 1).
	minElapsed := initial * (1<<transient - 1)
	if elapsed < minElapsed {
		t.Fatalf("elapsed %v, want at least %v of backoff", elapsed, minElapsed)
	}
}

func TestDoExhaustsAttemptsAndPropagatesFinalError(t *testing.T) {
	permanent := errors.New("spreadsheet not found")
	calls := 0
	err := Do(context.Background(), Config{MaxAttempts: 4, InitialDelay: time.Millisecond}, func() error {
		calls++
		return permanent
	})
	if calls != 4 {
		t.Fatalf("calls = %d, want exactly 4", calls)
	}
	if !errors.Is(err, permanent) {
		t.Fatalf("final error must propagate unchanged, got %v", err)
	}
}

func TestDoContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	err := Do(ctx, Config{MaxAttempts: 5, InitialDelay: time.Hour}, func() error {
		calls++
		return errors.New("boom")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 before cancellation", calls)
	}
}

func TestDoValue(t *testing.T) {
	calls := 0
	got, err := DoValue(context.Background(), Config{MaxAttempts: 3, InitialDelay: time.Millisecond}, func() (int, error) {
		calls++
		if calls < 2 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	if err != nil || got != 42 {
		t.Fatalf("got (%d, %v), want (42, nil)", got, err)
	}
}

func TestConfigNormalized(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Config{}, func() error {
		calls++
		return errors.New("boom")
	})
	if calls != 1 {
		t.Fatalf("zero config should mean a single attempt, got %d", calls)
	}
	if err == nil {
		t.Fatal("expected error")
	}
}
