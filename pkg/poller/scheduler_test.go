package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestBackoffMultiplierSequence(t *testing.T) {
	interval := 10 * time.Second
	scheduler := NewScheduler(interval, func(ctx context.Context) error { return nil })

	failure := errors.New("feed down")

	expected := []float64{2, 4, 8, 12, 12, 12}
	for i, want := range expected {
		wait := scheduler.nextWait(failure)

		got := float64(wait) / float64(interval)
		if got != want {
			t.Errorf("failure %d: multiplier = %v, want %v", i+1, got, want)
		}

		if scheduler.Status().BackoffMultiplier != want {
			t.Errorf("failure %d: status multiplier = %v, want %v", i+1, scheduler.Status().BackoffMultiplier, want)
		}
	}

	// A single success resets straight back to the base interval.
	if wait := scheduler.nextWait(nil); wait != interval {
		t.Errorf("wait after success = %v, want %v", wait, interval)
	}
	if scheduler.Status().BackoffMultiplier != 1 {
		t.Errorf("status multiplier after success = %v, want 1", scheduler.Status().BackoffMultiplier)
	}

	// And failures after a success start doubling from scratch again.
	if wait := scheduler.nextWait(failure); wait != 2*interval {
		t.Errorf("wait after first failure post-success = %v, want %v", wait, 2*interval)
	}
}

func TestLoadingClearsAfterFirstFetch(t *testing.T) {
	scheduler := NewScheduler(time.Second, func(ctx context.Context) error { return nil })

	if !scheduler.Status().Loading {
		t.Error("scheduler should report loading before the first fetch")
	}

	if err := scheduler.runFetch(context.Background(), false); err != nil {
		t.Fatalf("runFetch: %v", err)
	}

	status := scheduler.Status()
	if status.Loading {
		t.Error("loading should clear after the first completed fetch")
	}
	if status.LastError != "" {
		t.Errorf("unexpected error recorded: %s", status.LastError)
	}
	if status.LastFetch.IsZero() {
		t.Error("successful fetch should record a timestamp")
	}
}

func TestFailureKeepsStateAndRecordsError(t *testing.T) {
	failure := errors.New("HTTP 502")
	scheduler := NewScheduler(time.Second, func(ctx context.Context) error { return failure })

	_ = scheduler.runFetch(context.Background(), false)
	scheduler.nextWait(failure)

	status := scheduler.Status()
	if status.LastError != "HTTP 502" {
		t.Errorf("LastError = %q, want %q", status.LastError, "HTTP 502")
	}
	if !status.LastFetch.IsZero() {
		t.Error("failed fetch must not record a fetch timestamp")
	}
}

func TestReloadNowUsesSameHandling(t *testing.T) {
	var calls atomic.Int32
	scheduler := NewScheduler(time.Second, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	// Grow the backoff first so the reload's success visibly resets it.
	scheduler.nextWait(errors.New("down"))
	scheduler.nextWait(errors.New("down"))

	if err := scheduler.ReloadNow(context.Background()); err != nil {
		t.Fatalf("ReloadNow: %v", err)
	}

	if calls.Load() != 1 {
		t.Errorf("expected exactly one fetch, got %d", calls.Load())
	}

	status := scheduler.Status()
	if status.BackoffMultiplier != 1 {
		t.Errorf("reload success should reset backoff, multiplier = %v", status.BackoffMultiplier)
	}
	if status.Reloading {
		t.Error("reloading indicator should clear once the reload completes")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	var calls atomic.Int32
	scheduler := NewScheduler(5*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}

	if calls.Load() == 0 {
		t.Error("expected at least one scheduled fetch")
	}
}

func TestSetIntervalResetsBackoff(t *testing.T) {
	scheduler := NewScheduler(10*time.Second, func(ctx context.Context) error { return nil })

	scheduler.nextWait(errors.New("down"))
	scheduler.nextWait(errors.New("down"))

	scheduler.SetInterval(5 * time.Second)

	if got := scheduler.Status().BackoffMultiplier; got != 1 {
		t.Errorf("multiplier after SetInterval = %v, want 1", got)
	}

	if wait := scheduler.nextWait(errors.New("down")); wait != 10*time.Second {
		t.Errorf("first failure on new interval = %v, want %v", wait, 10*time.Second)
	}
}
