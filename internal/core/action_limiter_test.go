package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestActionLimiter_AcquireRelease(t *testing.T) {
	limiter := NewActionLimiter(2, time.Second)
	ctx := context.Background()

	if got := limiter.Available(); got != 2 {
		t.Errorf("initial Available = %d, want 2", got)
	}

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}
	if got := limiter.ActiveCount(); got != 2 {
		t.Errorf("ActiveCount = %d, want 2", got)
	}
	if got := limiter.Available(); got != 0 {
		t.Errorf("Available = %d, want 0", got)
	}

	limiter.Release()
	limiter.Release()
	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("after Release, ActiveCount = %d, want 0", got)
	}
}

func TestActionLimiter_TimesOutWhenFull(t *testing.T) {
	limiter := NewActionLimiter(1, 80*time.Millisecond)
	ctx := context.Background()

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	defer limiter.Release()

	start := time.Now()
	err := limiter.Acquire(ctx)
	elapsed := time.Since(start)

	if !errors.Is(err, ErrTooManyAnalyses) {
		t.Errorf("expected ErrTooManyAnalyses, got %v", err)
	}
	if elapsed < 70*time.Millisecond {
		t.Errorf("returned too early: %v", elapsed)
	}
}

func TestActionLimiter_ContextCancellation(t *testing.T) {
	limiter := NewActionLimiter(1, 5*time.Second)
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer limiter.Release()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- limiter.Acquire(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Acquire did not return after cancellation")
	}
}

func TestActionLimiter_Concurrency(t *testing.T) {
	const maxConcurrent = 3
	limiter := NewActionLimiter(maxConcurrent, time.Second)

	var wg sync.WaitGroup
	var peak atomic.Int64
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			defer limiter.Release()

			if n := int64(limiter.ActiveCount()); n > peak.Load() {
				peak.Store(n)
			}
			time.Sleep(5 * time.Millisecond)
		}()
	}
	wg.Wait()

	if p := peak.Load(); p > maxConcurrent {
		t.Errorf("observed %d concurrent holders, max %d", p, maxConcurrent)
	}
	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("final ActiveCount = %d, want 0", got)
	}
}

func TestActionLimiter_TryAcquire(t *testing.T) {
	limiter := NewActionLimiter(1, time.Second)
	if !limiter.TryAcquire() {
		t.Fatal("first TryAcquire should succeed")
	}
	if limiter.TryAcquire() {
		t.Error("second TryAcquire should fail")
	}
	limiter.Release()
	if !limiter.TryAcquire() {
		t.Error("TryAcquire after Release should succeed")
	}
	limiter.Release()
}

func TestActionLimiter_WaitForDrain(t *testing.T) {
	limiter := NewActionLimiter(2, time.Second)
	limiter.TryAcquire()

	done := make(chan error, 1)
	go func() { done <- limiter.WaitForDrain(context.Background()) }()

	select {
	case <-done:
		t.Fatal("WaitForDrain returned while a slot was held")
	case <-time.After(60 * time.Millisecond):
	}

	limiter.Release()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WaitForDrain error: %v", err)
		}
	case <-time.After(time.Second):
		t.Error("WaitForDrain did not return after release")
	}
}

func TestActionLimiter_StatusAndDefaults(t *testing.T) {
	limiter := NewActionLimiter(0, 0)
	if got := limiter.MaxConcurrent(); got != DefaultMaxConcurrentAnalyses {
		t.Errorf("MaxConcurrent = %d, want %d", got, DefaultMaxConcurrentAnalyses)
	}

	limiter.TryAcquire()
	defer limiter.Release()
	st := limiter.Status()
	if st.Active != 1 || st.Available != DefaultMaxConcurrentAnalyses-1 {
		t.Errorf("Status = %+v", st)
	}
}
