package core

// action_limiter.go bounds how many analyses run at once.
//
// Loading a workbook and building its report holds the whole dataset in
// memory, so the process admits at most a fixed number of analyses. A
// request that cannot get a slot within maxWait fails with
// ErrTooManyAnalyses; shutdown waits for running analyses via WaitForDrain.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyAnalyses is returned when every analysis slot stays occupied
// for the whole wait period.
var ErrTooManyAnalyses = errors.New("too many concurrent analyses, please try again later")

// Limiter defaults.
const (
	DefaultMaxConcurrentAnalyses = 4
	DefaultMaxWaitTime           = 30 * time.Second
)

// ActionLimiter is a counting semaphore with a bounded wait.
type ActionLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
}

// NewActionLimiter allows maxConcurrent simultaneous holders. Non-positive
// arguments select the defaults.
func NewActionLimiter(maxConcurrent int, maxWait time.Duration) *ActionLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentAnalyses
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &ActionLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting at most the configured time. The caller
// must Release a slot it acquired.
func (l *ActionLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyAnalyses
	}
}

// TryAcquire takes a slot only if one is free right now.
func (l *ActionLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return true
	default:
		return false
	}
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *ActionLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

// ActiveCount returns the number of held slots.
func (l *ActionLimiter) ActiveCount() int {
	return int(l.active.Load())
}

// MaxConcurrent returns the slot count.
func (l *ActionLimiter) MaxConcurrent() int {
	return cap(l.slots)
}

// Available returns the number of free slots.
func (l *ActionLimiter) Available() int {
	return cap(l.slots) - len(l.slots)
}

// WaitForDrain blocks until no slot is held or ctx is done.
func (l *ActionLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for l.ActiveCount() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// LimiterStatus is a point-in-time view of an ActionLimiter.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status reports the limiter state for the session endpoint and logs.
func (l *ActionLimiter) Status() LimiterStatus {
	return LimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: l.MaxConcurrent(),
	}
}
