// Package health tracks reachability of the storefront's backing API.
//
// Each registered check runs in a background goroutine at a fixed interval.
// Checks use failure/success thresholds to avoid flapping: a check must fail
// consecutively failureThreshold times before being marked unreachable, and
// succeed successThreshold times before being marked reachable again.
package health

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc probes one dependency. It returns nil when the dependency is
// reachable, or an error describing the problem.
type CheckFunc func(ctx context.Context) error

// check holds configuration and runtime state for a single probe.
//
// Concurrency model: run() is called from exactly one goroutine (the ticker),
// so the consecutive counters need no synchronization. The healthy flag and
// lastErr are read from arbitrary goroutines and use atomics.
type check struct {
	name             string
	timeout          time.Duration
	fn               CheckFunc
	failureThreshold int
	successThreshold int

	healthy atomic.Bool
	lastErr atomic.Pointer[error]

	consecutiveFails int
	consecutiveOK    int
}

func (c *check) run(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.fn(checkCtx)
	c.lastErr.Store(&err)

	if err != nil {
		c.consecutiveOK = 0
		c.consecutiveFails++
		if c.consecutiveFails >= c.failureThreshold {
			c.healthy.Store(false)
		}
	} else {
		c.consecutiveFails = 0
		c.consecutiveOK++
		if c.consecutiveOK >= c.successThreshold {
			c.healthy.Store(true)
		}
	}
}

// Watcher runs reachability checks and exposes their combined state.
type Watcher struct {
	mu     sync.Mutex
	checks []*check
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an empty Watcher.
func New() *Watcher {
	return &Watcher{}
}

// Add registers a check. Checks start out assumed reachable until proven
// otherwise. Must be called before Start.
func (w *Watcher) Add(name string, timeout time.Duration, fn CheckFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()

	c := &check{
		name:             name,
		timeout:          timeout,
		fn:               fn,
		failureThreshold: 3,
		successThreshold: 1,
	}
	c.healthy.Store(true)
	w.checks = append(w.checks, c)
}

// Start launches the probe loop. Each check runs once immediately, then every
// interval until Stop is called or ctx is cancelled.
func (w *Watcher) Start(ctx context.Context, interval time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	checks := make([]*check, len(w.checks))
	copy(checks, w.checks)

	go func() {
		defer close(w.done)

		for _, c := range checks {
			c.run(ctx)
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, c := range checks {
					c.run(ctx)
				}
			}
		}
	}()
}

// Stop halts the probe loop and waits for it to finish.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Healthy reports whether every registered check is currently passing.
func (w *Watcher) Healthy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, c := range w.checks {
		if !c.healthy.Load() {
			return false
		}
	}
	return true
}

// LastError returns the most recent failure across all checks, or nil when
// everything is reachable.
func (w *Watcher) LastError() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, c := range w.checks {
		if c.healthy.Load() {
			continue
		}
		if p := c.lastErr.Load(); p != nil && *p != nil {
			return *p
		}
	}
	return nil
}
