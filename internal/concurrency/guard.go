// Package concurrency provides the process-wide lock that serializes every
// mutating operation.
package concurrency

import (
	"context"
	"errors"
	"sync"
	"time"

	"approvalflow/internal/apperror"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/semaphore"
)

// DefaultTimeout bounds the wait for the lock.
const DefaultTimeout = 30 * time.Second

var (
	lockWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "approvals",
		Subsystem: "lock",
		Name:      "wait_seconds",
		Help:      "Time spent waiting for the global mutation lock.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 9),
	})
	lockTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "approvals",
		Subsystem: "lock",
		Name:      "timeouts_total",
		Help:      "Total number of mutation lock acquisitions that timed out.",
	})
)

// Guard serializes mutating operations.
type Guard interface {
	// Acquire blocks until the lock is held, the timeout elapses or ctx is
	// done. On failure it returns an apperror.Busy and nothing is held.
	Acquire(ctx context.Context) (release func(), err error)
}

// GlobalLock is a single non-reentrant lock with a bounded wait.
type GlobalLock struct {
	sem     *semaphore.Weighted
	timeout time.Duration
}

func NewGlobalLock(timeout time.Duration) *GlobalLock {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GlobalLock{sem: semaphore.NewWeighted(1), timeout: timeout}
}

func (g *GlobalLock) Acquire(ctx context.Context) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	err := g.sem.Acquire(waitCtx, 1)
	lockWait.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			lockTimeouts.Inc()
		}
		return nil, apperror.Busy("system busy, please try again")
	}

	var once sync.Once
	return func() {
		once.Do(func() { g.sem.Release(1) })
	}, nil
}
