package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/SscSPs/ledger_sync/internal/core/ports/ledger"
)

// DefaultMaxRequestsPerMinute is the remote service's request quota.
const DefaultMaxRequestsPerMinute = 30

// Clock abstracts wall time so the throttle can be tested without sleeping.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// BatchExecutor runs one queued batch against the remote service.
type BatchExecutor interface {
	Execute(ctx context.Context, batch ledger.Batch) error
}

// ThrottledExecutor spaces consecutive batch calls at least one window apart,
// where window = one minute / requests per minute. After each call it blocks for
// whatever part of the window the call did not use. Calls through one executor are
// serialized, so concurrent cycles in this process share the quota.
type ThrottledExecutor struct {
	BaseService
	mu     sync.Mutex
	window time.Duration
	clock  Clock
}

// ThrottleOption configures a ThrottledExecutor.
type ThrottleOption func(*ThrottledExecutor)

// WithClock replaces the wall clock.
func WithClock(clock Clock) ThrottleOption {
	return func(t *ThrottledExecutor) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// NewThrottledExecutor creates a throttle for the given requests-per-minute limit.
func NewThrottledExecutor(ratePerMinute int, opts ...ThrottleOption) (*ThrottledExecutor, error) {
	if ratePerMinute <= 0 {
		return nil, fmt.Errorf("%w: requests per minute must be positive, got %d", apperrors.ErrValidation, ratePerMinute)
	}
	t := &ThrottledExecutor{
		window: time.Minute / time.Duration(ratePerMinute),
		clock:  systemClock{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

var _ BatchExecutor = (*ThrottledExecutor)(nil)

// Window is the minimum spacing between two calls.
func (t *ThrottledExecutor) Window() time.Duration { return t.window }

// Execute runs the batch, then sleeps out the rest of the window. The sleep runs even
// when the call fails, so a failing call still consumes its slot of the quota.
func (t *ThrottledExecutor) Execute(ctx context.Context, batch ledger.Batch) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	start := t.clock.Now()
	err := batch.Execute(ctx)
	elapsed := t.clock.Now().Sub(start)

	if remaining := t.window - elapsed; remaining > 0 {
		t.LogDebug(ctx, "Throttling remote batch call",
			slog.Duration("elapsed", elapsed),
			slog.Duration("delay", remaining))
		t.clock.Sleep(remaining)
	}
	return err
}
