package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultMaxRetries is the number of additional attempts after the first.
const DefaultMaxRetries = 3

// DefaultRetryDelays is the fixed backoff schedule, indexed by retry number.
var DefaultRetryDelays = []time.Duration{5 * time.Second, 15 * time.Second, 30 * time.Second}

// Operation is a single zero-argument call to the completion service.
type Operation func() (string, error)

// Invoker retries rate-limited completion calls on a fixed, increasing
// schedule. Any other failure propagates immediately; after the schedule is
// exhausted the rate-limit failure itself propagates.
type Invoker struct {
	maxRetries int
	delays     []time.Duration
	logger     *zap.Logger

	// sleep is swapped out in tests to observe delays without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewInvoker creates an invoker. Non-positive maxRetries or an empty delay
// schedule fall back to the defaults.
func NewInvoker(maxRetries int, delays []time.Duration, logger *zap.Logger) *Invoker {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if len(delays) == 0 {
		delays = DefaultRetryDelays
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invoker{
		maxRetries: maxRetries,
		delays:     delays,
		logger:     logger,
		sleep:      sleepWithContext,
	}
}

// Do runs op, retrying only on rate limiting. Each retry is logged with its
// attempt number and delay. The sleep is context-aware so an expired context
// aborts the schedule.
func (in *Invoker) Do(ctx context.Context, op Operation) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= in.maxRetries; attempt++ {
		if attempt > 0 {
			delay := in.delayFor(attempt - 1)
			RetriesTotal.Inc()
			in.logger.Warn("rate limited, waiting before retry",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", in.maxRetries),
				zap.Duration("delay", delay))
			if err := in.sleep(ctx, delay); err != nil {
				return "", err
			}
		}

		out, err := op()
		if err == nil {
			return out, nil
		}
		if !IsRateLimit(err) {
			return "", err
		}
		lastErr = err
	}

	RetryExhaustionsTotal.Inc()
	in.logger.Error("rate limit persisted after all retries",
		zap.Int("max_retries", in.maxRetries))
	return "", fmt.Errorf("after %d retries: %w", in.maxRetries, lastErr)
}

// delayFor returns the schedule entry for the given retry, reusing the last
// entry when retries outnumber the schedule.
func (in *Invoker) delayFor(retry int) time.Duration {
	if retry >= len(in.delays) {
		return in.delays[len(in.delays)-1]
	}
	return in.delays[retry]
}

// sleepWithContext sleeps for d, returning early if ctx is cancelled.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
