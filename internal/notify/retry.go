package notify

import (
	"context"
	crand "crypto/rand"
	"math/big"
	"time"

	"github.com/rs/zerolog"
)

// Retry defaults, applied when the Retrier fields are left zero.
const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 1 * time.Second
)

// retryJitter adds up to this random duration to backoff (to avoid thundering herd)
var retryJitter = 0 * time.Millisecond

// sleepHook is used in tests to avoid sleeping for real
var sleepHook = time.Sleep

// Retrier resends failed deliveries with exponential backoff: the delay
// before attempt n+1 is BaseDelay doubled n-1 times. Failures marked
// permanent (see Permanent) get exactly one attempt.
type Retrier struct {
	// MaxAttempts per send; zero means 3.
	MaxAttempts int
	// BaseDelay is the wait after the first failure; zero means 1s.
	BaseDelay time.Duration
	// Timeout bounds a single attempt; zero means no per-attempt deadline.
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Send delivers alert through svc, retrying transient failures. It returns
// the number of attempts made and the final error, nil on success. The
// caller's context bounds the whole send: cancellation or an expired
// deadline cuts the remaining retries short.
func (r *Retrier) Send(ctx context.Context, svc Service, alert Alert) (int, error) {
	max := r.maxAttempts()
	name := svc.Name()
	var lastErr error
	for attempt := 1; attempt <= max; attempt++ {
		err := r.sendOnce(ctx, svc, alert)
		if err == nil {
			r.Logger.Debug().Str("service", name).Int("attempt", attempt).Msg("alert delivered")
			return attempt, nil
		}
		lastErr = err
		r.Logger.Warn().Err(err).Str("service", name).Int("attempt", attempt).Msg("delivery attempt failed")
		if IsPermanent(err) {
			return attempt, err
		}
		if attempt < max {
			// context-aware sleep: allow cancellation via ctx, but use sleepHook to speed tests.
			d := r.backoffDuration(attempt)
			dCh := make(chan struct{})
			go func() {
				sleepHook(d)
				close(dCh)
			}()
			select {
			case <-dCh:
				// slept; continue
			case <-ctx.Done():
				return attempt, ctx.Err()
			}
		}
	}
	return max, lastErr
}

// sendOnce runs a single attempt under the per-attempt timeout, if any.
func (r *Retrier) sendOnce(ctx context.Context, svc Service, alert Alert) error {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	return svc.Send(ctx, alert)
}

// backoffDuration returns the computed backoff including optional jitter for the given attempt
func (r *Retrier) backoffDuration(attempt int) time.Duration {
	d := r.baseDelay() * time.Duration(1<<uint(attempt-1))
	if retryJitter > 0 {
		// Use crypto/rand to generate non-predictable jitter for backoff
		max := big.NewInt(int64(retryJitter))
		if n, err := crand.Int(crand.Reader, max); err == nil {
			d += time.Duration(n.Int64())
		}
	}
	return d
}

func (r *Retrier) maxAttempts() int {
	if r.MaxAttempts < 1 {
		return defaultMaxAttempts
	}
	return r.MaxAttempts
}

func (r *Retrier) baseDelay() time.Duration {
	if r.BaseDelay <= 0 {
		return defaultBaseDelay
	}
	return r.BaseDelay
}
