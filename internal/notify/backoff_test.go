package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// controlled is a helper fake used in tests
type controlled struct {
	calls     int
	succeedOn int   // attempt number that succeeds; 0 means never
	err       error // returned on failure; nil means a generic transient one
}

func (c *controlled) Send(ctx context.Context, alert Alert) error {
	c.calls++
	if c.succeedOn > 0 && c.calls >= c.succeedOn {
		return nil
	}
	if c.err != nil {
		return c.err
	}
	return errors.New("temp")
}

func (c *controlled) Name() string { return "controlled" }

func TestBackoffDoublesPerAttempt(t *testing.T) {
	oldSleep := sleepHook
	durations := make([]time.Duration, 0)
	sleepHook = func(d time.Duration) { durations = append(durations, d) }
	t.Cleanup(func() { sleepHook = oldSleep })

	r := &Retrier{MaxAttempts: 3, BaseDelay: 10 * time.Millisecond, Logger: zerolog.Nop()}
	ctl := &controlled{succeedOn: 3}
	if _, err := r.Send(context.Background(), ctl, testAlert()); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	// we expect two sleep durations (after attempts 1 & 2)
	if len(durations) != 2 {
		t.Fatalf("expected 2 backoff sleeps, got %d", len(durations))
	}
	if durations[0] != 10*time.Millisecond || durations[1] != 20*time.Millisecond {
		t.Fatalf("expected doubling backoff, got %v", durations)
	}
}

func TestBackoffJitterStaysBounded(t *testing.T) {
	oldJitter := retryJitter
	retryJitter = 20 * time.Millisecond
	defer func() { retryJitter = oldJitter }()

	r := &Retrier{BaseDelay: 10 * time.Millisecond, Logger: zerolog.Nop()}
	for attempt := 1; attempt <= 3; attempt++ {
		base := 10 * time.Millisecond * time.Duration(1<<uint(attempt-1))
		d := r.backoffDuration(attempt)
		if d < base || d >= base+retryJitter {
			t.Fatalf("attempt %d: jittered backoff %v outside [%v, %v)", attempt, d, base, base+retryJitter)
		}
	}
}
