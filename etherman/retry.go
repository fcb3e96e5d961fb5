package etherman

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"
)

const (
	DefaultRequestTimeout  = 10 * time.Second
	DefaultMaxAttempts     = 3
	DefaultInitialInterval = 500 * time.Millisecond
	DefaultMaxInterval     = 8 * time.Second
)

// RetryConfig bounds in-cycle retries against a flaky node. Waits grow
// exponentially from InitialInterval up to the MaxInterval ceiling.
type RetryConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func (rc RetryConfig) withDefaults() RetryConfig {
	if rc.MaxAttempts <= 0 {
		rc.MaxAttempts = DefaultMaxAttempts
	}
	if rc.InitialInterval <= 0 {
		rc.InitialInterval = DefaultInitialInterval
	}
	if rc.MaxInterval <= 0 {
		rc.MaxInterval = DefaultMaxInterval
	}
	return rc
}

// withRetry runs fn up to MaxAttempts times, backing off between attempts.
// Only transient errors are retried; anything else surfaces immediately.
func withRetry(ctx context.Context, op string, rc RetryConfig, fn func(ctx context.Context) error) error {
	rc = rc.withDefaults()

	wait := rc.InitialInterval
	var err error
	for attempt := 1; attempt <= rc.MaxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !IsTransient(err) || attempt == rc.MaxAttempts {
			return err
		}

		logger.WithFields(logger.Fields{
			"op":      op,
			"attempt": attempt,
			"wait":    wait,
		}).Warnf("transient rpc failure, retrying: %v", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		wait *= 2
		if wait > rc.MaxInterval {
			wait = rc.MaxInterval
		}
	}
	return err
}
