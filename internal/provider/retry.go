package provider

import (
	"context"
	"errors"
	"math"
	"time"

	"crypto-insight/internal/logger"

	"github.com/sirupsen/logrus"
)

// RetryPolicy retries transient provider failures with capped exponential
// backoff. Status failures are only retried when their code is listed in
// RetryableStatus; timeouts and network errors are always retryable.
type RetryPolicy struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	Multiplier      float64
	MaxDelay        time.Duration
	RetryableStatus map[int]bool

	sleep func(ctx context.Context, d time.Duration) error
	log   *logrus.Entry
}

func NewRetryPolicy(maxAttempts int, initialDelay time.Duration, multiplier float64, maxDelay time.Duration, codes []int) *RetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if multiplier < 1 {
		multiplier = 1
	}
	retryable := make(map[int]bool, len(codes))
	for _, c := range codes {
		retryable[c] = true
	}
	return &RetryPolicy{
		MaxAttempts:     maxAttempts,
		InitialDelay:    initialDelay,
		Multiplier:      multiplier,
		MaxDelay:        maxDelay,
		RetryableStatus: retryable,
		sleep:           sleepContext,
		log:             logger.WithComponent("retry"),
	}
}

// Delay returns the wait after the given failed attempt (1-based).
func (p *RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(attempt-1))
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(d)
}

// Retryable reports whether err should be retried under this policy.
func (p *RetryPolicy) Retryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return p.RetryableStatus[statusErr.StatusCode]
	}
	return Classify(err).Transient()
}

// Do runs call until it succeeds, fails permanently, runs out of attempts or
// ctx is done. The last error is returned.
func (p *RetryPolicy) Do(ctx context.Context, call func(context.Context) error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = call(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !p.Retryable(err) || attempt >= p.MaxAttempts {
			return err
		}

		delay := p.Delay(attempt)
		p.log.WithFields(logrus.Fields{
			"attempt": attempt,
			"backoff": delay,
			"failure": Classify(err),
		}).Debug("retrying provider call")

		if sleepErr := p.sleep(ctx, delay); sleepErr != nil {
			return err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
