package rpc

import (
	"errors"
	"strings"
	"time"

	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// Policy defines exponential backoff for retryable provider errors. A Policy
// is immutable once constructed; the same literal values are used at every
// call site today.
type Policy struct {
	MaxRetries        int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffFactor     float64
	RetryableStatuses []int

	// sleep is replaced in tests; nil means time.Sleep.
	sleep func(time.Duration)
}

// DefaultPolicy yields the delay sequence 2s, 4s, 8s, 16s, 32s, capped at 60s.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:        5,
		InitialDelay:      2 * time.Second,
		MaxDelay:          60 * time.Second,
		BackoffFactor:     2.0,
		RetryableStatuses: []int{429, 503, 504},
	}
}

// rateLimitIndicators are matched case-insensitively against error text when
// no usable status code is attached to the error.
var rateLimitIndicators = []string{"429", "too many requests", "rate limit"}

// Retryable reports whether err looks like provider rate limiting or
// temporary unavailability.
func (p Policy) Retryable(err error) bool {
	if err == nil {
		return false
	}
	if status, ok := statusCode(err); ok {
		for _, s := range p.RetryableStatuses {
			if s == status {
				return true
			}
		}
	}
	msg := strings.ToLower(err.Error())
	for _, indicator := range rateLimitIndicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}

// statusCode extracts an HTTP status from the error chain.
func statusCode(err error) (int, bool) {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) && rpcErr.StatusCode > 0 {
		return rpcErr.StatusCode, true
	}
	var httpErr gethrpc.HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode > 0 {
		return httpErr.StatusCode, true
	}
	return 0, false
}

// Do runs fn under the limiter and retry policy. The limiter is consulted
// exactly once, before the first attempt; retry sleeps do not re-throttle.
// On a non-retryable failure, or once retries are exhausted, the original
// error is returned unchanged.
func Do[T any](limiter *Limiter, p Policy, log *zap.Logger, fn func() (T, error)) (T, error) {
	if limiter != nil {
		limiter.Throttle()
	}

	sleep := p.sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var zero T
	delay := p.InitialDelay
	for attempt := 0; ; attempt++ {
		out, err := fn()
		if err == nil {
			return out, nil
		}
		if attempt >= p.MaxRetries || !p.Retryable(err) {
			return zero, err
		}

		if log != nil {
			log.Warn("rpc call failed, retrying",
				zap.Int("attempt", attempt+1),
				zap.Int("max_attempts", p.MaxRetries+1),
				zap.Duration("delay", delay),
				zap.Error(err))
		}
		sleep(delay)
		delay = nextDelay(delay, p)
	}
}

func nextDelay(delay time.Duration, p Policy) time.Duration {
	next := time.Duration(float64(delay) * p.BackoffFactor)
	if next > p.MaxDelay {
		next = p.MaxDelay
	}
	return next
}
