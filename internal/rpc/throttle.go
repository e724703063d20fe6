package rpc

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ringSize bounds the recent-call window used for rate statistics.
const ringSize = 100

// DefaultMinDelay spaces calls at most 200/sec, well under Infura's free
// tier limit of 2,000 credits/sec.
const DefaultMinDelay = 5 * time.Millisecond

// Limiter enforces a minimum spacing between outbound RPC calls. Admission
// is a token bucket of burst 1 refilling once per minDelay, so idle time
// never accumulates into a burst. One Limiter is created per process and
// shared by every transport wrapper, so the spacing holds across all call
// paths regardless of which one originates a request.
type Limiter struct {
	mu       sync.Mutex
	minDelay time.Duration
	bucket   *rate.Limiter
	calls    uint64
	ring     []time.Time

	now   func() time.Time
	sleep func(time.Duration)
	debug bool
	log   *zap.Logger
}

// LimiterOption customizes a Limiter.
type LimiterOption func(*Limiter)

// WithClock substitutes the wall clock, for deterministic tests.
func WithClock(now func() time.Time, sleep func(time.Duration)) LimiterOption {
	return func(l *Limiter) {
		l.now = now
		l.sleep = sleep
	}
}

// WithDebug enables the periodic call-rate diagnostic line.
func WithDebug(log *zap.Logger) LimiterOption {
	return func(l *Limiter) {
		l.debug = true
		l.log = log
	}
}

// NewLimiter returns a Limiter spacing calls at least minDelay apart.
// A non-positive minDelay disables spacing but still records statistics.
func NewLimiter(minDelay time.Duration, opts ...LimiterOption) *Limiter {
	if minDelay < 0 {
		minDelay = 0
	}
	l := &Limiter{
		minDelay: minDelay,
		bucket:   rate.NewLimiter(rate.Every(minDelay), 1),
		ring:     make([]time.Time, 0, ringSize),
		now:      time.Now,
		sleep:    time.Sleep,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// MinDelay returns the configured spacing.
func (l *Limiter) MinDelay() time.Duration {
	return l.minDelay
}

// Throttle blocks until at least the configured delay has passed since the
// previous admitted call. Safe for concurrent use; callers queue on the
// internal lock rather than spinning.
func (l *Limiter) Throttle() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	res := l.bucket.ReserveN(now, 1)
	if wait := res.DelayFrom(now); wait > 0 {
		l.sleep(wait)
	}

	l.calls++

	// Oldest timestamps are evicted once the ring is full.
	l.ring = append(l.ring, l.now())
	if len(l.ring) > ringSize {
		l.ring = l.ring[1:]
	}

	if l.debug && l.log != nil && l.calls%ringSize == 0 {
		l.log.Debug("rpc call rate",
			zap.Uint64("total_calls", l.calls),
			zap.Float64("calls_per_sec", l.rateLocked()))
	}
}

// Stats reports call totals and the effective rate over the recent window.
type Stats struct {
	TotalCalls     uint64  `json:"total_calls"`
	CallsPerSecond float64 `json:"calls_per_second"`
}

// Stats returns a snapshot of the limiter's counters.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{
		TotalCalls:     l.calls,
		CallsPerSecond: l.rateLocked(),
	}
}

// rateLocked computes calls/sec over the ring. Caller must hold l.mu.
func (l *Limiter) rateLocked() float64 {
	if len(l.ring) < 2 {
		return 0
	}
	span := l.ring[len(l.ring)-1].Sub(l.ring[0]).Seconds()
	if span <= 0 {
		return 0
	}
	return float64(len(l.ring)-1) / span
}
