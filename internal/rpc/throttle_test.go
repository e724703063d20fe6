package rpc

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock is a deterministic clock whose Sleep advances Now.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	slept []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Slept() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.slept...)
}

func TestThrottleSpacing(t *testing.T) {
	clock := newFakeClock()
	limiter := NewLimiter(10*time.Millisecond, WithClock(clock.Now, clock.Sleep))

	// First admission never sleeps.
	limiter.Throttle()
	require.Empty(t, clock.Slept())

	// Immediate second call waits the full delay.
	limiter.Throttle()
	require.Equal(t, []time.Duration{10 * time.Millisecond}, clock.Slept())

	// A call arriving partway through the window waits the remainder.
	clock.Advance(4 * time.Millisecond)
	limiter.Throttle()
	slept := clock.Slept()
	require.Len(t, slept, 2)
	require.Equal(t, 6*time.Millisecond, slept[1])

	// A call arriving after the window does not wait.
	clock.Advance(20 * time.Millisecond)
	limiter.Throttle()
	require.Len(t, clock.Slept(), 2)
}

func TestThrottleConcurrentSpacing(t *testing.T) {
	clock := newFakeClock()
	minDelay := 5 * time.Millisecond
	limiter := NewLimiter(minDelay, WithClock(clock.Now, clock.Sleep))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			limiter.Throttle()
		}()
	}
	wg.Wait()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	require.Len(t, limiter.ring, 50)
	for i := 1; i < len(limiter.ring); i++ {
		gap := limiter.ring[i].Sub(limiter.ring[i-1])
		require.GreaterOrEqual(t, gap, minDelay, "admissions %d and %d too close", i-1, i)
	}
}

func TestThrottleRingBound(t *testing.T) {
	clock := newFakeClock()
	limiter := NewLimiter(time.Millisecond, WithClock(clock.Now, clock.Sleep))

	for i := 0; i < 250; i++ {
		limiter.Throttle()
	}

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	require.Len(t, limiter.ring, ringSize)
	require.Equal(t, uint64(250), limiter.calls)
	// Oldest entries were evicted first: what remains is strictly increasing.
	for i := 1; i < len(limiter.ring); i++ {
		require.True(t, limiter.ring[i].After(limiter.ring[i-1]))
	}
}

func TestStats(t *testing.T) {
	clock := newFakeClock()
	limiter := NewLimiter(10*time.Millisecond, WithClock(clock.Now, clock.Sleep))

	require.Zero(t, limiter.Stats().TotalCalls)
	require.Zero(t, limiter.Stats().CallsPerSecond)

	for i := 0; i < 11; i++ {
		limiter.Throttle()
	}

	stats := limiter.Stats()
	require.Equal(t, uint64(11), stats.TotalCalls)
	// 10 intervals of 10ms each over the window.
	require.InDelta(t, 100.0, stats.CallsPerSecond, 0.01)
}

func TestThrottleIdleTimeDoesNotAccumulateBurst(t *testing.T) {
	clock := newFakeClock()
	limiter := NewLimiter(10*time.Millisecond, WithClock(clock.Now, clock.Sleep))

	limiter.Throttle()
	clock.Advance(time.Minute)

	// A long idle stretch buys at most one immediate admission; the next
	// call still waits the full spacing.
	limiter.Throttle()
	require.Empty(t, clock.Slept())
	limiter.Throttle()
	require.Equal(t, []time.Duration{10 * time.Millisecond}, clock.Slept())
}

func TestNegativeDelayDisablesSpacing(t *testing.T) {
	clock := newFakeClock()
	limiter := NewLimiter(-time.Second, WithClock(clock.Now, clock.Sleep))

	limiter.Throttle()
	limiter.Throttle()
	require.Empty(t, clock.Slept())
	require.Equal(t, uint64(2), limiter.Stats().TotalCalls)
}
