package rpc

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

var _ http.RoundTripper = (*ThrottledRoundTripper)(nil)

// ThrottledRoundTripper is the last-resort protection: it throttles and
// retries HTTP requests bound for the node provider at the transport level,
// below whatever client library issues them. Requests to any other host pass
// through unmodified.
type ThrottledRoundTripper struct {
	next         http.RoundTripper
	limiter      *Limiter
	policy       Policy
	providerHost string
	log          *zap.Logger
	retrier      *retryablehttp.Client
}

// NewThrottledRoundTripper wraps next. providerHost selects which requests
// are protected; it is matched against the request host exactly or as a
// parent domain suffix.
func NewThrottledRoundTripper(next http.RoundTripper, limiter *Limiter, policy Policy, providerHost string, log *zap.Logger) *ThrottledRoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}

	retrier := retryablehttp.NewClient()
	retrier.HTTPClient = &http.Client{Transport: next}
	retrier.Logger = nil
	retrier.RetryMax = policy.MaxRetries
	retrier.RetryWaitMin = policy.InitialDelay
	retrier.RetryWaitMax = policy.MaxDelay
	retrier.CheckRetry = checkRateLimited(policy)
	retrier.Backoff = policyBackoff(policy)
	// Hand the final response back instead of a synthetic "giving up"
	// error, so the caller sees the provider's own 429.
	retrier.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if log != nil {
		retrier.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
			if attempt > 0 {
				log.Warn("provider request rate limited, retrying",
					zap.Int("attempt", attempt+1),
					zap.Int("max_attempts", policy.MaxRetries+1),
					zap.String("host", req.URL.Hostname()))
			}
		}
	}

	return &ThrottledRoundTripper{
		next:         next,
		limiter:      limiter,
		policy:       policy,
		providerHost: strings.ToLower(strings.TrimSpace(providerHost)),
		log:          log,
		retrier:      retrier,
	}
}

// ProviderHost returns the protected host. It doubles as the inspectable
// marker the verifier looks for.
func (t *ThrottledRoundTripper) ProviderHost() string { return t.providerHost }

// matches reports whether u targets the protected provider.
func (t *ThrottledRoundTripper) matches(u *url.URL) bool {
	if t.providerHost == "" || u == nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == t.providerHost || strings.HasSuffix(host, "."+t.providerHost)
}

// RoundTrip throttles matched requests and hands them to the retrying
// client, which buffers the body so every retried attempt resends the full
// payload. The limiter is consulted once per request, not per attempt. On
// exhaustion the final 429 response is returned so the caller sees the
// provider's answer, not a synthetic error. Non-matching requests are
// forwarded untouched.
func (t *ThrottledRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if !t.matches(req.URL) {
		return t.next.RoundTrip(req)
	}

	if t.limiter != nil {
		t.limiter.Throttle()
	}

	rreq, err := retryablehttp.FromRequest(req)
	if err != nil {
		return nil, err
	}
	return t.retrier.Do(rreq)
}

// checkRateLimited retries on 429 responses and on transport errors the
// policy classifies as rate limiting.
func checkRateLimited(p Policy) retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return p.Retryable(err), nil
		}
		return resp != nil && resp.StatusCode == http.StatusTooManyRequests, nil
	}
}

// policyBackoff reproduces the policy's delay schedule: InitialDelay
// doubled (by BackoffFactor) per attempt, capped at MaxDelay.
func policyBackoff(p Policy) retryablehttp.Backoff {
	return func(_, _ time.Duration, attemptNum int, _ *http.Response) time.Duration {
		delay := p.InitialDelay
		for i := 0; i < attemptNum; i++ {
			delay = nextDelay(delay, p)
		}
		if delay > p.MaxDelay {
			delay = p.MaxDelay
		}
		return delay
	}
}
