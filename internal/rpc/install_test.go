package rpc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeTransport counts calls and returns a canned result.
type fakeTransport struct {
	calls  atomic.Int64
	result json.RawMessage
	err    error
}

func (f *fakeTransport) Send(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newInstaller() *Installer {
	clock := newFakeClock()
	return &Installer{
		Limiter: NewLimiter(time.Millisecond, WithClock(clock.Now, clock.Sleep)),
		Policy:  DefaultPolicy(),
	}
}

func TestInstallWithNoBindings(t *testing.T) {
	rep := newInstaller().Install(Bindings{})
	require.False(t, rep.Active())
	require.False(t, rep.Client)
	require.False(t, rep.ForkDB)
	require.False(t, rep.HTTPFallback)
}

func TestInstallWrapsDeclaredSites(t *testing.T) {
	ins := newInstaller()
	clientSlot := NewSlot(&fakeTransport{result: json.RawMessage(`"0x1"`)})
	dbSlot := NewSlot(&fakeTransport{result: json.RawMessage(`"0x2"`)})
	httpClient := &http.Client{}

	rep := ins.Install(Bindings{
		Client:       clientSlot,
		ForkDB:       dbSlot,
		HTTPClient:   httpClient,
		ProviderHost: "mainnet.infura.io",
	})

	require.True(t, rep.Active())
	require.True(t, rep.Client)
	require.True(t, rep.ForkDB)
	require.True(t, rep.HTTPFallback)
	require.True(t, IsWrapped(clientSlot.Transport()))
	require.True(t, IsWrapped(dbSlot.Transport()))

	rt, ok := httpClient.Transport.(*ThrottledRoundTripper)
	require.True(t, ok)
	require.Equal(t, "mainnet.infura.io", rt.ProviderHost())
}

func TestInstallLiveIsIdempotent(t *testing.T) {
	ins := newInstaller()
	inner := &fakeTransport{result: json.RawMessage(`"0x1"`)}
	slot := NewSlot(inner)

	require.True(t, ins.InstallLive(slot))
	require.True(t, ins.InstallLive(slot))

	// A single wrapper: unwrapping once lands on the original transport.
	wrapped, ok := slot.Transport().(*Resilient)
	require.True(t, ok)
	require.Same(t, inner, wrapped.Unwrap().(*fakeTransport))
}

func TestInstallLiveWithNilHolder(t *testing.T) {
	require.False(t, newInstaller().InstallLive(nil))
	require.False(t, newInstaller().InstallLive(NewSlot(nil)))
}

func TestWrappedTransportDelegates(t *testing.T) {
	ins := newInstaller()
	inner := &fakeTransport{result: json.RawMessage(`"0x10"`)}
	slot := NewSlot(inner)
	ins.Install(Bindings{Client: slot})

	out, err := slot.Send(context.Background(), "eth_blockNumber", nil)
	require.NoError(t, err)
	require.JSONEq(t, `"0x10"`, string(out))
	require.EqualValues(t, 1, inner.calls.Load())
}

func TestVerify(t *testing.T) {
	require.False(t, Verify(nil, nil))

	// Unwrapped slot and a plain http client: nothing active.
	slot := NewSlot(&fakeTransport{})
	require.False(t, Verify(slot, &http.Client{}))

	// Any one candidate is enough.
	ins := newInstaller()
	httpClient := &http.Client{}
	ins.Install(Bindings{HTTPClient: httpClient, ProviderHost: "mainnet.infura.io"})
	require.True(t, Verify(nil, httpClient))

	ins.Install(Bindings{Client: slot})
	require.True(t, Verify(slot, nil))
}

func TestRoundTripperIgnoresOtherHosts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	clock := newFakeClock()
	limiter := NewLimiter(time.Millisecond, WithClock(clock.Now, clock.Sleep))
	rt := NewThrottledRoundTripper(http.DefaultTransport, limiter, DefaultPolicy(), "mainnet.infura.io", nil)
	client := &http.Client{Transport: rt}

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Zero(t, limiter.Stats().TotalCalls)
}

// fastRetryPolicy keeps backoff sleeps at test scale.
func fastRetryPolicy(maxRetries int) Policy {
	p := DefaultPolicy()
	p.MaxRetries = maxRetries
	p.InitialDelay = time.Millisecond
	p.MaxDelay = 4 * time.Millisecond
	return p
}

func TestRoundTripperRetriesProvider429(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	serverURL, err := url.Parse(server.URL)
	require.NoError(t, err)

	clock := newFakeClock()
	limiter := NewLimiter(time.Millisecond, WithClock(clock.Now, clock.Sleep))
	rt := NewThrottledRoundTripper(http.DefaultTransport, limiter, fastRetryPolicy(5), serverURL.Hostname(), nil)
	client := &http.Client{Transport: rt}

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.EqualValues(t, 3, hits.Load())
	// One throttle admission for the whole request, not one per attempt.
	require.EqualValues(t, 1, limiter.Stats().TotalCalls)
}

func TestRoundTripperReturnsFinal429OnExhaustion(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	serverURL, err := url.Parse(server.URL)
	require.NoError(t, err)

	rt := NewThrottledRoundTripper(http.DefaultTransport, nil, fastRetryPolicy(1), serverURL.Hostname(), nil)
	client := &http.Client{Transport: rt}

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.EqualValues(t, 2, hits.Load())
}

func TestRoundTripperResendsBodyOnRetry(t *testing.T) {
	const payload = `{"jsonrpc":"2.0","method":"eth_blockNumber"}`

	var bodies []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(body))
		if len(bodies) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	serverURL, err := url.Parse(server.URL)
	require.NoError(t, err)

	rt := NewThrottledRoundTripper(http.DefaultTransport, nil, fastRetryPolicy(3), serverURL.Hostname(), nil)
	client := &http.Client{Transport: rt}

	// A one-shot body with no GetBody: the retrying client must buffer it
	// so the second attempt still carries the payload.
	req, err := http.NewRequest(http.MethodPost, server.URL, strings.NewReader(payload))
	require.NoError(t, err)
	req.GetBody = nil

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []string{payload, payload}, bodies)
}

func TestPolicyBackoffSchedule(t *testing.T) {
	backoff := policyBackoff(DefaultPolicy())

	want := []time.Duration{
		2 * time.Second, 4 * time.Second, 8 * time.Second,
		16 * time.Second, 32 * time.Second, 60 * time.Second, 60 * time.Second,
	}
	for attempt, delay := range want {
		require.Equal(t, delay, backoff(0, 0, attempt, nil), "attempt %d", attempt)
	}
}
