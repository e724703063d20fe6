package rpc

import (
	"net/http"

	"go.uber.org/zap"
)

// Bindings declares the transport shapes the caller actually uses. Each
// non-zero field is an independent call site: wrapping one does not
// short-circuit the others, since different code paths reach the provider
// through different entry points.
type Bindings struct {
	// Client is the provider RPC client's fetch path.
	Client TransportHolder
	// ForkDB is the fork state database's fetch path, exercised when
	// operating against a forked chain snapshot.
	ForkDB TransportHolder
	// HTTPClient, with ProviderHost, enables the generic HTTP fallback.
	HTTPClient   *http.Client
	ProviderHost string
}

// Report records which call sites were wrapped.
type Report struct {
	Client       bool
	ForkDB       bool
	HTTPFallback bool
}

// Active reports whether any protection is in place.
func (r Report) Active() bool { return r.Client || r.ForkDB || r.HTTPFallback }

// Merge folds in a later report, keeping every site that succeeded at least
// once.
func (r Report) Merge(other Report) Report {
	return Report{
		Client:       r.Client || other.Client,
		ForkDB:       r.ForkDB || other.ForkDB,
		HTTPFallback: r.HTTPFallback || other.HTTPFallback,
	}
}

// Installer applies the resilience wrapper to declared call sites. It is
// safe to invoke repeatedly; already-wrapped sites are left alone.
type Installer struct {
	Limiter *Limiter
	Policy  Policy
	Log     *zap.Logger
}

// Install wraps every call site declared in b and reports which succeeded.
// A missing binding merely disqualifies that candidate; nothing here is ever
// fatal. When no site could be protected a warning is logged so scripts can
// proceed at their own risk.
func (ins *Installer) Install(b Bindings) Report {
	var rep Report
	rep.Client = ins.wrapHolder(b.Client)
	rep.ForkDB = ins.wrapHolder(b.ForkDB)

	if b.HTTPClient != nil && b.ProviderHost != "" {
		if _, already := b.HTTPClient.Transport.(*ThrottledRoundTripper); already {
			rep.HTTPFallback = true
		} else {
			b.HTTPClient.Transport = NewThrottledRoundTripper(
				b.HTTPClient.Transport, ins.Limiter, ins.Policy, b.ProviderHost, ins.Log)
			rep.HTTPFallback = true
		}
	}

	ins.report(rep)
	return rep
}

// InstallLive wraps the live transport resolved from a fork environment.
// Some clients construct their fetch path only after forking, so this must
// run strictly after the fork is established. Idempotent: if the live
// transport is already wrapped this is a no-op that reports success.
func (ins *Installer) InstallLive(holder TransportHolder) (ok bool) {
	// Resolving the live instance walks collaborator state; an unexpected
	// panic there must degrade to "could not patch", never crash the caller.
	defer func() {
		if r := recover(); r != nil {
			ok = false
			if ins.Log != nil {
				ins.Log.Warn("could not patch live rpc transport", zap.Any("panic", r), zap.Stack("stack"))
			}
		}
	}()
	return ins.wrapHolder(holder)
}

// wrapHolder splices the wrapper into a holder's transport path. Returns
// true when the path is protected afterwards, including the already-wrapped
// case.
func (ins *Installer) wrapHolder(h TransportHolder) bool {
	if h == nil {
		return false
	}
	t := h.Transport()
	if t == nil {
		return false
	}
	if IsWrapped(t) {
		return true
	}
	h.SetTransport(WrapTransport(t, ins.Limiter, ins.Policy, ins.Log))
	return true
}

func (ins *Installer) report(rep Report) {
	if ins.Log == nil {
		return
	}
	if !rep.Active() {
		ins.Log.Warn("could not install rpc throttling; calls are NOT rate limited and may hit provider limits")
		return
	}
	maxRate := 0.0
	if ins.Limiter != nil && ins.Limiter.MinDelay() > 0 {
		maxRate = 1 / ins.Limiter.MinDelay().Seconds()
	}
	ins.Log.Info("rpc rate limiting and retry enabled",
		zap.Bool("client", rep.Client),
		zap.Bool("fork_db", rep.ForkDB),
		zap.Bool("http_fallback", rep.HTTPFallback),
		zap.Float64("max_calls_per_sec", maxRate),
		zap.Int("max_retries", ins.Policy.MaxRetries))
}
