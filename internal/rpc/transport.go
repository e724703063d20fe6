package rpc

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Transport is the narrow capability the resilience layer wraps: one JSON-RPC
// method call against the node provider. Integration code supplies a concrete
// Transport per client shape; the limiter and retry policy only ever decorate
// this interface and never reach into a client's internals.
type Transport interface {
	Send(ctx context.Context, method string, params []any) (json.RawMessage, error)
}

// wrapper is the marker carried by a Transport that already has the
// resilience decoration applied.
type wrapper interface {
	Unwrap() Transport
}

// IsWrapped reports whether t carries the resilience wrapper marker.
func IsWrapped(t Transport) bool {
	_, ok := t.(wrapper)
	return ok
}

// Resilient decorates a Transport with throttling and retry. It carries the
// wrapper marker so installers can detect it and avoid double-wrapping.
type Resilient struct {
	next    Transport
	limiter *Limiter
	policy  Policy
	log     *zap.Logger
}

// WrapTransport decorates t. It is idempotent: a Transport that is already
// wrapped is returned as-is.
func WrapTransport(t Transport, limiter *Limiter, policy Policy, log *zap.Logger) Transport {
	if t == nil {
		return nil
	}
	if IsWrapped(t) {
		return t
	}
	return &Resilient{next: t, limiter: limiter, policy: policy, log: log}
}

// Unwrap returns the undecorated Transport.
func (r *Resilient) Unwrap() Transport { return r.next }

// Send throttles, then attempts the call with retry on rate-limit errors.
func (r *Resilient) Send(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	return Do(r.limiter, r.policy, r.log, func() (json.RawMessage, error) {
		return r.next.Send(ctx, method, params)
	})
}

// TransportSlot is a swappable reference to a Transport. Components that
// fetch provider state route their calls through a slot so the installer can
// splice the resilience wrapper into the path after construction.
type TransportSlot struct {
	mu sync.Mutex
	t  Transport
}

// NewSlot returns a slot initially routing to t.
func NewSlot(t Transport) *TransportSlot {
	return &TransportSlot{t: t}
}

// Transport returns the slot's current target.
func (s *TransportSlot) Transport() Transport {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t
}

// SetTransport replaces the slot's target.
func (s *TransportSlot) SetTransport(t Transport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t = t
}

// Send delegates to the current target.
func (s *TransportSlot) Send(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	t := s.Transport()
	if t == nil {
		return nil, &RPCError{Message: "no transport configured"}
	}
	return t.Send(ctx, method, params)
}

// TransportHolder is implemented by components whose provider fetch path can
// be rewired (the fork environment, its state DB, a bare slot).
type TransportHolder interface {
	Transport() Transport
	SetTransport(Transport)
}
