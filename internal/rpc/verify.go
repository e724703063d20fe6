package rpc

import "net/http"

// Verify heuristically reports whether throttling protection is active. It
// checks the HTTP fallback transport for the provider-host marker and the
// live fork transport for the wrapper marker. Verification problems are
// never surfaced: if inspection itself is impossible the answer is false.
func Verify(holder TransportHolder, client *http.Client) (active bool) {
	defer func() {
		if recover() != nil {
			active = false
		}
	}()

	if client != nil {
		if rt, ok := client.Transport.(*ThrottledRoundTripper); ok && rt.ProviderHost() != "" {
			return true
		}
	}
	if holder != nil {
		if t := holder.Transport(); t != nil && IsWrapped(t) {
			return true
		}
	}
	return false
}
