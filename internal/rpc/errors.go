package rpc

import "fmt"

// RPCError is returned when the node provider rejects a request, either with
// a non-2xx HTTP status or a JSON-RPC error object.
//
// Message must never include provider credentials.
type RPCError struct {
	StatusCode int // HTTP status, 0 when unknown
	Code       int // JSON-RPC error code, 0 when unknown
	Message    string
}

func (e *RPCError) Error() string {
	if e == nil {
		return "rpc error"
	}
	switch {
	case e.StatusCode > 0 && e.Code != 0:
		return fmt.Sprintf("rpc request failed: status %d (code %d): %s", e.StatusCode, e.Code, e.Message)
	case e.StatusCode > 0:
		return fmt.Sprintf("rpc request failed: status %d: %s", e.StatusCode, e.Message)
	case e.Code != 0:
		return fmt.Sprintf("rpc request failed: code %d: %s", e.Code, e.Message)
	default:
		return fmt.Sprintf("rpc request failed: %s", e.Message)
	}
}
