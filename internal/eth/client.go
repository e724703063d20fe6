// Package eth integrates go-ethereum with the resilience layer: a
// rpc.Transport adapter over the geth RPC client, plus contract-call helpers
// for the swap demonstrations.
package eth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/forkswap/forkswap/internal/rpc"
)

// Client adapts go-ethereum's rpc.Client to the Transport capability. This
// is the provider-client shape of the resilience layer's bindings.
type Client struct {
	rc *gethrpc.Client
}

var _ rpc.Transport = (*Client)(nil)

// Dial connects to the provider endpoint. When httpClient is non-nil it is
// used for the underlying connection, so a throttled fallback RoundTripper
// installed on it protects this client's calls too.
func Dial(ctx context.Context, url string, httpClient *http.Client) (*Client, error) {
	var opts []gethrpc.ClientOption
	if httpClient != nil {
		opts = append(opts, gethrpc.WithHTTPClient(httpClient))
	}
	rc, err := gethrpc.DialOptions(ctx, url, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial rpc endpoint: %w", err)
	}
	return &Client{rc: rc}, nil
}

// Send performs one JSON-RPC call and returns the raw result.
func (c *Client) Send(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.rc.CallContext(ctx, &out, method, params...); err != nil {
		return nil, err
	}
	return out, nil
}

// Close tears down the underlying connection.
func (c *Client) Close() {
	c.rc.Close()
}
