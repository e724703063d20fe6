package cmd

import (
	"context"
	"time"

	"github.com/forkswap/forkswap/internal/fork"
	"github.com/forkswap/forkswap/internal/observability"
	"github.com/forkswap/forkswap/internal/rpc"
)

// newLimiter builds the process-wide rate limiter from configuration.
func newLimiter() *rpc.Limiter {
	minDelay := time.Duration(appConfig.RPC.ThrottleDelay * float64(time.Second))
	var opts []rpc.LimiterOption
	if appConfig.RPC.Debug {
		opts = append(opts, rpc.WithDebug(observability.CLILogger))
	}
	return rpc.NewLimiter(minDelay, opts...)
}

// newPolicy builds the retry policy from configuration.
func newPolicy() rpc.Policy {
	p := rpc.DefaultPolicy()
	p.MaxRetries = appConfig.RPC.Retry.MaxRetries
	p.InitialDelay = appConfig.RPC.Retry.InitialDelay
	p.MaxDelay = appConfig.RPC.Retry.MaxDelay
	p.BackoffFactor = appConfig.RPC.Retry.BackoffFactor
	return p
}

// newSession establishes a protected forked session: throttling installed
// before the connection, re-installed on the live transports afterwards,
// then verified.
func newSession(ctx context.Context) (*fork.Session, error) {
	endpoint, err := appConfig.EndpointURL()
	if err != nil {
		return nil, err
	}
	host, err := appConfig.ProviderHost()
	if err != nil {
		return nil, err
	}

	return fork.Setup(ctx, fork.SetupConfig{
		URL:          endpoint,
		ProviderHost: host,
		Limiter:      newLimiter(),
		Policy:       newPolicy(),
		SettleWait:   appConfig.RPC.SettleWait,
		Log:          observability.CLILogger,
	})
}
