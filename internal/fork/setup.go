package fork

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/forkswap/forkswap/internal/eth"
	"github.com/forkswap/forkswap/internal/rpc"
)

// SetupConfig carries everything Setup needs to build a protected session.
type SetupConfig struct {
	URL          string
	ProviderHost string
	Limiter      *rpc.Limiter
	Policy       rpc.Policy
	SettleWait   time.Duration
	Log          *zap.Logger

	// dial and sleep are replaced in tests.
	dial  func(ctx context.Context, url string, httpClient *http.Client) (rpc.Transport, error)
	sleep func(time.Duration)
}

// Session is a fully wired forked session: the environment, the HTTP client
// carrying the fallback protection, and the installation report.
type Session struct {
	Env        *Env
	HTTPClient *http.Client
	Limiter    *rpc.Limiter
	Report     rpc.Report
}

// Setup installs throttling protection, establishes the forked connection,
// re-installs on the live transports, waits for the fork's setup burst to
// settle, then verifies. Installation failures are warnings, never errors:
// the session proceeds unprotected at the caller's risk.
func Setup(ctx context.Context, cfg SetupConfig) (*Session, error) {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	dial := cfg.dial
	if dial == nil {
		dial = func(ctx context.Context, url string, httpClient *http.Client) (rpc.Transport, error) {
			return eth.Dial(ctx, url, httpClient)
		}
	}
	sleep := cfg.sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	installer := &rpc.Installer{Limiter: cfg.Limiter, Policy: cfg.Policy, Log: log}

	// The HTTP fallback goes in before the connection is established so
	// even the dial handshake is protected.
	httpClient := &http.Client{}
	report := installer.Install(rpc.Bindings{
		HTTPClient:   httpClient,
		ProviderHost: cfg.ProviderHost,
	})

	transport, err := dial(ctx, cfg.URL, httpClient)
	if err != nil {
		return nil, err
	}

	clientSlot := rpc.NewSlot(transport)
	report = report.Merge(installer.Install(rpc.Bindings{Client: clientSlot}))

	env, err := Fork(ctx, clientSlot.Transport(), log)
	if err != nil {
		return nil, err
	}

	// Fallback pass: some transports only exist after forking, so resolve
	// the live instances and wrap whatever is not already protected.
	report = report.Merge(rpc.Report{
		Client: installer.InstallLive(env),
		ForkDB: installer.InstallLive(env.DB()),
	})

	// The fork issues a burst of state fetches during setup; let them
	// drain before judging whether protection took hold.
	if cfg.SettleWait > 0 {
		sleep(cfg.SettleWait)
	}

	if rpc.Verify(env, httpClient) {
		log.Info("rpc throttling verified, rate limiting is active")
	} else {
		log.Warn("rpc throttling verification failed, calls may not be throttled")
	}

	return &Session{
		Env:        env,
		HTTPClient: httpClient,
		Limiter:    cfg.Limiter,
		Report:     report,
	}, nil
}
