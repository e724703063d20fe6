package config

import "time"

// Config is the complete application configuration. Values are resolved in
// three layers: built-in defaults, an optional YAML config file, and
// environment variables (highest precedence).
type Config struct {
	RPC             RPCConfig `mapstructure:"rpc"`
	EtherscanAPIKey string    `mapstructure:"etherscan_api_key"`
	Output          string    `mapstructure:"output"`
}

// RPCConfig controls the provider endpoint and the resilience layer.
type RPCConfig struct {
	// URL is an explicit endpoint override. When empty the endpoint is
	// constructed from InfuraAPIKey.
	URL string `mapstructure:"url"`

	// InfuraAPIKey is the node provider credential (INFURA_API_KEY).
	InfuraAPIKey string `mapstructure:"infura_api_key"`

	// ThrottleDelay is the minimum spacing between RPC calls, in seconds
	// (RPC_THROTTLE_DELAY). The default of 0.005 caps throughput at 200
	// calls/sec, well under Infura's free tier.
	ThrottleDelay float64 `mapstructure:"throttle_delay"`

	// Debug enables resilience-layer diagnostics (RPC_DEBUG).
	Debug bool `mapstructure:"debug"`

	// SettleWait is how long to pause after forking before verifying the
	// installed protection; the fork issues a burst of state fetches during
	// setup that should drain first.
	SettleWait time.Duration `mapstructure:"settle_wait"`

	Retry RetryConfig `mapstructure:"retry"`
}

// RetryConfig mirrors rpc.Policy.
type RetryConfig struct {
	MaxRetries    int           `mapstructure:"max_retries"`
	InitialDelay  time.Duration `mapstructure:"initial_delay"`
	MaxDelay      time.Duration `mapstructure:"max_delay"`
	BackoffFactor float64       `mapstructure:"backoff_factor"`
}
