// Package config provides centralized configuration for forkswap: built-in
// defaults, an optional YAML config file, and environment variable
// overrides, resolved in that order.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Environment variables honored regardless of config file contents. The
// RPC_* names are kept compatible with the original scripts.
const (
	EnvThrottleDelay = "RPC_THROTTLE_DELAY"
	EnvDebug         = "RPC_DEBUG"
	EnvInfuraAPIKey  = "INFURA_API_KEY"
	EnvRPCURL        = "FORKSWAP_RPC_URL"
	EnvEtherscanKey  = "ETHERSCAN_API_KEY"
)

// Load resolves configuration. cfgFile may be empty, in which case only
// defaults and environment variables apply.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	bindEnv(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", cfgFile, err)
		}
	}

	var cfg Config
	decodeDurations := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, decodeDurations); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("rpc.throttle_delay", 0.005)
	v.SetDefault("rpc.debug", false)
	v.SetDefault("rpc.settle_wait", "1s")
	v.SetDefault("rpc.retry.max_retries", 5)
	v.SetDefault("rpc.retry.initial_delay", "2s")
	v.SetDefault("rpc.retry.max_delay", "60s")
	v.SetDefault("rpc.retry.backoff_factor", 2.0)
	v.SetDefault("output", "table")
}

func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("rpc.throttle_delay", EnvThrottleDelay)
	_ = v.BindEnv("rpc.debug", EnvDebug)
	_ = v.BindEnv("rpc.infura_api_key", EnvInfuraAPIKey)
	_ = v.BindEnv("rpc.url", EnvRPCURL)
	_ = v.BindEnv("etherscan_api_key", EnvEtherscanKey)
}

func validate(cfg *Config) error {
	if cfg.RPC.ThrottleDelay < 0 {
		return fmt.Errorf("rpc.throttle_delay must not be negative, got %v", cfg.RPC.ThrottleDelay)
	}
	if cfg.RPC.Retry.MaxRetries < 0 {
		return fmt.Errorf("rpc.retry.max_retries must not be negative, got %d", cfg.RPC.Retry.MaxRetries)
	}
	if cfg.RPC.Retry.BackoffFactor < 1 {
		return fmt.Errorf("rpc.retry.backoff_factor must be at least 1, got %v", cfg.RPC.Retry.BackoffFactor)
	}
	return nil
}

// EndpointURL resolves the provider endpoint. An explicit URL wins;
// otherwise the Infura mainnet endpoint is constructed from the API key.
// A missing credential is a hard configuration error.
func (c *Config) EndpointURL() (string, error) {
	if u := strings.TrimSpace(c.RPC.URL); u != "" {
		return u, nil
	}
	key := strings.TrimSpace(c.RPC.InfuraAPIKey)
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", EnvInfuraAPIKey)
	}
	return "https://mainnet.infura.io/v3/" + key, nil
}

// ProviderHost returns the hostname of the resolved endpoint, used to scope
// the HTTP fallback protection.
func (c *Config) ProviderHost() (string, error) {
	endpoint, err := c.EndpointURL()
	if err != nil {
		return "", err
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint url: %w", err)
	}
	return u.Hostname(), nil
}
