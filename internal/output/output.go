// Package output renders command results as tables or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Format represents an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// BalanceRow is one token position of the demo account.
type BalanceRow struct {
	Symbol  string `json:"symbol"`
	Address string `json:"address"`
	Amount  string `json:"amount"`
	Raw     string `json:"raw"`
}

// QuoteResult is a priced swap.
type QuoteResult struct {
	Flow      string `json:"flow"`
	TokenIn   string `json:"token_in"`
	TokenOut  string `json:"token_out"`
	AmountIn  string `json:"amount_in"`
	AmountOut string `json:"amount_out"`
	Block     uint64 `json:"block"`
}

// SwapResult is a simulated swap: balances before, the quote, and the
// projected balances after.
type SwapResult struct {
	Quote  QuoteResult  `json:"quote"`
	EOA    string       `json:"eoa"`
	Before []BalanceRow `json:"before"`
	After  []BalanceRow `json:"after"`
}

// StatsResult reports resilience-layer counters.
type StatsResult struct {
	TotalCalls     uint64  `json:"total_calls"`
	CallsPerSecond float64 `json:"calls_per_second"`
	ThrottleDelay  string  `json:"throttle_delay"`
}

// Check is one doctor probe outcome.
type Check struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Details string `json:"details,omitempty"`
}

func renderJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
