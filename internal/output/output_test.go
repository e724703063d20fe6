package output

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"TABLE", FormatTable, false},
		{"json", FormatJSON, false},
		{" json ", FormatJSON, false},
		{"yaml", "", true},
	}
	for _, tc := range tests {
		got, err := ParseFormat(tc.in)
		if tc.wantErr {
			require.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got)
	}
}

func TestRenderBalancesTable(t *testing.T) {
	rows := []BalanceRow{
		{Symbol: "WETH", Address: "0xC02a", Amount: "12.5"},
		{Symbol: "USDC", Address: "0xA0b8", Amount: "1000"},
	}
	out, err := RenderBalances(FormatTable, "0x5775", rows)
	require.NoError(t, err)
	require.Contains(t, out, "WETH")
	require.Contains(t, out, "12.5")
	require.Contains(t, out, "0x5775")
}

func TestRenderStatsJSON(t *testing.T) {
	out, err := RenderStats(FormatJSON, StatsResult{TotalCalls: 42, CallsPerSecond: 99.5, ThrottleDelay: "5ms"})
	require.NoError(t, err)

	var parsed StatsResult
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	require.Equal(t, uint64(42), parsed.TotalCalls)
	require.InDelta(t, 99.5, parsed.CallsPerSecond, 1e-9)
}

func TestRenderChecks(t *testing.T) {
	out, err := RenderChecks(FormatTable, []Check{
		{Name: "throttling", OK: true, Details: "client+fallback"},
		{Name: "connectivity", OK: false, Details: "dial failed"},
	})
	require.NoError(t, err)
	require.Contains(t, out, "throttling")
	require.Contains(t, out, "FAIL")
}
