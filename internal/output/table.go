package output

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderBalances renders token positions for a single account.
func RenderBalances(format Format, eoa string, rows []BalanceRow) (string, error) {
	if format == FormatJSON {
		return renderJSON(rows)
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Balances %s", eoa)
	t.AppendHeader(table.Row{"Token", "Address", "Amount"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.Symbol, r.Address, r.Amount})
	}
	return t.Render(), nil
}

// RenderQuote renders a priced swap.
func RenderQuote(format Format, q QuoteResult) (string, error) {
	if format == FormatJSON {
		return renderJSON(q)
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Quote %s (block %d)", q.Flow, q.Block)
	t.AppendHeader(table.Row{"", "Token", "Amount"})
	t.AppendRow(table.Row{"In", q.TokenIn, q.AmountIn})
	t.AppendRow(table.Row{"Out", q.TokenOut, q.AmountOut})
	return t.Render(), nil
}

// RenderSwap renders a simulated swap with before/after positions.
func RenderSwap(format Format, s SwapResult) (string, error) {
	if format == FormatJSON {
		return renderJSON(s)
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Swap %s (simulated, block %d)", s.Quote.Flow, s.Quote.Block)
	t.AppendHeader(table.Row{"Token", "Before", "After"})
	for i, before := range s.Before {
		after := ""
		if i < len(s.After) {
			after = s.After[i].Amount
		}
		t.AppendRow(table.Row{before.Symbol, before.Amount, after})
	}
	t.AppendFooter(table.Row{"", "quoted out", s.Quote.AmountOut})
	return t.Render(), nil
}

// RenderStats renders resilience-layer counters.
func RenderStats(format Format, s StatsResult) (string, error) {
	if format == FormatJSON {
		return renderJSON(s)
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRow(table.Row{"total rpc calls", s.TotalCalls})
	t.AppendRow(table.Row{"calls/sec (last 100)", fmt.Sprintf("%.1f", s.CallsPerSecond)})
	t.AppendRow(table.Row{"throttle delay", s.ThrottleDelay})
	return t.Render(), nil
}

// RenderChecks renders doctor probe outcomes.
func RenderChecks(format Format, checks []Check) (string, error) {
	if format == FormatJSON {
		return renderJSON(checks)
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Check", "Status", "Details"})
	for _, c := range checks {
		status := "ok"
		if !c.OK {
			status = "FAIL"
		}
		t.AppendRow(table.Row{c.Name, status, c.Details})
	}
	return t.Render(), nil
}
