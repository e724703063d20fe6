package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/forkswap/forkswap/internal/eth"
	"github.com/forkswap/forkswap/internal/fork"
	"github.com/forkswap/forkswap/internal/output"
)

var balancesCmd = &cobra.Command{
	Use:       "balances [flow]",
	Short:     "Show the whale account's positions for a flow",
	Args:      cobra.ExactArgs(1),
	ValidArgs: flowNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := flowByName(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		session, err := newSession(ctx)
		if err != nil {
			return err
		}

		rows, err := flowBalances(ctx, session.Env, f)
		if err != nil {
			return err
		}

		rendered, err := output.RenderBalances(outputFormat, f.whale.Hex(), rows)
		if err != nil {
			return err
		}
		printResult(rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(balancesCmd)
}

// flowBalances reads the whale's ETH balance plus both flow token positions
// at the pinned block.
func flowBalances(ctx context.Context, env *fork.Env, f flow) ([]output.BalanceRow, error) {
	env.SetEOA(f.whale)

	ethBalance, err := env.DB().Balance(ctx, f.whale)
	if err != nil {
		return nil, err
	}
	rows := []output.BalanceRow{{
		Symbol: "ETH",
		Amount: eth.FormatUnits(ethBalance, 18),
		Raw:    ethBalance.String(),
	}}

	in, out := flowTokens(env, f)
	for _, t := range []*eth.Token{in, out} {
		symbol, decimals, err := tokenMeta(ctx, t)
		if err != nil {
			return nil, err
		}
		balance, err := t.BalanceOf(ctx, f.whale)
		if err != nil {
			return nil, err
		}
		rows = append(rows, output.BalanceRow{
			Symbol:  symbol,
			Address: t.Address().Hex(),
			Amount:  eth.FormatUnits(balance, decimals),
			Raw:     balance.String(),
		})
	}
	return rows, nil
}
