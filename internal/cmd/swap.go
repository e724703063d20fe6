package cmd

import (
	"context"
	"math/big"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/forkswap/forkswap/internal/eth"
	"github.com/forkswap/forkswap/internal/fork"
	"github.com/forkswap/forkswap/internal/observability"
	"github.com/forkswap/forkswap/internal/output"
)

var swapCmd = &cobra.Command{
	Use:   "swap [flow]",
	Short: "Simulate a swap on the forked state as the whale account",
	Long: `Simulate a swap on the forked state: fetch the whale account's
positions, price the swap, and report the projected positions afterwards.
No transaction is signed or broadcast.`,
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

		result, err := simulateSwap(ctx, session.Env, f)
		if err != nil {
			return err
		}

		rendered, err := output.RenderSwap(outputFormat, *result)
		if err != nil {
			return err
		}
		printResult(rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(swapCmd)
}

// simulateSwap prices f and projects the whale's positions after the trade.
func simulateSwap(ctx context.Context, env *fork.Env, f flow) (*output.SwapResult, error) {
	env.SetEOA(f.whale)
	in, out := flowTokens(env, f)

	inSymbol, inDecimals, err := tokenMeta(ctx, in)
	if err != nil {
		return nil, err
	}
	outSymbol, outDecimals, err := tokenMeta(ctx, out)
	if err != nil {
		return nil, err
	}

	inBalance, err := in.BalanceOf(ctx, env.EOA())
	if err != nil {
		return nil, err
	}
	outBalance, err := out.BalanceOf(ctx, env.EOA())
	if err != nil {
		return nil, err
	}

	amountOut, err := f.quote(ctx, env, f.amountIn)
	if err != nil {
		return nil, err
	}

	projectedIn := new(big.Int).Sub(inBalance, f.amountIn)
	projectedOut := new(big.Int).Add(outBalance, amountOut)

	observability.CLILogger.Debug("simulated swap",
		zap.String("flow", f.name),
		zap.String("eoa", env.EOA().Hex()),
		zap.String("projected_out", projectedOut.String()))

	return &output.SwapResult{
		Quote: output.QuoteResult{
			Flow:      f.name,
			TokenIn:   inSymbol,
			TokenOut:  outSymbol,
			AmountIn:  eth.FormatUnits(f.amountIn, inDecimals),
			AmountOut: eth.FormatUnits(amountOut, outDecimals),
			Block:     env.BlockNumber(),
		},
		EOA: env.EOA().Hex(),
		Before: []output.BalanceRow{
			{Symbol: inSymbol, Address: f.tokenIn.Hex(), Amount: eth.FormatUnits(inBalance, inDecimals), Raw: inBalance.String()},
			{Symbol: outSymbol, Address: f.tokenOut.Hex(), Amount: eth.FormatUnits(outBalance, outDecimals), Raw: outBalance.String()},
		},
		After: []output.BalanceRow{
			{Symbol: inSymbol, Address: f.tokenIn.Hex(), Amount: eth.FormatUnits(projectedIn, inDecimals), Raw: projectedIn.String()},
			{Symbol: outSymbol, Address: f.tokenOut.Hex(), Amount: eth.FormatUnits(projectedOut, outDecimals), Raw: projectedOut.String()},
		},
	}, nil
}
