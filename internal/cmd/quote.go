package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/forkswap/forkswap/internal/eth"
	"github.com/forkswap/forkswap/internal/fork"
	"github.com/forkswap/forkswap/internal/observability"
	"github.com/forkswap/forkswap/internal/output"
)

var quoteCmd = &cobra.Command{
	Use:       "quote [flow]",
	Short:     "Price a swap against the forked state without executing it",
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

		result, err := quoteFlow(ctx, session.Env, f)
		if err != nil {
			return err
		}

		rendered, err := output.RenderQuote(outputFormat, *result)
		if err != nil {
			return err
		}
		printResult(rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(quoteCmd)
}

// quoteFlow prices f's input amount on the forked state.
func quoteFlow(ctx context.Context, env *fork.Env, f flow) (*output.QuoteResult, error) {
	in := eth.BindToken(env, f.tokenIn)
	out := eth.BindToken(env, f.tokenOut)

	inSymbol, inDecimals, err := tokenMeta(ctx, in)
	if err != nil {
		return nil, err
	}
	outSymbol, outDecimals, err := tokenMeta(ctx, out)
	if err != nil {
		return nil, err
	}

	amountOut, err := f.quote(ctx, env, f.amountIn)
	if err != nil {
		return nil, err
	}

	observability.CLILogger.Debug("quoted swap",
		zap.String("flow", f.name),
		zap.String("amount_in", f.amountIn.String()),
		zap.String("amount_out", amountOut.String()))

	return &output.QuoteResult{
		Flow:      f.name,
		TokenIn:   inSymbol,
		TokenOut:  outSymbol,
		AmountIn:  eth.FormatUnits(f.amountIn, inDecimals),
		AmountOut: eth.FormatUnits(amountOut, outDecimals),
		Block:     env.BlockNumber(),
	}, nil
}

func tokenMeta(ctx context.Context, t *eth.Token) (string, uint8, error) {
	symbol, err := t.Symbol(ctx)
	if err != nil {
		return "", 0, err
	}
	decimals, err := t.Decimals(ctx)
	if err != nil {
		return "", 0, err
	}
	return symbol, decimals, nil
}

// flowTokens binds both sides of a flow on the forked state.
func flowTokens(env *fork.Env, f flow) (*eth.Token, *eth.Token) {
	return eth.BindToken(env, f.tokenIn), eth.BindToken(env, f.tokenOut)
}
