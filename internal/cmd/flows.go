package cmd

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/forkswap/forkswap/internal/eth"
	"github.com/forkswap/forkswap/internal/fork"
)

// flow is one swap demonstration: an input token held by a whale account
// and a quote function pricing the output.
type flow struct {
	name     string
	tokenIn  common.Address
	tokenOut common.Address
	whale    common.Address
	amountIn *big.Int
	quote    func(ctx context.Context, env *fork.Env, amountIn *big.Int) (*big.Int, error)
}

// flows mirror the original demonstration scripts: "direct" swaps WETH into
// USDC through Uniswap V3, "spark" swaps USDT into sUSDS through the PSM and
// savings vault.
var flows = map[string]flow{
	"direct": {
		name:     "direct",
		tokenIn:  eth.WETH,
		tokenOut: eth.USDC,
		whale:    eth.WETHWhale,
		amountIn: new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil), // 1 WETH
		quote: func(ctx context.Context, env *fork.Env, amountIn *big.Int) (*big.Int, error) {
			return eth.NewQuoter(env).QuoteExactInputSingle(ctx, eth.WETH, eth.USDC, amountIn, 500)
		},
	},
	"spark": {
		name:     "spark",
		tokenIn:  eth.USDT,
		tokenOut: eth.SUSDS,
		whale:    eth.USDTWhale,
		amountIn: big.NewInt(100_000_000), // 100 USDT
		quote: func(ctx context.Context, env *fork.Env, amountIn *big.Int) (*big.Int, error) {
			return eth.QuoteUSDTToSUSDS(ctx, env, amountIn)
		},
	},
}

func flowByName(name string) (flow, error) {
	f, ok := flows[name]
	if !ok {
		return flow{}, fmt.Errorf("unknown flow %q (expected direct or spark)", name)
	}
	return f, nil
}

func flowNames() []string {
	return []string{"direct", "spark"}
}
