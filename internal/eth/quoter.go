package eth

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

const quoterV2ABIJSON = `[
  {"inputs":[{"components":[
      {"name":"tokenIn","type":"address"},
      {"name":"tokenOut","type":"address"},
      {"name":"amountIn","type":"uint256"},
      {"name":"fee","type":"uint24"},
      {"name":"sqrtPriceLimitX96","type":"uint160"}],
    "name":"params","type":"tuple"}],
   "name":"quoteExactInputSingle",
   "outputs":[
      {"name":"amountOut","type":"uint256"},
      {"name":"sqrtPriceX96After","type":"uint160"},
      {"name":"initializedTicksCrossed","type":"uint32"},
      {"name":"gasEstimate","type":"uint256"}],
   "stateMutability":"nonpayable","type":"function"}
]`

const erc4626ABIJSON = `[
  {"inputs":[{"name":"assets","type":"uint256"}],"name":"previewDeposit","outputs":[{"name":"shares","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

var (
	quoterV2ABI = mustABI(quoterV2ABIJSON)
	erc4626ABI  = mustABI(erc4626ABIJSON)
)

// quoteExactInputSingleParams mirrors the QuoterV2 tuple layout.
type quoteExactInputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	AmountIn          *big.Int
	Fee               *big.Int
	SqrtPriceLimitX96 *big.Int
}

// Quoter prices exact-input swaps on Uniswap V3 via the QuoterV2 contract.
type Quoter struct {
	contract *Contract
}

// NewQuoter binds the QuoterV2 contract.
func NewQuoter(caller Caller) *Quoter {
	return &Quoter{contract: &Contract{Address: UniswapQuoterV2, abi: quoterV2ABI, caller: caller}}
}

// QuoteExactInputSingle returns the output amount for swapping amountIn of
// tokenIn into tokenOut through the pool with the given fee tier.
func (q *Quoter) QuoteExactInputSingle(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int, fee int64) (*big.Int, error) {
	values, err := q.contract.Call(ctx, "quoteExactInputSingle", quoteExactInputSingleParams{
		TokenIn:           tokenIn,
		TokenOut:          tokenOut,
		AmountIn:          amountIn,
		Fee:               big.NewInt(fee),
		SqrtPriceLimitX96: new(big.Int),
	})
	if err != nil {
		return nil, fmt.Errorf("quote %s -> %s: %w", tokenIn, tokenOut, err)
	}
	amountOut, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("quote %s -> %s: unexpected result type %T", tokenIn, tokenOut, values[0])
	}
	return amountOut, nil
}

// SavingsVault prices deposits into an ERC-4626 savings vault (sUSDS).
type SavingsVault struct {
	contract *Contract
}

// NewSavingsVault binds the vault at addr.
func NewSavingsVault(caller Caller, addr common.Address) *SavingsVault {
	return &SavingsVault{contract: &Contract{Address: addr, abi: erc4626ABI, caller: caller}}
}

// PreviewDeposit returns the shares minted for depositing assets.
func (v *SavingsVault) PreviewDeposit(ctx context.Context, assets *big.Int) (*big.Int, error) {
	values, err := v.contract.Call(ctx, "previewDeposit", assets)
	if err != nil {
		return nil, fmt.Errorf("previewDeposit %s: %w", v.contract.Address, err)
	}
	shares, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("previewDeposit %s: unexpected result type %T", v.contract.Address, values[0])
	}
	return shares, nil
}

// QuoteUSDTToSUSDS prices the Spark flow: USDT converts 1:1 into USDS
// through the PSM (scaling 6 to 18 decimals), which is then deposited into
// the sUSDS vault.
func QuoteUSDTToSUSDS(ctx context.Context, caller Caller, amountIn *big.Int) (*big.Int, error) {
	usdsOut := new(big.Int).Mul(amountIn, big.NewInt(1_000_000_000_000))
	vault := NewSavingsVault(caller, SUSDS)
	return vault.PreviewDeposit(ctx, usdsOut)
}
