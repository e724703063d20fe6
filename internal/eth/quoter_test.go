package eth

import (
	"bytes"
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestQuoteExactInputSingle(t *testing.T) {
	amountIn := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil) // 1 WETH
	wantOut := big.NewInt(3_200_000_000)                             // 3200 USDC

	caller := &fakeCaller{handler: func(to common.Address, data []byte) ([]byte, error) {
		require.Equal(t, UniswapQuoterV2, to)
		method := quoterV2ABI.Methods["quoteExactInputSingle"]
		require.True(t, bytes.HasPrefix(data, method.ID))

		inputs, err := method.Inputs.Unpack(data[4:])
		require.NoError(t, err)
		require.Len(t, inputs, 1)

		return method.Outputs.Pack(wantOut, new(big.Int), uint32(1), big.NewInt(80_000))
	}}

	quoter := NewQuoter(caller)
	got, err := quoter.QuoteExactInputSingle(context.Background(), WETH, USDC, amountIn, 500)
	require.NoError(t, err)
	require.Zero(t, wantOut.Cmp(got))
}

func TestQuoteUSDTToSUSDS(t *testing.T) {
	amountIn := big.NewInt(100_000_000) // 100 USDT, 6 decimals

	caller := &fakeCaller{handler: func(to common.Address, data []byte) ([]byte, error) {
		require.Equal(t, SUSDS, to)
		method := erc4626ABI.Methods["previewDeposit"]
		require.True(t, bytes.HasPrefix(data, method.ID))

		inputs, err := method.Inputs.Unpack(data[4:])
		require.NoError(t, err)
		assets, ok := inputs[0].(*big.Int)
		require.True(t, ok)
		// 100 USDT scaled 1:1 into 18-decimal USDS.
		want := new(big.Int).Mul(amountIn, big.NewInt(1_000_000_000_000))
		require.Zero(t, want.Cmp(assets))

		// The vault mints slightly fewer shares than assets.
		shares := new(big.Int).Div(new(big.Int).Mul(assets, big.NewInt(97)), big.NewInt(100))
		return method.Outputs.Pack(shares)
	}}

	shares, err := QuoteUSDTToSUSDS(context.Background(), caller, amountIn)
	require.NoError(t, err)
	require.Positive(t, shares.Sign())
}
