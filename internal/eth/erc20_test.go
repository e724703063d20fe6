package eth

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

// fakeCaller answers contract calls from a canned handler.
type fakeCaller struct {
	calls   int
	handler func(to common.Address, data []byte) ([]byte, error)
}

func (f *fakeCaller) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	f.calls++
	return f.handler(to, data)
}

func TestTokenBalanceOf(t *testing.T) {
	owner := common.HexToAddress("0x57757E3D981446D585Af0D9Ae4d7DF6D64647806")
	want := big.NewInt(123456789)

	caller := &fakeCaller{handler: func(to common.Address, data []byte) ([]byte, error) {
		require.Equal(t, WETH, to)
		selector := erc20ABI.Methods["balanceOf"].ID
		require.True(t, bytes.HasPrefix(data, selector))
		return erc20ABI.Methods["balanceOf"].Outputs.Pack(want)
	}}

	token := BindToken(caller, WETH)
	got, err := token.BalanceOf(context.Background(), owner)
	require.NoError(t, err)
	require.Zero(t, want.Cmp(got))
	require.Equal(t, 1, caller.calls)
}

func TestTokenMetadata(t *testing.T) {
	caller := &fakeCaller{handler: func(to common.Address, data []byte) ([]byte, error) {
		switch {
		case bytes.HasPrefix(data, erc20ABI.Methods["symbol"].ID):
			return erc20ABI.Methods["symbol"].Outputs.Pack("USDC")
		case bytes.HasPrefix(data, erc20ABI.Methods["decimals"].ID):
			return erc20ABI.Methods["decimals"].Outputs.Pack(uint8(6))
		default:
			return nil, errors.New("unexpected call")
		}
	}}

	token := BindToken(caller, USDC)

	symbol, err := token.Symbol(context.Background())
	require.NoError(t, err)
	require.Equal(t, "USDC", symbol)

	decimals, err := token.Decimals(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint8(6), decimals)
}

func TestTokenPropagatesCallErrors(t *testing.T) {
	sentinel := errors.New("execution reverted")
	caller := &fakeCaller{handler: func(common.Address, []byte) ([]byte, error) {
		return nil, sentinel
	}}

	token := BindToken(caller, USDT)
	_, err := token.BalanceOf(context.Background(), USDTWhale)
	require.ErrorIs(t, err, sentinel)
}

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   *big.Int
		decimals uint8
		want     string
	}{
		{"whole", big.NewInt(5_000_000), 6, "5"},
		{"fraction", big.NewInt(1_500_000), 6, "1.5"},
		{"small fraction", big.NewInt(42), 6, "0.000042"},
		{"eighteen decimals", new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil), 18, "1"},
		{"nil", nil, 18, "0"},
		{"zero decimals", big.NewInt(7), 0, "7"},
		{"negative whole", big.NewInt(-1_500_000), 6, "-1.5"},
		{"negative below one", big.NewInt(-500_000), 6, "-0.5"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, FormatUnits(tc.amount, tc.decimals))
		})
	}
}
