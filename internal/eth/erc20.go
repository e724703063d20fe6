package eth

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// erc20ABIJSON covers the read surface the demos need, mirroring the mock
// token definition the original scripts bind at real token addresses.
const erc20ABIJSON = `[
  {"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
  {"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
  {"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"}
]`

var erc20ABI = mustABI(erc20ABIJSON)

// Token is an ERC-20 bound at an on-chain address.
type Token struct {
	contract *Contract
}

// BindToken binds the ERC-20 read interface at addr.
func BindToken(caller Caller, addr common.Address) *Token {
	return &Token{contract: &Contract{Address: addr, abi: erc20ABI, caller: caller}}
}

// Address returns the token's contract address.
func (t *Token) Address() common.Address {
	return t.contract.Address
}

// BalanceOf fetches owner's balance in the token's smallest unit.
func (t *Token) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	values, err := t.contract.Call(ctx, "balanceOf", owner)
	if err != nil {
		return nil, fmt.Errorf("balanceOf %s: %w", t.contract.Address, err)
	}
	balance, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("balanceOf %s: unexpected result type %T", t.contract.Address, values[0])
	}
	return balance, nil
}

// Symbol fetches the token's ticker symbol.
func (t *Token) Symbol(ctx context.Context) (string, error) {
	values, err := t.contract.Call(ctx, "symbol")
	if err != nil {
		return "", fmt.Errorf("symbol %s: %w", t.contract.Address, err)
	}
	symbol, ok := values[0].(string)
	if !ok {
		return "", fmt.Errorf("symbol %s: unexpected result type %T", t.contract.Address, values[0])
	}
	return symbol, nil
}

// Decimals fetches the token's decimal count.
func (t *Token) Decimals(ctx context.Context) (uint8, error) {
	values, err := t.contract.Call(ctx, "decimals")
	if err != nil {
		return 0, fmt.Errorf("decimals %s: %w", t.contract.Address, err)
	}
	decimals, ok := values[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("decimals %s: unexpected result type %T", t.contract.Address, values[0])
	}
	return decimals, nil
}

// FormatUnits renders amount with the given decimal count, e.g. 1500000 with
// 6 decimals renders as "1.5".
func FormatUnits(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	sign := ""
	if amount.Sign() < 0 {
		sign = "-"
	}
	abs := new(big.Int).Abs(amount)
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(abs, scale, new(big.Int))
	if frac.Sign() == 0 {
		return sign + whole.String()
	}
	fracStr := trimTrailingZeros(fmt.Sprintf("%0*s", decimals, frac.String()))
	return sign + whole.String() + "." + fracStr
}

func trimTrailingZeros(s string) string {
	i := len(s)
	for i > 0 && s[i-1] == '0' {
		i--
	}
	return s[:i]
}
