package eth

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Caller executes a read-only contract call against pinned chain state. The
// fork environment implements it; tests substitute fakes.
type Caller interface {
	Call(ctx context.Context, to common.Address, data []byte) ([]byte, error)
}

// Contract is a partially loaded contract definition bound to an on-chain
// address: only the ABI is known, never the bytecode.
type Contract struct {
	Address common.Address
	abi     abi.ABI
	caller  Caller
}

// BindContract parses abiJSON and binds it at addr.
func BindContract(caller Caller, abiJSON string, addr common.Address) (*Contract, error) {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, fmt.Errorf("parse contract abi: %w", err)
	}
	return &Contract{Address: addr, abi: parsed, caller: caller}, nil
}

// Call packs method with args, executes it, and unpacks the outputs.
func (c *Contract) Call(ctx context.Context, method string, args ...any) ([]any, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	out, err := c.caller.Call(ctx, c.Address, data)
	if err != nil {
		return nil, err
	}
	values, err := c.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("unpack %s result: %w", method, err)
	}
	return values, nil
}

func mustABI(abiJSON string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		panic(err)
	}
	return parsed
}
