// Package fork establishes a forked view of mainnet: a connection pinned to
// a single block whose state is fetched lazily from the node provider and
// cached locally.
package fork

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"github.com/forkswap/forkswap/internal/rpc"
)

// Env is the forked execution environment: a pinned block, a settable
// externally owned account, and the live transport every call flows through.
type Env struct {
	slot  *rpc.TransportSlot
	db    *DB
	eoa   common.Address
	block uint64
	log   *zap.Logger
}

var _ rpc.TransportHolder = (*Env)(nil)

// Fork pins the provider's current head block and builds the lazily fetched
// state view at that block.
func Fork(ctx context.Context, t rpc.Transport, log *zap.Logger) (*Env, error) {
	if log == nil {
		log = zap.NewNop()
	}
	slot := rpc.NewSlot(t)

	out, err := slot.Send(ctx, "eth_blockNumber", nil)
	if err != nil {
		return nil, fmt.Errorf("fork: fetch head block: %w", err)
	}
	block, err := decodeUint64Result(out)
	if err != nil {
		return nil, fmt.Errorf("fork: decode head block: %w", err)
	}

	env := &Env{
		slot:  slot,
		db:    NewDB(rpc.NewSlot(t), block),
		block: block,
		log:   log,
	}
	log.Info("forked chain state", zap.Uint64("block", block))
	return env, nil
}

// SetEOA sets the externally owned account the demos operate as.
func (e *Env) SetEOA(addr common.Address) { e.eoa = addr }

// EOA returns the current externally owned account.
func (e *Env) EOA() common.Address { return e.eoa }

// BlockNumber returns the pinned fork block.
func (e *Env) BlockNumber() uint64 { return e.block }

// BlockTag returns the pinned block as a JSON-RPC block parameter.
func (e *Env) BlockTag() string { return hexutil.EncodeUint64(e.block) }

// DB returns the fork's state database.
func (e *Env) DB() *DB { return e.db }

// Transport returns the env's live transport.
func (e *Env) Transport() rpc.Transport { return e.slot.Transport() }

// SetTransport rewires the env's live transport.
func (e *Env) SetTransport(t rpc.Transport) { e.slot.SetTransport(t) }

// Call executes a read-only contract call at the pinned block. It satisfies
// eth.Caller, so contracts bound through the env hit the forked state.
func (e *Env) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	call := map[string]any{"to": to.Hex(), "data": hexutil.Encode(data)}
	if e.eoa != (common.Address{}) {
		call["from"] = e.eoa.Hex()
	}
	params := []any{call, e.BlockTag()}
	out, err := e.slot.Send(ctx, "eth_call", params)
	if err != nil {
		return nil, err
	}
	return decodeBytesResult(out)
}

func decodeUint64Result(raw json.RawMessage) (uint64, error) {
	var hex string
	if err := json.Unmarshal(raw, &hex); err != nil {
		return 0, err
	}
	return hexutil.DecodeUint64(hex)
}

func decodeBytesResult(raw json.RawMessage) ([]byte, error) {
	var hex string
	if err := json.Unmarshal(raw, &hex); err != nil {
		return nil, err
	}
	return hexutil.Decode(hex)
}
