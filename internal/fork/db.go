package fork

import (
	"context"
	"encoding/json"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/forkswap/forkswap/internal/rpc"
)

// DB is a read-through cache over remote chain state at the fork block.
// Every miss goes through Fetch, the DB's own provider call path, which the
// installer wraps independently of the client transport.
type DB struct {
	slot  *rpc.TransportSlot
	block string

	mu       sync.Mutex
	balances map[common.Address]*big.Int
	codes    map[common.Address][]byte
	storage  map[common.Address]map[common.Hash]common.Hash
}

var _ rpc.TransportHolder = (*DB)(nil)

// NewDB returns a DB pinned at block.
func NewDB(slot *rpc.TransportSlot, block uint64) *DB {
	return &DB{
		slot:     slot,
		block:    hexutil.EncodeUint64(block),
		balances: make(map[common.Address]*big.Int),
		codes:    make(map[common.Address][]byte),
		storage:  make(map[common.Address]map[common.Hash]common.Hash),
	}
}

// Transport returns the DB's fetch transport.
func (db *DB) Transport() rpc.Transport { return db.slot.Transport() }

// SetTransport rewires the DB's fetch transport.
func (db *DB) SetTransport(t rpc.Transport) { db.slot.SetTransport(t) }

// Fetch performs one raw provider call on the DB's fetch path.
func (db *DB) Fetch(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	return db.slot.Send(ctx, method, params)
}

// Balance returns addr's ETH balance at the fork block, fetching it at most
// once.
func (db *DB) Balance(ctx context.Context, addr common.Address) (*big.Int, error) {
	db.mu.Lock()
	if cached, ok := db.balances[addr]; ok {
		db.mu.Unlock()
		return new(big.Int).Set(cached), nil
	}
	db.mu.Unlock()

	out, err := db.Fetch(ctx, "eth_getBalance", []any{addr.Hex(), db.block})
	if err != nil {
		return nil, err
	}
	balance, err := decodeBigResult(out)
	if err != nil {
		return nil, err
	}

	db.mu.Lock()
	db.balances[addr] = balance
	db.mu.Unlock()
	return new(big.Int).Set(balance), nil
}

// Code returns addr's contract code at the fork block, fetching it at most
// once.
func (db *DB) Code(ctx context.Context, addr common.Address) ([]byte, error) {
	db.mu.Lock()
	if cached, ok := db.codes[addr]; ok {
		db.mu.Unlock()
		return cached, nil
	}
	db.mu.Unlock()

	out, err := db.Fetch(ctx, "eth_getCode", []any{addr.Hex(), db.block})
	if err != nil {
		return nil, err
	}
	code, err := decodeBytesResult(out)
	if err != nil {
		return nil, err
	}

	db.mu.Lock()
	db.codes[addr] = code
	db.mu.Unlock()
	return code, nil
}

// StorageAt returns one storage word of addr at the fork block, fetching it
// at most once.
func (db *DB) StorageAt(ctx context.Context, addr common.Address, key common.Hash) (common.Hash, error) {
	db.mu.Lock()
	if slots, ok := db.storage[addr]; ok {
		if cached, ok := slots[key]; ok {
			db.mu.Unlock()
			return cached, nil
		}
	}
	db.mu.Unlock()

	out, err := db.Fetch(ctx, "eth_getStorageAt", []any{addr.Hex(), key.Hex(), db.block})
	if err != nil {
		return common.Hash{}, err
	}
	word, err := decodeBytesResult(out)
	if err != nil {
		return common.Hash{}, err
	}
	value := common.BytesToHash(word)

	db.mu.Lock()
	if db.storage[addr] == nil {
		db.storage[addr] = make(map[common.Hash]common.Hash)
	}
	db.storage[addr][key] = value
	db.mu.Unlock()
	return value, nil
}

func decodeBigResult(raw json.RawMessage) (*big.Int, error) {
	var hex string
	if err := json.Unmarshal(raw, &hex); err != nil {
		return nil, err
	}
	return hexutil.DecodeBig(hex)
}
