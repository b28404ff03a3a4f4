package dex

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/michaelpento.lv/bestroute/types"
)

// ContractCaller executes read-only contract calls. *ethclient.Client satisfies it.
type ContractCaller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// BlockNumberer reports the current chain head
type BlockNumberer interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// QuoteRequest is one simulation submitted to an Oracle
type QuoteRequest struct {
	// Path is the encoded route, reversed for exact output
	Path      []byte
	Amount    *big.Int
	TradeType types.TradeType
	GasLimit  uint64
	// BlockNumber pins the simulation; zero means latest
	BlockNumber uint64
}

// QuoteResponse is the opposite leg of the swap and the simulated gas use
type QuoteResponse struct {
	Amount      *big.Int
	GasEstimate uint64
}

// Oracle prices a route without committing a transaction
type Oracle interface {
	Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error)
}

// TokenPair is an unordered pair of tokens that may share pools
type TokenPair [2]*types.Token

// PoolSnapshot is the set of pools currently known for a request.
// Loading is true while the source is still fetching; Pools is then incomplete.
type PoolSnapshot struct {
	Pools   []*types.Pool
	Loading bool
}

// PoolSource exposes the pools available between candidate token pairs
type PoolSource interface {
	Snapshot(ctx context.Context, pairs []TokenPair) PoolSnapshot
}
