package uniswap

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru"
	"github.com/michaelpento.lv/bestroute/dex"
	"github.com/michaelpento.lv/bestroute/types"
	"go.uber.org/zap"
)

// Fee tiers enabled on the canonical factory
const (
	FeeLowest uint32 = 100
	FeeLow    uint32 = 500
	FeeMedium uint32 = 3000
	FeeHigh   uint32 = 10000
)

// DefaultFeeTiers lists every fee tier a pool may be deployed at
var DefaultFeeTiers = []uint32{FeeLowest, FeeLow, FeeMedium, FeeHigh}

const factoryABIJson = `[{
	"inputs": [
		{"name": "tokenA", "type": "address"},
		{"name": "tokenB", "type": "address"},
		{"name": "fee", "type": "uint24"}
	],
	"name": "getPool",
	"outputs": [{"name": "pool", "type": "address"}],
	"stateMutability": "view",
	"type": "function"
}]`

type poolKey struct {
	token0 common.Address
	token1 common.Address
	fee    uint32
}

type lookup struct {
	key    poolKey
	token0 *types.Token
	token1 *types.Token
}

// poolEntry caches a resolved lookup; pool is nil when the factory has no pool for the key
type poolEntry struct {
	pool *types.Pool
}

// PoolRegistry discovers pools through the factory and caches the answers.
// Snapshot never blocks: unresolved lookups run in the background and the
// snapshot reports Loading until they land.
type PoolRegistry struct {
	caller   dex.ContractCaller
	factory  common.Address
	feeTiers []uint32
	timeout  time.Duration
	abi      abi.ABI
	cache    *lru.Cache
	logger   *zap.Logger

	mu       sync.Mutex
	inflight map[poolKey]struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewPoolRegistry creates a registry bound to a factory contract
func NewPoolRegistry(caller dex.ContractCaller, factory common.Address, feeTiers []uint32, cacheSize int, timeout time.Duration, logger *zap.Logger) (*PoolRegistry, error) {
	parsedABI, err := abi.JSON(strings.NewReader(factoryABIJson))
	if err != nil {
		return nil, fmt.Errorf("failed to parse factory ABI: %w", err)
	}

	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	if len(feeTiers) == 0 {
		feeTiers = DefaultFeeTiers
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &PoolRegistry{
		caller:   caller,
		factory:  factory,
		feeTiers: feeTiers,
		timeout:  timeout,
		abi:      parsedABI,
		cache:    cache,
		logger:   logger,
		inflight: make(map[poolKey]struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Snapshot returns the pools resolved so far for the pairs and schedules lookups for the rest
func (r *PoolRegistry) Snapshot(ctx context.Context, pairs []dex.TokenPair) dex.PoolSnapshot {
	var snapshot dex.PoolSnapshot
	for _, lk := range r.lookups(pairs) {
		value, ok := r.cache.Get(lk.key)
		if !ok {
			snapshot.Loading = true
			if ctx.Err() == nil {
				r.fetchAsync(lk)
			}
			continue
		}
		if entry := value.(poolEntry); entry.pool != nil {
			snapshot.Pools = append(snapshot.Pools, entry.pool)
		}
	}
	return snapshot
}

// Load resolves every lookup for the pairs before returning the complete snapshot
func (r *PoolRegistry) Load(ctx context.Context, pairs []dex.TokenPair) (dex.PoolSnapshot, error) {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, lk := range r.lookups(pairs) {
		if r.cache.Contains(lk.key) {
			continue
		}
		wg.Add(1)
		go func(lk lookup) {
			defer wg.Done()
			if err := r.fetch(ctx, lk); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(lk)
	}
	wg.Wait()

	if len(errs) > 0 {
		return dex.PoolSnapshot{}, fmt.Errorf("failed to load pools: %w", errors.Join(errs...))
	}
	return r.Snapshot(ctx, pairs), nil
}

// Close stops background lookups and waits for them to exit
func (r *PoolRegistry) Close() {
	r.cancel()
	r.wg.Wait()
}

func (r *PoolRegistry) lookups(pairs []dex.TokenPair) []lookup {
	seen := make(map[poolKey]struct{}, len(pairs)*len(r.feeTiers))
	out := make([]lookup, 0, len(pairs)*len(r.feeTiers))
	for _, pair := range pairs {
		token0, token1 := pair[0], pair[1]
		if token0 == nil || token1 == nil || token0.Equals(token1) {
			continue
		}
		if token1.SortsBefore(token0) {
			token0, token1 = token1, token0
		}
		for _, fee := range r.feeTiers {
			key := poolKey{token0: token0.Address, token1: token1.Address, fee: fee}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, lookup{key: key, token0: token0, token1: token1})
		}
	}
	return out
}

func (r *PoolRegistry) fetchAsync(lk lookup) {
	r.mu.Lock()
	if _, ok := r.inflight[lk.key]; ok {
		r.mu.Unlock()
		return
	}
	r.inflight[lk.key] = struct{}{}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer func() {
			r.mu.Lock()
			delete(r.inflight, lk.key)
			r.mu.Unlock()
		}()

		ctx := r.ctx
		if r.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}
		if err := r.fetch(ctx, lk); err != nil {
			r.logger.Warn("Pool lookup failed",
				zap.String("token0", lk.token0.String()),
				zap.String("token1", lk.token1.String()),
				zap.Uint32("fee", lk.key.fee),
				zap.Error(err))
		}
	}()
}

func (r *PoolRegistry) fetch(ctx context.Context, lk lookup) error {
	input, err := r.abi.Pack("getPool", lk.key.token0, lk.key.token1, new(big.Int).SetUint64(uint64(lk.key.fee)))
	if err != nil {
		return fmt.Errorf("failed to pack getPool: %w", err)
	}

	output, err := r.caller.CallContract(ctx, ethereum.CallMsg{
		To:   &r.factory,
		Data: input,
	}, nil)
	if err != nil {
		return fmt.Errorf("getPool call failed: %w", err)
	}

	values, err := r.abi.Unpack("getPool", output)
	if err != nil {
		return fmt.Errorf("failed to unpack getPool: %w", err)
	}
	address, ok := values[0].(common.Address)
	if !ok {
		return fmt.Errorf("failed to parse pool address")
	}

	entry := poolEntry{}
	if address != (common.Address{}) {
		entry.pool = types.NewPool(address, lk.token0, lk.token1, lk.key.fee)
	}
	r.cache.Add(lk.key, entry)
	return nil
}
