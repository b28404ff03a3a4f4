package routing

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru"
	"github.com/michaelpento.lv/bestroute/dex"
	"github.com/michaelpento.lv/bestroute/types"
	"go.uber.org/zap"
)

const (
	// DefaultMaxHops allows direct pools and routes bridged through one intermediate token
	DefaultMaxHops = 2
	// MaxHopsLimit caps the search so the number of quote requests stays small
	MaxHopsLimit = 3
)

// Enumerator builds every route between two tokens through a pool snapshot
type Enumerator struct {
	maxHops int
	cache   *lru.Cache
	logger  *zap.Logger
}

// NewEnumerator creates an enumerator exploring routes of at most maxHops pools
func NewEnumerator(maxHops int, cacheSize int, logger *zap.Logger) (*Enumerator, error) {
	if maxHops < 1 || maxHops > MaxHopsLimit {
		return nil, fmt.Errorf("max hops must be between 1 and %d, got %d", MaxHopsLimit, maxHops)
	}

	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Enumerator{
		maxHops: maxHops,
		cache:   cache,
		logger:  logger,
	}, nil
}

// MaxHops returns the configured hop bound
func (e *Enumerator) MaxHops() int {
	return e.maxHops
}

// Enumerate returns all routes from tokenIn to tokenOut and whether the snapshot was still loading.
// A loading snapshot yields no routes; the caller must not treat that as authoritative.
// Routes come back in pool order, which the selector uses only for tie-breaking.
func (e *Enumerator) Enumerate(tokenIn, tokenOut *types.Token, snapshot dex.PoolSnapshot) ([]*types.Route, bool) {
	if tokenIn == nil || tokenOut == nil {
		return nil, false
	}
	if snapshot.Loading {
		return nil, true
	}
	if tokenIn.Equals(tokenOut) {
		return nil, false
	}

	key := e.cacheKey(tokenIn, tokenOut, snapshot.Pools)
	if cached, ok := e.cache.Get(key); ok {
		return cloneRoutes(cached.([]*types.Route)), false
	}

	var routes []*types.Route
	e.walk(tokenIn, tokenOut, snapshot.Pools, nil, []*types.Token{tokenIn}, e.maxHops, &routes)
	routes = dedupe(routes)

	e.logger.Debug("Enumerated routes",
		zap.String("token_in", tokenIn.String()),
		zap.String("token_out", tokenOut.String()),
		zap.Int("pools", len(snapshot.Pools)),
		zap.Int("routes", len(routes)))

	e.cache.Add(key, routes)
	return cloneRoutes(routes), false
}

// walk extends the current path depth first. visited holds every token already on the path.
func (e *Enumerator) walk(current, tokenOut *types.Token, pools, path []*types.Pool, visited []*types.Token, hopsLeft int, routes *[]*types.Route) {
	for _, pool := range pools {
		if !pool.Involves(current) || containsPool(path, pool) {
			continue
		}

		next := pool.Other(current)
		candidate := make([]*types.Pool, len(path), len(path)+1)
		copy(candidate, path)
		candidate = append(candidate, pool)

		if next.Equals(tokenOut) {
			route, err := types.NewRoute(candidate, visited[0], tokenOut)
			if err != nil {
				e.logger.Debug("Discarded route", zap.Error(err))
				continue
			}
			*routes = append(*routes, route)
			continue
		}

		if hopsLeft > 1 && !containsToken(visited, next) {
			e.walk(next, tokenOut, pools, candidate, append(visited[:len(visited):len(visited)], next), hopsLeft-1, routes)
		}
	}
}

func (e *Enumerator) cacheKey(tokenIn, tokenOut *types.Token, pools []*types.Pool) uint64 {
	d := xxhash.New()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], tokenIn.ChainID)
	_, _ = d.Write(buf[:])
	_, _ = d.Write(tokenIn.Address.Bytes())
	_, _ = d.Write(tokenOut.Address.Bytes())
	binary.BigEndian.PutUint64(buf[:], uint64(e.maxHops))
	_, _ = d.Write(buf[:])
	for _, pool := range pools {
		_, _ = d.Write(pool.Address.Bytes())
		_, _ = d.Write(pool.Token0.Address.Bytes())
		_, _ = d.Write(pool.Token1.Address.Bytes())
		binary.BigEndian.PutUint32(buf[:4], pool.Fee)
		_, _ = d.Write(buf[:4])
	}
	return d.Sum64()
}

func containsPool(path []*types.Pool, pool *types.Pool) bool {
	for _, p := range path {
		if p == pool || (p.Address == pool.Address && p.Fee == pool.Fee) {
			return true
		}
	}
	return false
}

func containsToken(tokens []*types.Token, token *types.Token) bool {
	for _, t := range tokens {
		if t.Equals(token) {
			return true
		}
	}
	return false
}

// dedupe drops routes that repeat an earlier one, which happens when a snapshot lists a pool twice
func dedupe(routes []*types.Route) []*types.Route {
	seen := make(map[uint64]struct{}, len(routes))
	out := routes[:0]
	for _, route := range routes {
		key := route.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, route)
	}
	return out
}

func cloneRoutes(routes []*types.Route) []*types.Route {
	if len(routes) == 0 {
		return nil
	}
	out := make([]*types.Route, len(routes))
	copy(out, routes)
	return out
}
