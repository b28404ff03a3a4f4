package types

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrEmptyRoute     = errors.New("route has no pools")
	ErrBrokenRoute    = errors.New("route pools are not chained")
	ErrCyclicRoute    = errors.New("route visits a token twice")
	ErrNegativeAmount = errors.New("amount is negative")
)

// Token is a fungible asset on a specific chain.
type Token struct {
	ChainID  uint64         `json:"chain_id" yaml:"chain_id"`
	Address  common.Address `json:"address" yaml:"address"`
	Decimals uint8          `json:"decimals" yaml:"decimals"`
	Symbol   string         `json:"symbol" yaml:"symbol"`
}

// NewToken creates a token descriptor
func NewToken(chainID uint64, address common.Address, decimals uint8, symbol string) *Token {
	return &Token{
		ChainID:  chainID,
		Address:  address,
		Decimals: decimals,
		Symbol:   symbol,
	}
}

// Equals reports whether two tokens identify the same asset
func (t *Token) Equals(other *Token) bool {
	if t == nil || other == nil {
		return false
	}
	return t.ChainID == other.ChainID && t.Address == other.Address
}

// SortsBefore orders tokens the way pools order token0 and token1
func (t *Token) SortsBefore(other *Token) bool {
	return bytes.Compare(t.Address.Bytes(), other.Address.Bytes()) < 0
}

func (t *Token) String() string {
	if t == nil {
		return "<nil>"
	}
	if t.Symbol != "" {
		return t.Symbol
	}
	return t.Address.Hex()
}

// Amount is a non-negative quantity of a token in its smallest unit
type Amount struct {
	Token *Token
	raw   *big.Int
}

// NewAmount creates an amount; raw is copied
func NewAmount(token *Token, raw *big.Int) (*Amount, error) {
	if raw == nil {
		raw = new(big.Int)
	}
	if raw.Sign() < 0 {
		return nil, ErrNegativeAmount
	}
	return &Amount{Token: token, raw: new(big.Int).Set(raw)}, nil
}

// MustAmount is NewAmount for constants and tests
func MustAmount(token *Token, raw *big.Int) *Amount {
	a, err := NewAmount(token, raw)
	if err != nil {
		panic(err)
	}
	return a
}

// Raw returns a copy of the amount in smallest units
func (a *Amount) Raw() *big.Int {
	if a.raw == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.raw)
}

// Cmp compares raw quantities, ignoring the token
func (a *Amount) Cmp(other *Amount) int {
	return a.raw.Cmp(other.raw)
}

func (a *Amount) String() string {
	return fmt.Sprintf("%s %s", a.raw.String(), a.Token)
}

// Pool is a liquidity venue between two tokens at a fee tier
type Pool struct {
	Address common.Address
	Token0  *Token
	Token1  *Token
	Fee     uint32
}

// NewPool orders the tokens so Token0 sorts before Token1
func NewPool(address common.Address, tokenA, tokenB *Token, fee uint32) *Pool {
	if tokenB.SortsBefore(tokenA) {
		tokenA, tokenB = tokenB, tokenA
	}
	return &Pool{Address: address, Token0: tokenA, Token1: tokenB, Fee: fee}
}

// Involves reports whether the token is one side of the pool
func (p *Pool) Involves(token *Token) bool {
	return p.Token0.Equals(token) || p.Token1.Equals(token)
}

// Other returns the side of the pool opposite to token
func (p *Pool) Other(token *Token) *Token {
	if p.Token0.Equals(token) {
		return p.Token1
	}
	return p.Token0
}

func (p *Pool) String() string {
	return fmt.Sprintf("%s/%s@%d", p.Token0, p.Token1, p.Fee)
}

// Route is an ordered chain of pools from Input to Output
type Route struct {
	Pools  []*Pool
	Input  *Token
	Output *Token
	path   []*Token
}

// NewRoute validates that the pools connect input to output without revisiting a token
func NewRoute(pools []*Pool, input, output *Token) (*Route, error) {
	if len(pools) == 0 {
		return nil, ErrEmptyRoute
	}

	path := make([]*Token, 0, len(pools)+1)
	path = append(path, input)
	current := input
	for i, pool := range pools {
		if !pool.Involves(current) {
			return nil, fmt.Errorf("pool %d (%s) does not contain %s: %w", i, pool, current, ErrBrokenRoute)
		}
		next := pool.Other(current)
		for _, seen := range path {
			if seen.Equals(next) {
				return nil, fmt.Errorf("token %s repeated at hop %d: %w", next, i, ErrCyclicRoute)
			}
		}
		path = append(path, next)
		current = next
	}
	if !current.Equals(output) {
		return nil, fmt.Errorf("route ends at %s, want %s: %w", current, output, ErrBrokenRoute)
	}

	poolsCopy := make([]*Pool, len(pools))
	copy(poolsCopy, pools)
	return &Route{Pools: poolsCopy, Input: input, Output: output, path: path}, nil
}

// Path returns the token sequence from Input to Output
func (r *Route) Path() []*Token {
	out := make([]*Token, len(r.path))
	copy(out, r.path)
	return out
}

// Hops is the number of pools traversed
func (r *Route) Hops() int {
	return len(r.Pools)
}

// Key is a 64-bit digest of the pools and their traversal direction
func (r *Route) Key() uint64 {
	d := xxhash.New()
	var fee [4]byte
	for i, pool := range r.Pools {
		_, _ = d.Write(r.path[i].Address.Bytes())
		_, _ = d.Write(pool.Address.Bytes())
		binary.BigEndian.PutUint32(fee[:], pool.Fee)
		_, _ = d.Write(fee[:])
	}
	_, _ = d.Write(r.Output.Address.Bytes())
	return d.Sum64()
}

func (r *Route) String() string {
	parts := make([]string, 0, len(r.path)*2)
	for i, token := range r.path {
		parts = append(parts, token.String())
		if i < len(r.Pools) {
			parts = append(parts, fmt.Sprintf("(%d)", r.Pools[i].Fee))
		}
	}
	return strings.Join(parts, " -> ")
}
