package types

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tokenA = NewToken(1, common.HexToAddress("0x000000000000000000000000000000000000000a"), 18, "A")
	tokenB = NewToken(1, common.HexToAddress("0x000000000000000000000000000000000000000b"), 6, "B")
	tokenC = NewToken(1, common.HexToAddress("0x000000000000000000000000000000000000000c"), 18, "C")
)

func TestTokenEquals(t *testing.T) {
	same := NewToken(1, tokenA.Address, 0, "other symbol")
	otherChain := NewToken(10, tokenA.Address, 18, "A")

	assert.True(t, tokenA.Equals(same))
	assert.False(t, tokenA.Equals(otherChain))
	assert.False(t, tokenA.Equals(nil))
	assert.True(t, tokenA.SortsBefore(tokenB))
}

func TestNewAmount(t *testing.T) {
	raw := big.NewInt(100)
	amount, err := NewAmount(tokenA, raw)
	require.NoError(t, err)

	raw.SetInt64(5)
	assert.Equal(t, int64(100), amount.Raw().Int64(), "amount must not alias its input")

	_, err = NewAmount(tokenA, big.NewInt(-1))
	assert.ErrorIs(t, err, ErrNegativeAmount)

	assert.Zero(t, (&Amount{Token: tokenA}).Raw().Sign())
}

func TestNewPoolSortsTokens(t *testing.T) {
	pool := NewPool(common.HexToAddress("0x01"), tokenB, tokenA, 3000)
	assert.Equal(t, tokenA, pool.Token0)
	assert.Equal(t, tokenB, pool.Token1)
	assert.Equal(t, tokenB, pool.Other(tokenA))
	assert.False(t, pool.Involves(tokenC))
}

func TestNewRoute(t *testing.T) {
	ab := NewPool(common.HexToAddress("0x01"), tokenA, tokenB, 3000)
	ac := NewPool(common.HexToAddress("0x02"), tokenA, tokenC, 500)
	cb := NewPool(common.HexToAddress("0x03"), tokenC, tokenB, 500)

	t.Run("direct", func(t *testing.T) {
		route, err := NewRoute([]*Pool{ab}, tokenA, tokenB)
		require.NoError(t, err)
		assert.Equal(t, []*Token{tokenA, tokenB}, route.Path())
		assert.Equal(t, 1, route.Hops())
	})

	t.Run("bridged", func(t *testing.T) {
		route, err := NewRoute([]*Pool{ac, cb}, tokenA, tokenB)
		require.NoError(t, err)
		assert.Equal(t, []*Token{tokenA, tokenC, tokenB}, route.Path())
		assert.Equal(t, "A -> (500) -> C -> (500) -> B", route.String())
	})

	t.Run("empty", func(t *testing.T) {
		_, err := NewRoute(nil, tokenA, tokenB)
		assert.ErrorIs(t, err, ErrEmptyRoute)
	})

	t.Run("broken", func(t *testing.T) {
		_, err := NewRoute([]*Pool{cb}, tokenA, tokenB)
		assert.ErrorIs(t, err, ErrBrokenRoute)

		_, err = NewRoute([]*Pool{ac}, tokenA, tokenB)
		assert.ErrorIs(t, err, ErrBrokenRoute)
	})

	t.Run("cyclic", func(t *testing.T) {
		_, err := NewRoute([]*Pool{ac, ac}, tokenA, tokenA)
		assert.ErrorIs(t, err, ErrCyclicRoute)
	})
}

func TestRouteKey(t *testing.T) {
	ab := NewPool(common.HexToAddress("0x01"), tokenA, tokenB, 3000)
	forward, err := NewRoute([]*Pool{ab}, tokenA, tokenB)
	require.NoError(t, err)
	again, err := NewRoute([]*Pool{ab}, tokenA, tokenB)
	require.NoError(t, err)
	backward, err := NewRoute([]*Pool{ab}, tokenB, tokenA)
	require.NoError(t, err)

	assert.Equal(t, forward.Key(), again.Key())
	assert.NotEqual(t, forward.Key(), backward.Key())
}

func TestTradeTypeBetter(t *testing.T) {
	assert.True(t, ExactInput.Better(big.NewInt(1), nil))
	assert.True(t, ExactInput.Better(big.NewInt(101), big.NewInt(100)))
	assert.False(t, ExactInput.Better(big.NewInt(100), big.NewInt(100)))
	assert.True(t, ExactOutput.Better(big.NewInt(99), big.NewInt(100)))
	assert.False(t, ExactOutput.Better(big.NewInt(100), big.NewInt(100)))
	assert.False(t, ExactOutput.Better(big.NewInt(101), big.NewInt(100)))
}

func TestQuoteResultFlags(t *testing.T) {
	assert.True(t, QuoteResult{Status: QuotePending}.Loading())
	assert.False(t, QuoteResult{Status: QuoteInvalid}.Valid())
	assert.True(t, QuoteResult{Status: QuoteFailure}.Valid())
	assert.False(t, QuoteResult{Status: QuoteFailure}.HasAmount())
	assert.True(t, QuoteResult{Status: QuoteSuccess, Amount: big.NewInt(1)}.HasAmount())
}

func TestTradeComputationConsistency(t *testing.T) {
	trade := &Trade{TradeType: ExactInput}

	for _, c := range []TradeComputation{LoadingComputation(), InvalidComputation(), NoRouteComputation()} {
		assert.Nil(t, c.Trade(), c.State().String())
	}

	valid := FoundComputation(trade, false)
	assert.Equal(t, TradeValid, valid.State())
	assert.Same(t, trade, valid.Trade())

	syncing := FoundComputation(trade, true)
	assert.Equal(t, TradeSyncing, syncing.State())
	assert.Same(t, trade, syncing.Trade())

	assert.Equal(t, TradeNoRouteFound, FoundComputation(nil, true).State())

	var zero TradeComputation
	assert.Equal(t, TradeLoading, zero.State())
	assert.Nil(t, zero.Trade())
}
