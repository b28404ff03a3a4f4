package uniswap

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/michaelpento.lv/bestroute/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	weth = types.NewToken(1, common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"), 18, "WETH")
	usdc = types.NewToken(1, common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"), 6, "USDC")
	dai  = types.NewToken(1, common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"), 18, "DAI")
)

func bridgedRoute(t *testing.T) *types.Route {
	t.Helper()
	wethDai := types.NewPool(common.HexToAddress("0x01"), weth, dai, FeeMedium)
	daiUsdc := types.NewPool(common.HexToAddress("0x02"), dai, usdc, FeeLowest)
	route, err := types.NewRoute([]*types.Pool{wethDai, daiUsdc}, weth, usdc)
	require.NoError(t, err)
	return route
}

func TestEncodePathExactInputRoundTrip(t *testing.T) {
	route := bridgedRoute(t)

	tokens, fees, err := DecodePath(EncodePath(route, false))
	require.NoError(t, err)

	assert.Equal(t, []common.Address{weth.Address, dai.Address, usdc.Address}, tokens)
	assert.Equal(t, []uint32{FeeMedium, FeeLowest}, fees)
}

func TestEncodePathExactOutputRoundTrip(t *testing.T) {
	route := bridgedRoute(t)

	tokens, fees, err := DecodePath(EncodePath(route, true))
	require.NoError(t, err)

	assert.Equal(t, []common.Address{usdc.Address, dai.Address, weth.Address}, tokens)
	assert.Equal(t, []uint32{FeeLowest, FeeMedium}, fees)
}

func TestEncodePathLayout(t *testing.T) {
	pool := types.NewPool(common.HexToAddress("0x01"), weth, usdc, FeeMedium)
	route, err := types.NewRoute([]*types.Pool{pool}, weth, usdc)
	require.NoError(t, err)

	path := EncodePath(route, false)
	require.Len(t, path, 43)
	assert.Equal(t, weth.Address.Bytes(), path[:20])
	assert.Equal(t, []byte{0x00, 0x0b, 0xb8}, path[20:23])
	assert.Equal(t, usdc.Address.Bytes(), path[23:])
}

func TestEncodePathDeterministic(t *testing.T) {
	route := bridgedRoute(t)
	assert.Equal(t, EncodePath(route, false), EncodePath(route, false))
	assert.Equal(t, EncodePath(route, true), EncodePath(route, true))
	assert.NotEqual(t, EncodePath(route, false), EncodePath(route, true))
}

func TestEncodePathDoesNotMutateRoute(t *testing.T) {
	route := bridgedRoute(t)
	_ = EncodePath(route, true)
	assert.Equal(t, []*types.Token{weth, dai, usdc}, route.Path())
	assert.Equal(t, FeeMedium, route.Pools[0].Fee)
}

func TestDecodePathMalformed(t *testing.T) {
	for _, n := range []int{0, 20, 23, 42, 44} {
		_, _, err := DecodePath(make([]byte, n))
		assert.ErrorIs(t, err, ErrMalformedPath, "length %d", n)
	}
}
