package uniswap

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/michaelpento.lv/bestroute/dex"
	"github.com/michaelpento.lv/bestroute/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCaller struct {
	calls []ethereum.CallMsg
	block []*big.Int
	fn    func(call ethereum.CallMsg) ([]byte, error)
}

func (f *fakeCaller) CallContract(_ context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	f.calls = append(f.calls, call)
	f.block = append(f.block, blockNumber)
	return f.fn(call)
}

func TestQuoterV2ExactInput(t *testing.T) {
	route := bridgedRoute(t)
	path := EncodePath(route, false)

	caller := &fakeCaller{}
	quoter, err := NewQuoter(caller, MainnetQuoterV2, 2)
	require.NoError(t, err)

	caller.fn = func(call ethereum.CallMsg) ([]byte, error) {
		method := quoter.abi.Methods["quoteExactInput"]
		require.Equal(t, method.ID, call.Data[:4])
		args, err := method.Inputs.Unpack(call.Data[4:])
		require.NoError(t, err)
		assert.Equal(t, path, args[0])
		assert.Equal(t, big.NewInt(10), args[1])
		return method.Outputs.Pack(big.NewInt(100), []*big.Int{big.NewInt(1), big.NewInt(2)}, []uint32{1, 0}, big.NewInt(120000))
	}

	resp, err := quoter.Quote(context.Background(), dex.QuoteRequest{
		Path:        path,
		Amount:      big.NewInt(10),
		TradeType:   types.ExactInput,
		GasLimit:    2_000_000,
		BlockNumber: 42,
	})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), resp.Amount)
	assert.Equal(t, uint64(120000), resp.GasEstimate)

	require.Len(t, caller.calls, 1)
	assert.Equal(t, uint64(2_000_000), caller.calls[0].Gas)
	assert.Equal(t, MainnetQuoterV2, *caller.calls[0].To)
	assert.Equal(t, big.NewInt(42), caller.block[0])
}

func TestQuoterV2ExactOutputUsesExactOutputMethod(t *testing.T) {
	caller := &fakeCaller{}
	quoter, err := NewQuoter(caller, MainnetQuoterV2, 2)
	require.NoError(t, err)

	caller.fn = func(call ethereum.CallMsg) ([]byte, error) {
		method := quoter.abi.Methods["quoteExactOutput"]
		require.Equal(t, method.ID, call.Data[:4])
		return method.Outputs.Pack(big.NewInt(7), []*big.Int{}, []uint32{}, big.NewInt(90000))
	}

	resp, err := quoter.Quote(context.Background(), dex.QuoteRequest{
		Path:      EncodePath(bridgedRoute(t), true),
		Amount:    big.NewInt(100),
		TradeType: types.ExactOutput,
	})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(7), resp.Amount)
	assert.Nil(t, caller.block[0], "zero block number means latest")
}

func TestQuoterV1HasNoGasEstimate(t *testing.T) {
	caller := &fakeCaller{}
	quoter, err := NewQuoter(caller, MainnetQuoterV1, 1)
	require.NoError(t, err)

	caller.fn = func(call ethereum.CallMsg) ([]byte, error) {
		return quoter.abi.Methods["quoteExactInput"].Outputs.Pack(big.NewInt(55))
	}

	resp, err := quoter.Quote(context.Background(), dex.QuoteRequest{
		Path:      EncodePath(bridgedRoute(t), false),
		Amount:    big.NewInt(1),
		TradeType: types.ExactInput,
	})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(55), resp.Amount)
	assert.Zero(t, resp.GasEstimate)
}

func TestQuoterFailures(t *testing.T) {
	revert := errors.New("execution reverted")

	tests := []struct {
		name string
		fn   func(call ethereum.CallMsg) ([]byte, error)
		want error
	}{
		{"revert", func(ethereum.CallMsg) ([]byte, error) { return nil, revert }, revert},
		{"empty", func(ethereum.CallMsg) ([]byte, error) { return []byte{}, nil }, ErrEmptyResult},
		{"garbage", func(ethereum.CallMsg) ([]byte, error) { return []byte{0x01, 0x02}, nil }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quoter, err := NewQuoter(&fakeCaller{fn: tt.fn}, MainnetQuoterV2, 2)
			require.NoError(t, err)

			resp, err := quoter.Quote(context.Background(), dex.QuoteRequest{
				Path:   EncodePath(bridgedRoute(t), false),
				Amount: big.NewInt(1),
			})
			assert.Nil(t, resp)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestNewQuoterRejectsUnknownVersion(t *testing.T) {
	_, err := NewQuoter(&fakeCaller{}, MainnetQuoterV2, 3)
	assert.Error(t, err)
}
