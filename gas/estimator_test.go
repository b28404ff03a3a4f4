package gas

import (
	"context"
	"errors"
	"math/big"
	"testing"

	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeeSource struct {
	baseFee *big.Int
	tip     *big.Int
	err     error
	calls   int
}

func (f *fakeFeeSource) HeaderByNumber(context.Context, *big.Int) (*gethtypes.Header, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &gethtypes.Header{BaseFee: f.baseFee}, nil
}

func (f *fakeFeeSource) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return f.tip, nil
}

func TestEstimateGasCost(t *testing.T) {
	source := &fakeFeeSource{baseFee: big.NewInt(30_000_000_000), tip: big.NewInt(2_000_000_000)}
	estimator := NewEstimator(source, nil)

	cost, err := estimator.EstimateGasCost(context.Background(), 150_000)
	require.NoError(t, err)
	assert.Equal(t, "4800000000000000", cost.String())

	_, err = estimator.EstimateGasCost(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls, "prices are fetched once and reused")
}

func TestEstimateGasCostWithoutPrices(t *testing.T) {
	estimator := NewEstimator(&fakeFeeSource{err: errors.New("dial tcp: refused")}, nil)

	_, err := estimator.EstimateGasCost(context.Background(), 21000)
	assert.ErrorIs(t, err, ErrNoGasPrice)
}

func TestEstimateGasCostPreLondon(t *testing.T) {
	estimator := NewEstimator(&fakeFeeSource{tip: big.NewInt(5)}, nil)

	cost, err := estimator.EstimateGasCost(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(50), cost.Int64())
}

func TestLimitsForChain(t *testing.T) {
	limits := Limits{Default: 1_500_000, Overrides: DefaultQuoteGasOverrides()}

	assert.Equal(t, uint64(1_500_000), limits.ForChain(1))
	assert.Equal(t, uint64(6_000_000), limits.ForChain(ChainOptimism))
	assert.Equal(t, uint64(6_000_000), limits.ForChain(ChainCelo))
	assert.Equal(t, DefaultQuoteGasLimit, Limits{}.ForChain(1))
	assert.Equal(t, DefaultQuoteGasLimit, Limits{Overrides: map[uint64]uint64{1: 0}}.ForChain(1))
}
