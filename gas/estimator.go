package gas

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// FeeSource reports the fee market. *ethclient.Client satisfies it.
type FeeSource interface {
	HeaderByNumber(ctx context.Context, number *big.Int) (*gethtypes.Header, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
}

var ErrNoGasPrice = errors.New("gas price not yet known")

// Estimator converts gas units into a cost in wei from the latest base fee and tip
type Estimator struct {
	source       FeeSource
	logger       *zap.Logger
	baseGasPrice *big.Int
	priorityFee  *big.Int
	mu           sync.RWMutex
}

// NewEstimator creates a new gas estimator
func NewEstimator(source FeeSource, logger *zap.Logger) *Estimator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Estimator{
		source: source,
		logger: logger,
	}
}

// Run refreshes gas prices every interval until ctx is done
func (e *Estimator) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.Update(ctx); err != nil {
				e.logger.Error("Failed to update gas prices", zap.Error(err))
			}
		}
	}
}

// Update fetches latest gas prices
func (e *Estimator) Update(ctx context.Context) error {
	header, err := e.source.HeaderByNumber(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to get latest header: %w", err)
	}
	baseFee := header.BaseFee
	if baseFee == nil {
		baseFee = new(big.Int)
	}

	priorityFee, err := e.source.SuggestGasTipCap(ctx)
	if err != nil {
		return fmt.Errorf("failed to get priority fee: %w", err)
	}

	e.mu.Lock()
	e.baseGasPrice = baseFee
	e.priorityFee = priorityFee
	e.mu.Unlock()

	return nil
}

// EstimateGasCost prices gasUnits at base fee plus priority fee, fetching prices on first use
func (e *Estimator) EstimateGasCost(ctx context.Context, gasUnits uint64) (*big.Int, error) {
	e.mu.RLock()
	known := e.baseGasPrice != nil
	e.mu.RUnlock()

	if !known {
		if err := e.Update(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoGasPrice, err)
		}
	}

	e.mu.RLock()
	totalGasPrice := new(big.Int).Add(e.baseGasPrice, e.priorityFee)
	e.mu.RUnlock()

	return totalGasPrice.Mul(totalGasPrice, new(big.Int).SetUint64(gasUnits)), nil
}
