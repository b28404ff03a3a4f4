package quote

import (
	"context"
	"math/big"
	"time"

	"github.com/michaelpento.lv/bestroute/dex"
	"github.com/michaelpento.lv/bestroute/dex/uniswap"
	"github.com/michaelpento.lv/bestroute/gas"
	"github.com/michaelpento.lv/bestroute/types"
	"github.com/michaelpento.lv/bestroute/utils/metrics"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config tunes how quotes reach the oracle
type Config struct {
	// GasLimit is attached to every request; zero falls back to gas.DefaultQuoteGasLimit
	GasLimit uint64
	// Timeout bounds a single oracle call; zero means only the cycle context applies
	Timeout time.Duration
	// RateLimit caps oracle calls per second; zero or less is unlimited
	RateLimit float64
	Burst     int
}

// Dispatcher fans a cycle's routes out to the oracle concurrently
type Dispatcher struct {
	oracle   dex.Oracle
	head     dex.BlockNumberer
	limiter  *rate.Limiter
	gasLimit uint64
	timeout  time.Duration
	metrics  *metrics.RouterMetrics
	logger   *zap.Logger
}

// NewDispatcher builds a dispatcher. head may be nil, which disables block pinning and syncing detection.
func NewDispatcher(oracle dex.Oracle, head dex.BlockNumberer, cfg Config, m *metrics.RouterMetrics, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	gasLimit := cfg.GasLimit
	if gasLimit == 0 {
		gasLimit = gas.DefaultQuoteGasLimit
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Dispatcher{
		oracle:   oracle,
		head:     head,
		limiter:  rate.NewLimiter(limit, burst),
		gasLimit: gasLimit,
		timeout:  cfg.Timeout,
		metrics:  m,
		logger:   logger,
	}
}

func (d *Dispatcher) GasLimit() uint64 {
	return d.gasLimit
}

// Dispatch issues one request per route and returns immediately.
// Slot i of the returned batch always belongs to routes[i]. A nil or non-positive amount
// marks every slot invalid without calling the oracle. Requests still unanswered when ctx
// ends leave their slots pending.
func (d *Dispatcher) Dispatch(ctx context.Context, routes []*types.Route, amount *big.Int, tradeType types.TradeType) *Batch {
	batch := newBatch(len(routes))

	if amount == nil || amount.Sign() <= 0 {
		for i := range routes {
			batch.settle(i, types.QuoteResult{Status: types.QuoteInvalid})
		}
		d.metrics.ObserveInvalid(len(routes))
		return batch
	}

	block := d.pinHead(ctx)
	batch.block = block

	for i, route := range routes {
		req := dex.QuoteRequest{
			Path:        uniswap.EncodePath(route, tradeType == types.ExactOutput),
			Amount:      new(big.Int).Set(amount),
			TradeType:   tradeType,
			GasLimit:    d.gasLimit,
			BlockNumber: block,
		}
		go func(i int, route *types.Route, req dex.QuoteRequest) {
			if result, ok := d.quote(ctx, route, req); ok {
				batch.settle(i, result)
			}
		}(i, route, req)
	}

	return batch
}

func (d *Dispatcher) pinHead(ctx context.Context) uint64 {
	if d.head == nil {
		return 0
	}
	block, err := d.head.BlockNumber(ctx)
	if err != nil {
		d.logger.Warn("Failed to read chain head, quoting at latest", zap.Error(err))
		return 0
	}
	return block
}

// quote runs one request. ok is false when the request was abandoned before the oracle answered:
// the limiter could not admit it before ctx ends, or ctx ended mid-call. Such slots stay pending.
func (d *Dispatcher) quote(ctx context.Context, route *types.Route, req dex.QuoteRequest) (types.QuoteResult, bool) {
	if err := d.limiter.Wait(ctx); err != nil {
		d.logger.Debug("Quote not sent",
			zap.Stringer("route", route),
			zap.Error(err))
		return types.QuoteResult{}, false
	}

	callCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := d.oracle.Quote(callCtx, req)
	if err != nil && ctx.Err() != nil {
		return types.QuoteResult{}, false
	}
	if err == nil && (resp == nil || resp.Amount == nil) {
		err = uniswap.ErrEmptyResult
	}
	d.metrics.ObserveQuote(time.Since(start), err)

	if err != nil {
		d.logger.Debug("Quote failed",
			zap.Stringer("route", route),
			zap.Stringer("tradeType", req.TradeType),
			zap.Error(err))
		return types.QuoteResult{Status: types.QuoteFailure, BlockNumber: req.BlockNumber, Err: err}, true
	}

	return types.QuoteResult{
		Status:      types.QuoteSuccess,
		Amount:      resp.Amount,
		GasEstimate: resp.GasEstimate,
		BlockNumber: req.BlockNumber,
		Syncing:     d.headMoved(ctx, req.BlockNumber),
	}, true
}

// headMoved reports whether the chain advanced past the block a quote was pinned to
func (d *Dispatcher) headMoved(ctx context.Context, pinned uint64) bool {
	if d.head == nil || pinned == 0 {
		return false
	}
	current, err := d.head.BlockNumber(ctx)
	if err != nil {
		return false
	}
	return current > pinned
}
