package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/michaelpento.lv/bestroute/dex"
	"github.com/michaelpento.lv/bestroute/quote"
	"github.com/michaelpento.lv/bestroute/routing"
	"github.com/michaelpento.lv/bestroute/selector"
	"github.com/michaelpento.lv/bestroute/types"
	"github.com/michaelpento.lv/bestroute/utils/metrics"
	"go.uber.org/zap"
)

// DefaultRefreshInterval is roughly one mainnet block
const DefaultRefreshInterval = 12 * time.Second

// Request describes the swap a caller wants priced
type Request struct {
	TradeType types.TradeType
	// Amount is the fixed leg; nil when the caller has nothing parseable yet
	Amount *types.Amount
	// Counter is the token on the other leg
	Counter *types.Token
}

// ExactIn prices selling amountIn for as much tokenOut as possible
func ExactIn(amountIn *types.Amount, tokenOut *types.Token) Request {
	return Request{TradeType: types.ExactInput, Amount: amountIn, Counter: tokenOut}
}

// ExactOut prices buying amountOut for as little tokenIn as possible
func ExactOut(tokenIn *types.Token, amountOut *types.Amount) Request {
	return Request{TradeType: types.ExactOutput, Amount: amountOut, Counter: tokenIn}
}

func (r Request) tokens() (in, out *types.Token) {
	var fixed *types.Token
	if r.Amount != nil {
		fixed = r.Amount.Token
	}
	if r.TradeType == types.ExactOutput {
		return r.Counter, fixed
	}
	return fixed, r.Counter
}

// Snapshot is one immutable view of a cycle. Seq grows with every cycle the engine starts.
type Snapshot struct {
	Seq         uint64
	Computation types.TradeComputation
}

type Options struct {
	// Bases are the bridge tokens tried as intermediate hops
	Bases           []*types.Token
	RefreshInterval time.Duration
	Metrics         *metrics.RouterMetrics
	Logger          *zap.Logger
}

// Engine runs best-trade cycles: enumerate routes, dispatch quotes, select a winner
type Engine struct {
	source     dex.PoolSource
	enumerator *routing.Enumerator
	dispatcher *quote.Dispatcher
	bases      []*types.Token
	interval   time.Duration
	metrics    *metrics.RouterMetrics
	logger     *zap.Logger
	seq        atomic.Uint64
}

func New(source dex.PoolSource, enumerator *routing.Enumerator, dispatcher *quote.Dispatcher, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := opts.RefreshInterval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}

	return &Engine{
		source:     source,
		enumerator: enumerator,
		dispatcher: dispatcher,
		bases:      opts.Bases,
		interval:   interval,
		metrics:    opts.Metrics,
		logger:     logger,
	}
}

// BestTradeExactIn finds the route paying the most tokenOut for amountIn.
// It waits for quotes until they settle or ctx ends; quotes still in flight leave the result LOADING.
func (e *Engine) BestTradeExactIn(ctx context.Context, amountIn *types.Amount, tokenOut *types.Token) Snapshot {
	return e.BestTrade(ctx, ExactIn(amountIn, tokenOut))
}

// BestTradeExactOut finds the route costing the least tokenIn for amountOut
func (e *Engine) BestTradeExactOut(ctx context.Context, tokenIn *types.Token, amountOut *types.Amount) Snapshot {
	return e.BestTrade(ctx, ExactOut(tokenIn, amountOut))
}

// BestTrade runs one cycle to completion or until ctx ends
func (e *Engine) BestTrade(ctx context.Context, req Request) Snapshot {
	c := e.start(ctx, req)
	if c.batch != nil {
		c.batch.Wait(ctx)
	}
	snapshot := c.snapshot()
	e.record(snapshot)
	return snapshot
}

// Watch reprices req every refresh interval until ctx ends. A snapshot is emitted when a cycle
// starts and again as its quotes settle. Snapshots never go backwards in Seq.
func (e *Engine) Watch(ctx context.Context, req Request) <-chan Snapshot {
	out := make(chan Snapshot)

	go func() {
		defer close(out)

		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()

		tracker := &Tracker{}
		defer func() {
			if last, ok := tracker.Latest(); ok {
				e.logger.Debug("Watch stopped",
					zap.Uint64("seq", last.Seq),
					zap.Stringer("state", last.Computation.State()))
			}
		}()
		for {
			cycleCtx, cancel := context.WithCancel(ctx)
			c := e.start(cycleCtx, req)
			more := e.follow(ctx, c, tracker, out, ticker.C)
			cancel()
			if !more {
				return
			}
		}
	}()

	return out
}

// follow emits a cycle's snapshots until the next tick. It returns false once ctx ends.
func (e *Engine) follow(ctx context.Context, c *cycle, tracker *Tracker, out chan<- Snapshot, tick <-chan time.Time) bool {
	if !e.emit(ctx, tracker, out, c.snapshot()) {
		return false
	}

	var updates <-chan struct{}
	var done <-chan struct{}
	if c.batch != nil {
		updates, done = c.batch.Updates(), c.batch.Done()
	}

	for {
		select {
		case <-ctx.Done():
			return false
		case <-tick:
			return true
		case <-updates:
			if !e.emit(ctx, tracker, out, c.snapshot()) {
				return false
			}
		case <-done:
			updates, done = nil, nil
			if !e.emit(ctx, tracker, out, c.snapshot()) {
				return false
			}
		}
	}
}

func (e *Engine) emit(ctx context.Context, tracker *Tracker, out chan<- Snapshot, snapshot Snapshot) bool {
	if !tracker.Offer(snapshot) {
		return true
	}
	e.record(snapshot)
	select {
	case out <- snapshot:
		return true
	case <-ctx.Done():
		return false
	}
}

func (e *Engine) record(snapshot Snapshot) {
	e.metrics.ObserveComputation(snapshot.Computation.State().String())
}

// cycle is one enumerate-and-dispatch pass. Routes and batch are index-aligned and never shared across cycles.
type cycle struct {
	seq           uint64
	req           Request
	routes        []*types.Route
	routesLoading bool
	batch         *quote.Batch
	fixed         *types.TradeComputation
}

func (e *Engine) start(ctx context.Context, req Request) *cycle {
	c := &cycle{seq: e.seq.Add(1), req: req}

	// Reject unusable input before touching the registry or the oracle
	if computation := selector.Select(selector.Input{TradeType: req.TradeType, Amount: req.Amount, Counter: req.Counter}); computation.State() == types.TradeInvalid {
		c.fixed = &computation
		return c
	}

	tokenIn, tokenOut := req.tokens()
	pools := e.source.Snapshot(ctx, routing.CandidatePairs(tokenIn, tokenOut, e.bases))
	c.routes, c.routesLoading = e.enumerator.Enumerate(tokenIn, tokenOut, pools)
	c.batch = e.dispatcher.Dispatch(ctx, c.routes, req.Amount.Raw(), req.TradeType)

	e.logger.Debug("Cycle started",
		zap.Uint64("seq", c.seq),
		zap.Stringer("tradeType", req.TradeType),
		zap.Stringer("tokenIn", tokenIn),
		zap.Stringer("tokenOut", tokenOut),
		zap.Int("routes", len(c.routes)),
		zap.Uint64("block", c.batch.BlockNumber()),
		zap.Int("pools", len(pools.Pools)),
		zap.Bool("poolsLoading", c.routesLoading))

	return c
}

func (c *cycle) snapshot() Snapshot {
	if c.fixed != nil {
		return Snapshot{Seq: c.seq, Computation: *c.fixed}
	}
	return Snapshot{
		Seq: c.seq,
		Computation: selector.Select(selector.Input{
			TradeType:     c.req.TradeType,
			Amount:        c.req.Amount,
			Counter:       c.req.Counter,
			Routes:        c.routes,
			RoutesLoading: c.routesLoading,
			Results:       c.batch.Snapshot(),
		}),
	}
}
