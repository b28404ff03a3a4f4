package types

import (
	"fmt"
	"math/big"
)

// TradeType fixes which leg of a swap the caller specified
type TradeType int

const (
	ExactInput TradeType = iota
	ExactOutput
)

func (t TradeType) String() string {
	switch t {
	case ExactInput:
		return "EXACT_INPUT"
	case ExactOutput:
		return "EXACT_OUTPUT"
	default:
		return fmt.Sprintf("TradeType(%d)", int(t))
	}
}

// Better reports whether candidate beats best for this trade type.
// Exact input maximizes the amount received, exact output minimizes the amount paid.
// Ties are not better, so the earliest candidate is kept.
func (t TradeType) Better(candidate, best *big.Int) bool {
	if best == nil {
		return true
	}
	if t == ExactOutput {
		return candidate.Cmp(best) < 0
	}
	return candidate.Cmp(best) > 0
}

// QuoteStatus is the settlement state of one quote request
type QuoteStatus int

const (
	// QuotePending means the request is in flight
	QuotePending QuoteStatus = iota
	// QuoteSuccess means the oracle returned an amount
	QuoteSuccess
	// QuoteFailure means the oracle reverted or returned garbage
	QuoteFailure
	// QuoteInvalid means the request was never sent to the oracle
	QuoteInvalid
)

func (s QuoteStatus) String() string {
	switch s {
	case QuotePending:
		return "PENDING"
	case QuoteSuccess:
		return "SUCCESS"
	case QuoteFailure:
		return "FAILURE"
	case QuoteInvalid:
		return "INVALID"
	default:
		return fmt.Sprintf("QuoteStatus(%d)", int(s))
	}
}

// QuoteResult is the oracle's answer for one route of a cycle.
// Amount is the opposite leg of the swap: amount out for exact input, amount in for exact output.
type QuoteResult struct {
	Status      QuoteStatus
	Amount      *big.Int
	GasEstimate uint64
	BlockNumber uint64
	Syncing     bool
	Err         error
}

// Loading reports whether the request is still in flight
func (q QuoteResult) Loading() bool {
	return q.Status == QuotePending
}

// Valid reports whether the request was well formed enough to be dispatched
func (q QuoteResult) Valid() bool {
	return q.Status != QuoteInvalid
}

// HasAmount reports whether the result carries a usable amount
func (q QuoteResult) HasAmount() bool {
	return q.Status == QuoteSuccess && q.Amount != nil
}

// Trade is the winning route together with both swap amounts
type Trade struct {
	Route          *Route
	Input          *Amount
	Output         *Amount
	TradeType      TradeType
	GasUseEstimate uint64
}

func (t *Trade) String() string {
	return fmt.Sprintf("%s %s -> %s via %s", t.TradeType, t.Input, t.Output, t.Route)
}

// TradeState summarizes the readiness of a best-trade computation
type TradeState int

const (
	TradeLoading TradeState = iota
	TradeInvalid
	TradeNoRouteFound
	TradeValid
	TradeSyncing
)

func (s TradeState) String() string {
	switch s {
	case TradeLoading:
		return "LOADING"
	case TradeInvalid:
		return "INVALID"
	case TradeNoRouteFound:
		return "NO_ROUTE_FOUND"
	case TradeValid:
		return "VALID"
	case TradeSyncing:
		return "SYNCING"
	default:
		return fmt.Sprintf("TradeState(%d)", int(s))
	}
}

// TradeComputation pairs a state with its trade. Trade is non-nil iff State is VALID or SYNCING.
// The zero value is LOADING.
type TradeComputation struct {
	state TradeState
	trade *Trade
}

func LoadingComputation() TradeComputation {
	return TradeComputation{state: TradeLoading}
}

func InvalidComputation() TradeComputation {
	return TradeComputation{state: TradeInvalid}
}

func NoRouteComputation() TradeComputation {
	return TradeComputation{state: TradeNoRouteFound}
}

// FoundComputation wraps a winning trade; syncing marks it as computed against possibly stale state
func FoundComputation(trade *Trade, syncing bool) TradeComputation {
	if trade == nil {
		return NoRouteComputation()
	}
	if syncing {
		return TradeComputation{state: TradeSyncing, trade: trade}
	}
	return TradeComputation{state: TradeValid, trade: trade}
}

func (c TradeComputation) State() TradeState {
	return c.state
}

// Trade is the winning trade, nil unless the state is VALID or SYNCING
func (c TradeComputation) Trade() *Trade {
	return c.trade
}
