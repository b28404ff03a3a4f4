package selector

import (
	"math/big"

	"github.com/michaelpento.lv/bestroute/types"
)

// Input is everything one selection needs from a single cycle.
// Results must be index-aligned with Routes and come from the same cycle.
type Input struct {
	TradeType types.TradeType
	// Amount is the leg the caller fixed: amount in for exact input, amount out for exact output
	Amount *types.Amount
	// Counter is the token on the other leg
	Counter       *types.Token
	Routes        []*types.Route
	RoutesLoading bool
	Results       []types.QuoteResult
}

// Select reduces a cycle to a trade computation. Checks run in a fixed order:
// invalid input, then anything still loading, then the reduction itself.
func Select(in Input) types.TradeComputation {
	if !hasAmount(in.Amount) || in.Counter == nil {
		return types.InvalidComputation()
	}

	if in.RoutesLoading || anyLoading(in) {
		return types.LoadingComputation()
	}

	winner, quoted := best(in)
	if winner < 0 {
		return types.NoRouteComputation()
	}

	trade, err := buildTrade(in, in.Routes[winner], in.Results[winner], quoted)
	if err != nil {
		return types.NoRouteComputation()
	}

	return types.FoundComputation(trade, anySyncing(in.Results))
}

func hasAmount(amount *types.Amount) bool {
	return amount != nil && amount.Token != nil && amount.Raw().Sign() > 0
}

// anyLoading treats a route without a result slot as still in flight
func anyLoading(in Input) bool {
	if len(in.Results) < len(in.Routes) {
		return true
	}
	for i := range in.Routes {
		if in.Results[i].Loading() {
			return true
		}
	}
	return false
}

// best returns the index of the winning route and its quoted amount, or -1.
// Left to right, so the earliest route keeps a tie.
func best(in Input) (int, *big.Int) {
	winner := -1
	var quoted *big.Int
	for i := range in.Routes {
		result := in.Results[i]
		if !result.HasAmount() || result.Amount.Sign() < 0 {
			continue
		}
		if in.TradeType.Better(result.Amount, quoted) {
			winner, quoted = i, result.Amount
		}
	}
	return winner, quoted
}

func buildTrade(in Input, route *types.Route, result types.QuoteResult, quoted *big.Int) (*types.Trade, error) {
	counter, err := types.NewAmount(in.Counter, quoted)
	if err != nil {
		return nil, err
	}

	trade := &types.Trade{
		Route:          route,
		TradeType:      in.TradeType,
		GasUseEstimate: result.GasEstimate,
	}
	if in.TradeType == types.ExactOutput {
		trade.Input, trade.Output = counter, in.Amount
	} else {
		trade.Input, trade.Output = in.Amount, counter
	}
	return trade, nil
}

func anySyncing(results []types.QuoteResult) bool {
	for _, result := range results {
		if result.Syncing {
			return true
		}
	}
	return false
}
