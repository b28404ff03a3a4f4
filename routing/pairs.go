package routing

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/michaelpento.lv/bestroute/dex"
	"github.com/michaelpento.lv/bestroute/types"
)

// CandidatePairs lists every token pair whose pools may appear on a route between
// tokenIn and tokenOut: the direct pair, each side against every bridge base,
// and the bases against each other. Bases on other chains are ignored.
func CandidatePairs(tokenIn, tokenOut *types.Token, bases []*types.Token) []dex.TokenPair {
	if tokenIn == nil || tokenOut == nil {
		return nil
	}

	chainBases := make([]*types.Token, 0, len(bases))
	for _, base := range bases {
		if base != nil && base.ChainID == tokenIn.ChainID {
			chainBases = append(chainBases, base)
		}
	}

	candidates := make([]dex.TokenPair, 0, 1+2*len(chainBases)+len(chainBases)*len(chainBases)/2)
	candidates = append(candidates, dex.TokenPair{tokenIn, tokenOut})
	for _, base := range chainBases {
		candidates = append(candidates, dex.TokenPair{tokenIn, base})
	}
	for _, base := range chainBases {
		candidates = append(candidates, dex.TokenPair{base, tokenOut})
	}
	for i, base := range chainBases {
		for _, other := range chainBases[i+1:] {
			candidates = append(candidates, dex.TokenPair{base, other})
		}
	}

	seen := make(map[[2]common.Address]struct{}, len(candidates))
	out := candidates[:0]
	for _, pair := range candidates {
		if pair[0].Equals(pair[1]) {
			continue
		}
		key := [2]common.Address{pair[0].Address, pair[1].Address}
		if pair[1].SortsBefore(pair[0]) {
			key[0], key[1] = key[1], key[0]
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, pair)
	}
	return out
}
