package gas

// DefaultQuoteGasLimit bounds a single quote simulation
const DefaultQuoteGasLimit uint64 = 2_000_000

// Chains whose quoter simulations need a larger ceiling
const (
	ChainOptimism uint64 = 10
	ChainCelo     uint64 = 42220
)

// DefaultQuoteGasOverrides are the per-chain ceilings used when none are configured
func DefaultQuoteGasOverrides() map[uint64]uint64 {
	return map[uint64]uint64{
		ChainOptimism: 6_000_000,
		ChainCelo:     6_000_000,
	}
}

// Limits picks the gas ceiling attached to every quote request on a chain
type Limits struct {
	Default   uint64
	Overrides map[uint64]uint64
}

// ForChain returns the chain's override if one is configured, else the default
func (l Limits) ForChain(chainID uint64) uint64 {
	if limit, ok := l.Overrides[chainID]; ok && limit > 0 {
		return limit
	}
	if l.Default > 0 {
		return l.Default
	}
	return DefaultQuoteGasLimit
}
