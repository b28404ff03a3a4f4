package routing

import (
	"context"

	"github.com/michaelpento.lv/bestroute/dex"
	"github.com/michaelpento.lv/bestroute/types"
)

// StaticPools is a fixed pool list, useful offline and in tests
type StaticPools struct {
	Pools   []*types.Pool
	Loading bool
}

// Snapshot returns the pools that join one of the requested pairs
func (s *StaticPools) Snapshot(_ context.Context, pairs []dex.TokenPair) dex.PoolSnapshot {
	snapshot := dex.PoolSnapshot{Loading: s.Loading}
	for _, pool := range s.Pools {
		for _, pair := range pairs {
			if pair[0] == nil || pair[1] == nil {
				continue
			}
			if pool.Involves(pair[0]) && pool.Involves(pair[1]) {
				snapshot.Pools = append(snapshot.Pools, pool)
				break
			}
		}
	}
	return snapshot
}
