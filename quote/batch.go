package quote

import (
	"context"
	"sync"

	"github.com/michaelpento.lv/bestroute/types"
)

// Batch holds one cycle's results, index-aligned with the routes it was dispatched for.
// Slots start pending and each settles at most once.
type Batch struct {
	mu      sync.Mutex
	results []types.QuoteResult
	pending int
	block   uint64
	updates chan struct{}
	done    chan struct{}
}

func newBatch(n int) *Batch {
	b := &Batch{
		results: make([]types.QuoteResult, n),
		pending: n,
		updates: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	if n == 0 {
		close(b.done)
	}
	return b
}

func (b *Batch) settle(i int, result types.QuoteResult) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.results[i].Status != types.QuotePending {
		return
	}
	if result.Status == types.QuotePending {
		result.Status = types.QuoteFailure
	}
	b.results[i] = result
	b.pending--

	select {
	case b.updates <- struct{}{}:
	default:
	}
	if b.pending == 0 {
		close(b.done)
	}
}

// Len is the number of slots
func (b *Batch) Len() int {
	return len(b.results)
}

// BlockNumber is the head the cycle was pinned to, zero when quoting at latest
func (b *Batch) BlockNumber() uint64 {
	return b.block
}

// Snapshot copies the current results; unsettled slots read as pending
func (b *Batch) Snapshot() []types.QuoteResult {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]types.QuoteResult, len(b.results))
	copy(out, b.results)
	return out
}

// Updates signals after slots settle. Signals coalesce, so read Snapshot after each one.
func (b *Batch) Updates() <-chan struct{} {
	return b.updates
}

// Done is closed once every slot has settled. It stays open for a cycle abandoned with slots pending.
func (b *Batch) Done() <-chan struct{} {
	return b.done
}

// Wait blocks until every slot settles or ctx ends, then returns a snapshot
func (b *Batch) Wait(ctx context.Context) []types.QuoteResult {
	select {
	case <-b.done:
	case <-ctx.Done():
	}
	return b.Snapshot()
}
