package engine

import "sync"

// Tracker keeps the newest snapshot and refuses anything from an older cycle
type Tracker struct {
	mu     sync.Mutex
	latest Snapshot
	seen   bool
}

// Offer records s unless a newer cycle has already been recorded.
// Later snapshots of the same cycle replace earlier ones.
func (t *Tracker) Offer(s Snapshot) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.seen && s.Seq < t.latest.Seq {
		return false
	}
	t.latest, t.seen = s, true
	return true
}

// Latest returns the newest recorded snapshot
func (t *Tracker) Latest() (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest, t.seen
}
