package swrcache

import "sync/atomic"

// Metrics holds the façade's counters using atomics for lock-free updates.
// Size reflects the set of keys the façade has installed and not later
// removed or evicted; it is maintained here, not by the backend.
type Metrics struct {
	hits      atomic.Int64
	misses    atomic.Int64
	staleHits atomic.Int64
	sets      atomic.Int64
	removals  atomic.Int64
	evictions atomic.Int64
	size      atomic.Int64
}

// Hits returns the number of fresh hits.
func (m *Metrics) Hits() int64 { return m.hits.Load() }

// Misses returns the number of misses.
func (m *Metrics) Misses() int64 { return m.misses.Load() }

// StaleHits returns the number of reads served from the stale window.
func (m *Metrics) StaleHits() int64 { return m.staleHits.Load() }

// Sets returns the number of writes.
func (m *Metrics) Sets() int64 { return m.sets.Load() }

// Removals returns the number of explicit removals, including tag invalidations.
func (m *Metrics) Removals() int64 { return m.removals.Load() }

// Evictions returns the number of keys dropped because they expired.
func (m *Metrics) Evictions() int64 { return m.evictions.Load() }

// Size returns the number of keys currently installed from the façade's view.
func (m *Metrics) Size() int64 { return m.size.Load() }

// Snapshot is a point-in-time copy of the counters. Fields are loaded one by
// one; a snapshot taken under concurrent traffic may be torn across fields.
type Snapshot struct {
	Hits      int64
	Misses    int64
	StaleHits int64
	Sets      int64
	Removals  int64
	Evictions int64
	Size      int64
}

// HitRate returns fresh+stale hits over all reads, between 0 and 1.
// Returns 0 if there have been no reads.
func (s Snapshot) HitRate() float64 {
	total := s.Hits + s.StaleHits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits+s.StaleHits) / float64(total)
}

// Snapshot returns a point-in-time copy of the counters.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Hits:      m.hits.Load(),
		Misses:    m.misses.Load(),
		StaleHits: m.staleHits.Load(),
		Sets:      m.sets.Load(),
		Removals:  m.removals.Load(),
		Evictions: m.evictions.Load(),
		Size:      m.size.Load(),
	}
}
