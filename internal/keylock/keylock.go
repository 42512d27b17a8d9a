// Package keylock provides per-key mutual exclusion with blocking and
// try-acquire, used for stampede protection and background refresh dedup.
//
// The table is sharded by key hash. Each key's primitive is a weighted
// semaphore of capacity one, reference counted so the entry is reclaimed
// when the last interested caller releases: table size tracks the active
// contention set, not the cardinality of keys ever touched.
package keylock

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/semaphore"
)

const defaultShards = 64

// Table hands out at most one Lease per key at a time.
type Table struct {
	shards []shard
	mask   uint64
}

type shard struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sem  *semaphore.Weighted
	refs int
}

// New builds a Table with the given shard count, rounded up to a power of
// two. Non-positive counts use a default.
func New(shards int) *Table {
	if shards <= 0 {
		shards = defaultShards
	}
	n := 1
	for n < shards {
		n <<= 1
	}
	t := &Table{shards: make([]shard, n), mask: uint64(n - 1)}
	for i := range t.shards {
		t.shards[i].locks = make(map[string]*keyLock)
	}
	return t
}

func (t *Table) shardFor(key string) *shard {
	return &t.shards[xxhash.Sum64String(key)&t.mask]
}

// Acquire blocks until it owns key or ctx is done. A cancelled wait holds no
// lease and leaves no table residue.
func (t *Table) Acquire(ctx context.Context, key string) (*Lease, error) {
	s := t.shardFor(key)
	kl := s.retain(key)
	if err := kl.sem.Acquire(ctx, 1); err != nil {
		s.release(key)
		return nil, err
	}
	return &Lease{table: t, key: key}, nil
}

// TryAcquire returns a lease immediately or reports the key busy.
func (t *Table) TryAcquire(key string) (*Lease, bool) {
	s := t.shardFor(key)
	kl := s.retain(key)
	if !kl.sem.TryAcquire(1) {
		s.release(key)
		return nil, false
	}
	return &Lease{table: t, key: key}, true
}

// Len reports the number of keys with live primitives across all shards.
func (t *Table) Len() int {
	n := 0
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.Lock()
		n += len(s.locks)
		s.mu.Unlock()
	}
	return n
}

func (s *shard) retain(key string) *keyLock {
	s.mu.Lock()
	kl, ok := s.locks[key]
	if !ok {
		kl = &keyLock{sem: semaphore.NewWeighted(1)}
		s.locks[key] = kl
	}
	kl.refs++
	s.mu.Unlock()
	return kl
}

func (s *shard) release(key string) {
	s.mu.Lock()
	if kl, ok := s.locks[key]; ok {
		kl.refs--
		if kl.refs == 0 {
			delete(s.locks, key)
		}
	}
	s.mu.Unlock()
}

// Lease is exclusive ownership of one key. Release is idempotent.
type Lease struct {
	table *Table
	key   string
	once  sync.Once
}

// Release gives up the key and reclaims the primitive if idle.
func (l *Lease) Release() {
	l.once.Do(func() {
		s := l.table.shardFor(l.key)
		s.mu.Lock()
		kl := s.locks[l.key]
		s.mu.Unlock()
		kl.sem.Release(1)
		s.release(l.key)
	})
}
