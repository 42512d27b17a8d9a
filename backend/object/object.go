// Package object implements the in-process object-mode backend: a sharded
// concurrent map from string keys to live values.
package object

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	be "github.com/unkn0wn-root/swrcache/backend"
)

const defaultShards = 64

type Config struct {
	// Shards is rounded up to a power of two; 0 uses a default.
	Shards int
	// Clock drives freshness classification; nil uses the system clock.
	Clock be.Clock
}

// Backend is an object-mode backend. Values are assumed immutable after
// hand-off and are never copied.
type Backend struct {
	shards []shard
	mask   uint64
	clock  be.Clock
}

type shard struct {
	mu      sync.RWMutex
	entries map[string]be.Entry
}

var _ be.Backend = (*Backend)(nil)

func New(cfg Config) *Backend {
	n := 1
	want := cfg.Shards
	if want <= 0 {
		want = defaultShards
	}
	for n < want {
		n <<= 1
	}
	b := &Backend{
		shards: make([]shard, n),
		mask:   uint64(n - 1),
		clock:  cfg.Clock,
	}
	if b.clock == nil {
		b.clock = be.SystemClock()
	}
	for i := range b.shards {
		b.shards[i].entries = make(map[string]be.Entry)
	}
	return b
}

func (b *Backend) Mode() be.Mode { return be.ModeObject }

func (b *Backend) shardFor(key string) *shard {
	return &b.shards[xxhash.Sum64String(key)&b.mask]
}

func (b *Backend) Get(_ context.Context, key string) (be.GetResult, error) {
	s := b.shardFor(key)

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return be.GetResult{State: be.StateMiss}, nil
	}

	now := b.clock.Now()
	switch e.Meta.Classify(now) {
	case be.StateHit:
		if e.Meta.SlidingWindow > 0 {
			e = b.refresh(key, now, e)
		}
		return be.GetResult{State: be.StateHit, Entry: e}, nil
	case be.StateStale:
		return be.GetResult{State: be.StateStale, Entry: e}, nil
	default:
		b.expire(key)
		return be.GetResult{State: be.StateExpired}, nil
	}
}

// refresh pushes a sliding entry's expiration forward under the write lock.
// The entry is re-read so a concurrent Set is not clobbered with old state;
// a writer racing the writeback simply wins (last writer wins). If the key
// vanished in between, the read still serves the entry it observed.
func (b *Backend) refresh(key string, now time.Time, prev be.Entry) be.Entry {
	s := b.shardFor(key)
	s.mu.Lock()
	e, ok := s.entries[key]
	if ok && e.Meta.SlidingWindow > 0 {
		e.Meta = e.Meta.Refreshed(now)
		s.entries[key] = e
		s.mu.Unlock()
		return e
	}
	s.mu.Unlock()
	return prev
}

// expire removes a key observed past its stale deadline. Re-checked under
// the write lock so a racing Set of a fresh entry is not deleted.
func (b *Backend) expire(key string) {
	s := b.shardFor(key)
	s.mu.Lock()
	if e, ok := s.entries[key]; ok && e.Meta.Classify(b.clock.Now()) == be.StateExpired {
		delete(s.entries, key)
	}
	s.mu.Unlock()
}

func (b *Backend) Set(_ context.Context, key string, e be.Entry) error {
	if len(e.Payload) > 0 {
		return fmt.Errorf("object backend: %w", be.ErrEntryMode)
	}
	s := b.shardFor(key)
	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
	return nil
}

func (b *Backend) Remove(_ context.Context, key string) error {
	s := b.shardFor(key)
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

func (b *Backend) Close(context.Context) error { return nil }

// Len reports the number of stored entries across all shards, including ones
// past expiry that no read has swept yet.
func (b *Backend) Len() int {
	n := 0
	for i := range b.shards {
		s := &b.shards[i]
		s.mu.RLock()
		n += len(s.entries)
		s.mu.RUnlock()
	}
	return n
}
