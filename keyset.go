package swrcache

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

const keySetShards = 64

// keySet tracks which keys the façade has installed, for size accounting.
// Sharded so concurrent sets and removals on different keys do not contend.
type keySet struct {
	shards [keySetShards]keySetShard
}

type keySetShard struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newKeySet() *keySet {
	s := &keySet{}
	for i := range s.shards {
		s.shards[i].keys = make(map[string]struct{})
	}
	return s
}

func (s *keySet) shardFor(key string) *keySetShard {
	return &s.shards[xxhash.Sum64String(key)%keySetShards]
}

// Install records key and reports whether it was newly added.
func (s *keySet) Install(key string) bool {
	sh := s.shardFor(key)
	sh.mu.Lock()
	_, exists := sh.keys[key]
	if !exists {
		sh.keys[key] = struct{}{}
	}
	sh.mu.Unlock()
	return !exists
}

// Drop forgets key and reports whether it was tracked.
func (s *keySet) Drop(key string) bool {
	sh := s.shardFor(key)
	sh.mu.Lock()
	_, exists := sh.keys[key]
	if exists {
		delete(sh.keys, key)
	}
	sh.mu.Unlock()
	return exists
}
