package swrcache

import "sync"

// tagIndex is the process-local bidirectional map between tags and keys.
// Writes replace a key's whole tag set atomically from the observer's
// perspective. Invariant: (tag, key) ∈ byTag ⇔ tag ∈ byKey[key], and empty
// tag buckets are deleted so no tag dangles without members.
type tagIndex struct {
	mu    sync.RWMutex
	byTag map[string]map[string]struct{}
	byKey map[string]map[string]struct{}
}

func newTagIndex() *tagIndex {
	return &tagIndex{
		byTag: make(map[string]map[string]struct{}),
		byKey: make(map[string]map[string]struct{}),
	}
}

// Associate replaces any prior tag set for key with tags. An empty set clears
// the key's associations.
func (ti *tagIndex) Associate(key string, tags []string) {
	ti.mu.Lock()
	ti.detachLocked(key)
	if len(tags) > 0 {
		set := make(map[string]struct{}, len(tags))
		for _, t := range tags {
			set[t] = struct{}{}
			bucket, ok := ti.byTag[t]
			if !ok {
				bucket = make(map[string]struct{})
				ti.byTag[t] = bucket
			}
			bucket[key] = struct{}{}
		}
		ti.byKey[key] = set
	}
	ti.mu.Unlock()
}

// Detach removes all associations for key.
func (ti *tagIndex) Detach(key string) {
	ti.mu.Lock()
	ti.detachLocked(key)
	ti.mu.Unlock()
}

func (ti *tagIndex) detachLocked(key string) {
	for t := range ti.byKey[key] {
		bucket := ti.byTag[t]
		delete(bucket, key)
		if len(bucket) == 0 {
			delete(ti.byTag, t)
		}
	}
	delete(ti.byKey, key)
}

// KeysFor returns a point-in-time copy of the keys carrying tag; callers
// iterate without holding the index lock.
func (ti *tagIndex) KeysFor(tag string) []string {
	ti.mu.RLock()
	bucket := ti.byTag[tag]
	keys := make([]string, 0, len(bucket))
	for k := range bucket {
		keys = append(keys, k)
	}
	ti.mu.RUnlock()
	return keys
}
