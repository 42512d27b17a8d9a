// Package swrcache implements a policy façade over interchangeable cache
// backends: layered TTL defaults (absolute and sliding), stale-while-revalidate,
// stampede protection, tag-based bulk invalidation and lock-free metrics.
//
// Components:
//   - Backend: classifies every read as hit/stale/expired/miss against its
//     own clock. Object mode keeps live values in process; byte mode frames
//     entries through a fixed binary envelope into a Provider.
//   - Provider: external byte store with retention hints (e.g. Redis,
//     Ristretto, BigCache).
//   - Codec[V]: (de)serializes V <-> []byte for byte-mode backends.
//
// Lookup state machine:
//
//	fresh   -> hit, value returned
//	stale   -> value returned; with SWR on, a background refresh repopulates
//	expired -> key evicted, treated as absent
//	miss    -> cache-aside population, coalesced per key
//
// Cache-aside pattern:
//
//	v, err := cache.GetOrSet(ctx, k, loadFromDB, swrcache.EntryOptions{
//	    TTL:      5 * time.Minute,
//	    StaleTTL: 30 * time.Second,
//	    Tags:     []string{"products"},
//	})
//
// Tag invalidation is process-local: two processes sharing one external
// store each hold their own tag graph, and invalidation does not cross the
// process boundary.
package swrcache
