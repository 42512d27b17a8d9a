package swrcache

import (
	"context"
	"time"

	be "github.com/unkn0wn-root/swrcache/backend"
	c "github.com/unkn0wn-root/swrcache/codec"
)

// Factory produces the value for a key on a cache miss.
type Factory[V any] func(ctx context.Context) (V, error)

// Cache is the high-level policy façade over an object or byte backend:
// layered TTL defaults, stale-while-revalidate, stampede protection and
// tag-based bulk invalidation. V is the caller's value type; in byte mode
// serialization is handled by a pluggable Codec[V].
type Cache[V any] interface {
	Enabled() bool
	Close(ctx context.Context) error

	// Metrics exposes the façade's counters. Counters are live; read them
	// through Snapshot for a point-in-time view.
	Metrics() *Metrics

	// Get returns the cached value when the entry is fresh or stale.
	Get(ctx context.Context, key string) (v V, ok bool, err error)

	// Exists reports whether the entry is fresh or stale without decoding it.
	Exists(ctx context.Context, key string) (bool, error)

	// Set stores value under key with options resolved against category and
	// global defaults, and replaces the key's tag associations.
	Set(ctx context.Context, key string, value V, opts EntryOptions) error

	// GetOrSet implements cache-aside: a fresh hit is returned directly; with
	// stale-while-revalidate on, a stale hit is returned while a background
	// refresh repopulates the entry (with it off, the entry is repopulated
	// synchronously); a miss runs the factory, and with stampede protection on
	// concurrent callers of the same key are coalesced so it runs once.
	GetOrSet(ctx context.Context, key string, fn Factory[V], opts EntryOptions) (V, error)

	// Remove deletes the key. Idempotent.
	Remove(ctx context.Context, key string) error

	// InvalidateTag removes every key currently associated with tag.
	InvalidateTag(ctx context.Context, tag string) error

	// InvalidateTags removes every key associated with any of tags.
	InvalidateTags(ctx context.Context, tags []string) error
}

// Options tune the behavior of the cache.
// Only Backend is required (plus Codec for byte-mode backends); others have
// sensible defaults.
type Options[V any] struct {
	// Required
	Backend be.Backend
	Codec   c.Codec[V] // required when Backend.Mode() == ModeByte

	Logger     Logger        // if nil, NopLogger is used
	Hooks      Hooks         // if nil, NopHooks is used
	Clock      Clock         // if nil, the system UTC clock is used
	DefaultTTL time.Duration // absolute TTL fallback; 0 => 5m
	// DefaultSliding makes entries without an explicit lifetime sliding.
	DefaultSliding time.Duration
	// DefaultStaleTTL gives every entry a stale window unless overridden.
	DefaultStaleTTL time.Duration
	// Categories maps a category name to lifetime defaults selectable per
	// operation via EntryOptions.Category. Validated at construction.
	Categories map[string]EntryOptions

	DisableStampedeProtection   bool // default false (protection on)
	DisableStaleWhileRevalidate bool // default false (SWR on)
	Disabled                    bool // default false (enabled)
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
