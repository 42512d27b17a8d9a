package swrcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	be "github.com/unkn0wn-root/swrcache/backend"
	c "github.com/unkn0wn-root/swrcache/codec"
	"github.com/unkn0wn-root/swrcache/internal/keylock"
)

const defaultTTL = 5 * time.Minute

const reasonValueDecode = "value_decode"

type cache[V any] struct {
	backend be.Backend
	codec   c.Codec[V]
	log     Logger
	hooks   Hooks
	clock   Clock

	enabled  bool
	stampede bool
	swr      bool

	res     resolver
	metrics Metrics
	tags    *tagIndex
	keys    *keySet
	flight  *keylock.Table

	refreshWg sync.WaitGroup
	closeOnce sync.Once
	closed    chan struct{}
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("swrcache: backend is required")
	}
	if opts.Backend.Mode() == be.ModeByte && opts.Codec == nil {
		return nil, fmt.Errorf("swrcache: codec is required for byte-mode backends")
	}
	if opts.DefaultTTL < 0 || opts.DefaultSliding < 0 || opts.DefaultStaleTTL < 0 {
		return nil, fmt.Errorf("swrcache: default durations: %w", ErrNegativeDuration)
	}
	for name, cat := range opts.Categories {
		if err := validateCategory(name, cat); err != nil {
			return nil, err
		}
	}

	cc := &cache[V]{
		backend:  opts.Backend,
		codec:    opts.Codec,
		enabled:  !opts.Disabled,
		stampede: !opts.DisableStampedeProtection,
		swr:      !opts.DisableStaleWhileRevalidate,
		tags:     newTagIndex(),
		keys:     newKeySet(),
		flight:   keylock.New(0),
		closed:   make(chan struct{}),
	}

	// defaults
	cc.log = coalesce[Logger](opts.Logger, NopLogger{})
	cc.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	cc.clock = coalesce[Clock](opts.Clock, SystemClock())
	cc.res = resolver{
		ttl:        coalesce(opts.DefaultTTL, defaultTTL),
		sliding:    opts.DefaultSliding,
		stale:      opts.DefaultStaleTTL,
		categories: opts.Categories,
	}

	// route provider write rejections into the hook pipeline when the
	// backend can report them
	if rn, ok := opts.Backend.(interface{ OnRejected(func(key string)) }); ok {
		rn.OnRejected(cc.hooks.ProviderRejected)
	}

	return cc, nil
}

func (cc *cache[V]) Enabled() bool { return cc.enabled }

func (cc *cache[V]) Metrics() *Metrics { return &cc.metrics }

// Close waits for in-flight background refreshes, then closes the backend.
// Subsequent calls are no-ops.
func (cc *cache[V]) Close(ctx context.Context) error {
	var err error
	cc.closeOnce.Do(func() {
		close(cc.closed)
		cc.refreshWg.Wait()
		err = cc.backend.Close(ctx)
	})
	return err
}

func (cc *cache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if err := validateKey(key); err != nil {
		return zero, false, err
	}
	if !cc.enabled {
		return zero, false, nil
	}

	res, err := cc.backend.Get(ctx, key)
	if err != nil {
		return zero, false, err
	}
	switch res.State {
	case be.StateHit, be.StateStale:
		v, derr := cc.decode(res.Entry)
		if derr != nil {
			cc.selfHeal(ctx, key, derr)
			return zero, false, nil
		}
		if res.State == be.StateHit {
			cc.metrics.hits.Add(1)
		} else {
			cc.metrics.staleHits.Add(1)
			cc.hooks.StaleServed(key)
		}
		return v, true, nil
	case be.StateExpired:
		cc.evict(key)
		return zero, false, nil
	default:
		cc.metrics.misses.Add(1)
		return zero, false, nil
	}
}

func (cc *cache[V]) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	if !cc.enabled {
		return false, nil
	}

	res, err := cc.backend.Get(ctx, key)
	if err != nil {
		return false, err
	}
	switch res.State {
	case be.StateHit:
		cc.metrics.hits.Add(1)
		return true, nil
	case be.StateStale:
		cc.metrics.staleHits.Add(1)
		cc.hooks.StaleServed(key)
		return true, nil
	case be.StateExpired:
		cc.evict(key)
		return false, nil
	default:
		cc.metrics.misses.Add(1)
		return false, nil
	}
}

func (cc *cache[V]) Set(ctx context.Context, key string, value V, opts EntryOptions) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := opts.validate(); err != nil {
		return err
	}
	if !cc.enabled {
		return nil
	}
	return cc.write(ctx, key, value, opts)
}

func (cc *cache[V]) Remove(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if !cc.enabled {
		return nil
	}
	return cc.removeKey(ctx, key)
}

func (cc *cache[V]) InvalidateTag(ctx context.Context, tag string) error {
	return cc.InvalidateTags(ctx, []string{tag})
}

func (cc *cache[V]) InvalidateTags(ctx context.Context, tags []string) error {
	for _, t := range tags {
		if err := validateTag(t); err != nil {
			return err
		}
	}
	if !cc.enabled || len(tags) == 0 {
		return nil
	}

	union := make(map[string]struct{})
	for _, t := range tags {
		for _, k := range cc.tags.KeysFor(t) {
			union[k] = struct{}{}
		}
	}

	var failures map[string]error
	for k := range union {
		if err := cc.removeKey(ctx, k); err != nil {
			if failures == nil {
				failures = make(map[string]error)
			}
			failures[k] = err
		}
	}
	if failures != nil {
		return &InvalidateError{Tags: tags, Failures: failures}
	}
	return nil
}

func (cc *cache[V]) GetOrSet(ctx context.Context, key string, fn Factory[V], opts EntryOptions) (V, error) {
	var zero V
	if err := validateKey(key); err != nil {
		return zero, err
	}
	if fn == nil {
		return zero, ErrNilFactory
	}
	if err := opts.validate(); err != nil {
		return zero, err
	}
	if !cc.enabled {
		return fn(ctx)
	}

	res, err := cc.backend.Get(ctx, key)
	if err != nil {
		return zero, err
	}

	evicted := false
	switch res.State {
	case be.StateHit:
		v, derr := cc.decode(res.Entry)
		if derr == nil {
			cc.metrics.hits.Add(1)
			return v, nil
		}
		cc.selfHeal(ctx, key, derr)
		evicted = true
	case be.StateStale:
		v, derr := cc.decode(res.Entry)
		if derr != nil {
			cc.selfHeal(ctx, key, derr)
			evicted = true
			break
		}
		cc.metrics.staleHits.Add(1)
		cc.hooks.StaleServed(key)
		if cc.swr {
			cc.scheduleRefresh(ctx, key, fn, opts)
			return v, nil
		}
		// SWR off: repopulate synchronously below
	case be.StateExpired:
		cc.evict(key)
		evicted = true
	}
	return cc.populate(ctx, key, fn, opts, evicted)
}

// populate runs the factory and installs its result. With stampede
// protection the call holds the key's lease; a caller that lost the race
// returns the winner's freshly installed value instead of re-running the
// factory.
func (cc *cache[V]) populate(ctx context.Context, key string, fn Factory[V], opts EntryOptions, evicted bool) (V, error) {
	var zero V
	if !cc.stampede {
		cc.metrics.misses.Add(1)
		v, err := fn(ctx)
		if err != nil {
			return zero, err
		}
		if err := cc.write(ctx, key, v, opts); err != nil {
			return zero, err
		}
		return v, nil
	}

	lease, err := cc.flight.Acquire(ctx, key)
	if err != nil {
		return zero, err
	}
	defer lease.Release()

	res, err := cc.backend.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	switch res.State {
	case be.StateHit:
		v, derr := cc.decode(res.Entry)
		if derr == nil {
			cc.metrics.hits.Add(1)
			return v, nil
		}
		cc.selfHeal(ctx, key, derr)
	case be.StateExpired:
		if !evicted {
			cc.evict(key)
		}
	}

	cc.metrics.misses.Add(1)
	v, err := fn(ctx)
	if err != nil {
		return zero, err
	}
	if err := cc.write(ctx, key, v, opts); err != nil {
		return zero, err
	}
	return v, nil
}

// scheduleRefresh starts at most one background repopulation per key. The
// refresh runs on a detached context: the triggering caller's cancellation
// must not abort it.
func (cc *cache[V]) scheduleRefresh(ctx context.Context, key string, fn Factory[V], opts EntryOptions) {
	lease, ok := cc.flight.TryAcquire(key)
	if !ok {
		return // a refresh for this key is already running
	}
	select {
	case <-cc.closed:
		lease.Release()
		return
	default:
	}

	cc.refreshWg.Add(1)
	bg := context.WithoutCancel(ctx)
	go func() {
		defer cc.refreshWg.Done()
		defer lease.Release()
		v, err := fn(bg)
		if err != nil {
			cc.log.Error("background refresh failed", Fields{"key": key, "err": err})
			cc.hooks.RefreshFailed(key, err)
			return
		}
		if err := cc.write(bg, key, v, opts); err != nil {
			cc.log.Error("background refresh store failed", Fields{"key": key, "err": err})
			cc.hooks.RefreshFailed(key, err)
		}
	}()
}

// write resolves options, stores the entry and updates tags and accounting.
// Callers have already validated key and opts.
func (cc *cache[V]) write(ctx context.Context, key string, value V, opts EntryOptions) error {
	meta, err := cc.res.resolve(opts, cc.clock.Now())
	if err != nil {
		return err
	}
	entry, err := cc.buildEntry(meta, value)
	if err != nil {
		return err
	}
	if err := cc.backend.Set(ctx, key, entry); err != nil {
		return err
	}
	cc.metrics.sets.Add(1)
	if cc.keys.Install(key) {
		cc.metrics.size.Add(1)
	}
	cc.tags.Associate(key, opts.Tags)
	return nil
}

func (cc *cache[V]) removeKey(ctx context.Context, key string) error {
	if err := cc.backend.Remove(ctx, key); err != nil {
		return err
	}
	if cc.keys.Drop(key) {
		cc.metrics.size.Add(-1)
	}
	cc.metrics.removals.Add(1)
	cc.tags.Detach(key)
	return nil
}

// evict drops façade bookkeeping for a key the backend reported expired.
func (cc *cache[V]) evict(key string) {
	if cc.keys.Drop(key) {
		cc.metrics.evictions.Add(1)
		cc.metrics.size.Add(-1)
	}
	cc.tags.Detach(key)
}

// selfHeal purges an entry whose stored value cannot be decoded and treats
// it as expired.
func (cc *cache[V]) selfHeal(ctx context.Context, key string, derr error) {
	_ = cc.backend.Remove(ctx, key)
	cc.evict(key)
	cc.hooks.CorruptEntry(key, reasonValueDecode)
	cc.log.Warn("purged undecodable entry", Fields{"key": key, "err": derr})
}

func (cc *cache[V]) buildEntry(meta be.Metadata, value V) (be.Entry, error) {
	if cc.backend.Mode() == be.ModeByte {
		payload, err := cc.codec.Encode(value)
		if err != nil {
			return be.Entry{}, err
		}
		return be.Entry{Meta: meta, Payload: payload}, nil
	}
	return be.Entry{Meta: meta, Value: value}, nil
}

func (cc *cache[V]) decode(e be.Entry) (V, error) {
	if cc.backend.Mode() == be.ModeByte {
		return cc.codec.Decode(e.Payload)
	}
	v, ok := e.Value.(V)
	if !ok {
		var zero V
		return zero, fmt.Errorf("swrcache: cached value has type %T", e.Value)
	}
	return v, nil
}

func validateTag(tag string) error {
	if err := validateKey(tag); err != nil {
		return ErrBlankTag
	}
	return nil
}
