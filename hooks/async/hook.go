// Package asynchook decouples hook callbacks from the cache's hot paths by
// fanning events out to a bounded worker queue. Events are dropped when the
// queue is full rather than blocking a cache operation.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    CorruptEvery: 10, // sample logs: ~every 10th purge
//	    StaleEvery:   1,  // log every stale serve
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := swrcache.New[User](swrcache.Options[User]{
//	    Backend: backend,
//	    Codec:   codec.JSON[User]{},
//	    Hooks:   hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/swrcache"
)

type Hooks struct {
	inner swrcache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ swrcache.Hooks = (*Hooks)(nil)

func New(inner swrcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains the queue and stops the workers. Events submitted after Close
// are discarded.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) submit(f func()) {
	defer func() { _ = recover() }() // send on closed queue after Close
	select {
	case h.q <- f:
	default: // queue full; drop rather than block the cache
	}
}

func (h *Hooks) CorruptEntry(key, reason string) {
	h.submit(func() { h.inner.CorruptEntry(key, reason) })
}

func (h *Hooks) StaleServed(key string) {
	h.submit(func() { h.inner.StaleServed(key) })
}

func (h *Hooks) RefreshFailed(key string, err error) {
	h.submit(func() { h.inner.RefreshFailed(key, err) })
}

func (h *Hooks) ProviderRejected(key string) {
	h.submit(func() { h.inner.ProviderRejected(key) })
}
