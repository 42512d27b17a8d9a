package swrcache

import (
	"time"

	"github.com/unkn0wn-root/swrcache/backend"
)

// resolver merges per-operation options, category defaults and global
// defaults into concrete entry metadata.
//
// Lifetime precedence is all-or-nothing per layer: if an operation sets ttl
// or sliding it fully determines both, otherwise its category does, otherwise
// the global defaults. The stale window resolves independently with the same
// precedence. The global absolute TTL is the final fallback so every entry
// without an explicit lifetime still expires.
type resolver struct {
	ttl        time.Duration // global absolute TTL fallback; always > 0
	sliding    time.Duration // optional global sliding window
	stale      time.Duration // optional global stale window
	categories map[string]EntryOptions
}

func (r *resolver) resolve(opts EntryOptions, now time.Time) (backend.Metadata, error) {
	var cat EntryOptions
	if opts.Category != "" {
		c, ok := r.categories[opts.Category]
		if !ok {
			return backend.Metadata{}, ErrUnknownCategory
		}
		cat = c
	}

	var ttl, sliding time.Duration
	switch {
	case opts.TTL > 0 || opts.Sliding > 0:
		ttl, sliding = opts.TTL, opts.Sliding
	case cat.TTL > 0 || cat.Sliding > 0:
		ttl, sliding = cat.TTL, cat.Sliding
	default:
		sliding = r.sliding
	}
	if ttl == 0 && sliding == 0 {
		ttl = r.ttl
	}

	stale := r.stale
	if cat.StaleTTL > 0 {
		stale = cat.StaleTTL
	}
	if opts.StaleTTL > 0 {
		stale = opts.StaleTTL
	}

	m := backend.Metadata{
		CreatedAt:     now,
		SlidingWindow: sliding,
		StaleWindow:   stale,
	}
	if sliding > 0 {
		m.AbsoluteExpiration = now.Add(sliding)
	} else {
		m.AbsoluteExpiration = now.Add(ttl)
	}
	return m, nil
}
