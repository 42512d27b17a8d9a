// Package bytestore implements the byte-mode backend: entries are framed
// with the wire envelope and persisted in an external provider store.
package bytestore

import (
	"context"
	"errors"
	"time"

	be "github.com/unkn0wn-root/swrcache/backend"
	"github.com/unkn0wn-root/swrcache/internal/wire"
	pr "github.com/unkn0wn-root/swrcache/provider"
)

// minRetain is the floor for the retention hint handed to the provider. A
// computed retention can round to zero when the entry is already near its
// deadline; stores treat zero as "keep forever", which is the wrong direction.
const minRetain = time.Second

type Config struct {
	// Provider is the external byte store. Required.
	Provider pr.Provider
	// Clock drives freshness classification; nil uses the system clock.
	Clock be.Clock
	// Cost computes the admission cost passed to the provider per Set.
	// Nil uses the envelope length.
	Cost func(key string, blob []byte) int64
}

// Backend frames entries through the wire envelope on their way to and from
// the provider. Corrupt blobs are purged on read and reported as expired.
type Backend struct {
	p          pr.Provider
	clock      be.Clock
	cost       func(string, []byte) int64
	onRejected func(string)
}

var _ be.Backend = (*Backend)(nil)

func New(cfg Config) (*Backend, error) {
	if cfg.Provider == nil {
		return nil, errors.New("bytestore: provider is required")
	}
	b := &Backend{
		p:     cfg.Provider,
		clock: cfg.Clock,
		cost:  cfg.Cost,
	}
	if b.clock == nil {
		b.clock = be.SystemClock()
	}
	if b.cost == nil {
		b.cost = func(_ string, blob []byte) int64 { return int64(len(blob)) }
	}
	return b, nil
}

func (b *Backend) Mode() be.Mode { return be.ModeByte }

// OnRejected registers a callback invoked when the provider refuses a write
// under pressure. The façade wires its hooks through this at construction.
// Must be set before the backend sees traffic; fn must be cheap, it runs on
// the hot path.
func (b *Backend) OnRejected(fn func(key string)) { b.onRejected = fn }

func (b *Backend) Get(ctx context.Context, key string) (be.GetResult, error) {
	raw, ok, err := b.p.Get(ctx, key)
	if err != nil {
		return be.GetResult{}, err
	}
	if !ok {
		return be.GetResult{State: be.StateMiss}, nil
	}

	meta, payload, err := wire.Decode(raw)
	if err != nil {
		// self-heal corrupt blob
		_ = b.p.Del(ctx, key)
		return be.GetResult{State: be.StateExpired}, nil
	}

	now := b.clock.Now()
	switch meta.Classify(now) {
	case be.StateHit:
		e := be.Entry{Meta: meta, Payload: payload}
		if meta.SlidingWindow > 0 {
			e.Meta = meta.Refreshed(now)
			b.store(ctx, key, e, now)
		}
		return be.GetResult{State: be.StateHit, Entry: e}, nil
	case be.StateStale:
		return be.GetResult{State: be.StateStale, Entry: be.Entry{Meta: meta, Payload: payload}}, nil
	default:
		_ = b.p.Del(ctx, key)
		return be.GetResult{State: be.StateExpired}, nil
	}
}

func (b *Backend) Set(ctx context.Context, key string, e be.Entry) error {
	if e.Value != nil {
		return be.ErrEntryMode
	}
	return b.store(ctx, key, e, b.clock.Now())
}

func (b *Backend) store(ctx context.Context, key string, e be.Entry, now time.Time) error {
	blob := wire.Encode(e.Meta, e.Payload)
	ok, err := b.p.Set(ctx, key, blob, b.cost(key, blob), b.retain(e.Meta, now))
	if err != nil {
		return err
	}
	if !ok && b.onRejected != nil {
		b.onRejected(key)
	}
	return nil
}

// retain asks the store to keep the blob until the stale deadline, so stale
// serves stay possible for the whole window. Zero means no expiry.
func (b *Backend) retain(m be.Metadata, now time.Time) time.Duration {
	deadline := m.StaleDeadline()
	if deadline.IsZero() {
		return 0
	}
	d := deadline.Sub(now)
	if d < minRetain {
		d = minRetain
	}
	return d
}

func (b *Backend) Remove(ctx context.Context, key string) error {
	return b.p.Del(ctx, key)
}

func (b *Backend) Close(ctx context.Context) error {
	return b.p.Close(ctx)
}
