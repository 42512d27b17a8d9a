// Package provider defines the external byte-store contract consumed by the
// byte-mode backend.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the same []byte that was previously passed to Set for a key (no prepended
// or appended metadata, no re-encoding, no mutation). If a store performs
// internal transforms (e.g., compression), they MUST be fully reversed so the
// bytes returned by Get are identical to the bytes provided to Set.
//
// The retention passed to Set is a floor, not a lifetime contract: the byte
// backend asks the store to keep a blob at least until the entry's stale
// deadline and performs its own freshness classification on read. A store
// that drops entries early only costs extra repopulation; one that keeps
// them longer costs storage, never correctness.
package provider

import (
	"context"
	"time"
)

// Provider is a minimal byte store with per-entry retention hints.
// Must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value, retaining it for at least the given duration when the
	// store supports per-entry expiry. Zero retention means keep indefinitely.
	// Cost is advisory; stores without admission control may ignore it.
	// Returns ok=false when the store rejected the write under pressure.
	Set(ctx context.Context, key string, value []byte, cost int64, retain time.Duration) (ok bool, err error)

	// Del removes a key (best-effort).
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}
