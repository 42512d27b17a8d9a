// Package backend defines the storage abstraction used by swrcache.
//
// A Backend stores entries (metadata + value or payload) and is responsible
// for classifying every read against its own clock: callers receive Hit,
// Stale, Expired or Miss, never a raw entry they have to judge themselves.
// On Expired the backend must have already removed the key before returning.
//
// Two modes exist. An object backend keeps live Go values in process; a byte
// backend persists opaque payloads in an external store. The mode is fixed at
// construction and the façade never mixes entries across modes: an object
// backend rejects entries carrying a payload and a byte backend rejects
// entries carrying a value.
package backend

import (
	"context"
	"errors"
)

// Mode identifies what an Entry carries for a given backend.
type Mode int8

const (
	// ModeObject stores live values in process.
	ModeObject Mode = iota
	// ModeByte stores serialized payloads, typically in an external store.
	ModeByte
)

func (m Mode) String() string {
	switch m {
	case ModeObject:
		return "object"
	case ModeByte:
		return "byte"
	default:
		return "unknown"
	}
}

// State classifies a Get result against the backend's clock.
type State int8

const (
	// StateMiss means the key is not present.
	StateMiss State = iota
	// StateHit means the entry is fresh.
	StateHit
	// StateStale means the entry is past expiration but within its stale window.
	StateStale
	// StateExpired means the entry is past its stale deadline; the backend
	// has removed the key.
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateMiss:
		return "miss"
	case StateHit:
		return "hit"
	case StateStale:
		return "stale"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Entry is the cached unit. Exactly one of Value (object mode) or Payload
// (byte mode) is populated; the other stays empty.
type Entry struct {
	Meta    Metadata
	Value   any
	Payload []byte
}

// GetResult carries the classification and, for Hit and Stale, the entry.
type GetResult struct {
	State State
	Entry Entry
}

// ErrEntryMode is returned when an entry's populated side does not match the
// backend's mode. This is a programming error in the caller.
var ErrEntryMode = errors.New("swrcache: entry does not match backend mode")

// Backend is the uniform store contract consumed by the façade.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Get classifies the entry under key. On StateHit for a sliding entry the
	// backend refreshes the absolute expiration and writes the entry back
	// before returning. On StateExpired the key has been removed.
	Get(ctx context.Context, key string) (GetResult, error)

	// Set replaces the entry under key unconditionally.
	Set(ctx context.Context, key string, e Entry) error

	// Remove deletes the key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Mode reports what this backend stores; fixed at construction.
	Mode() Mode

	// Close releases resources held by the backend.
	Close(ctx context.Context) error
}
