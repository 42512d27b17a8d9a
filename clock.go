package swrcache

import "github.com/unkn0wn-root/swrcache/backend"

// Clock is the time source used for TTL resolution. Backends carry their own
// Clock; give both the same instance when injecting a fake in tests.
type Clock = backend.Clock

// SystemClock returns the default UTC wall clock.
func SystemClock() Clock { return backend.SystemClock() }
