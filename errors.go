package swrcache

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrEmptyKey is returned for empty or all-whitespace keys.
	ErrEmptyKey = errors.New("swrcache: key must be non-empty and non-whitespace")
	// ErrNilFactory is returned when GetOrSet is given a nil factory.
	ErrNilFactory = errors.New("swrcache: factory is required")
	// ErrBlankTag is returned for empty or all-whitespace tags.
	ErrBlankTag = errors.New("swrcache: tag must be non-empty and non-whitespace")
	// ErrTTLConflict is returned when both an absolute TTL and a sliding
	// window are set on the same layer.
	ErrTTLConflict = errors.New("swrcache: ttl and sliding are mutually exclusive")
	// ErrNegativeDuration is returned for negative TTL, sliding or stale values.
	ErrNegativeDuration = errors.New("swrcache: durations must be positive")
	// ErrUnknownCategory is returned when options name a category that was
	// never registered.
	ErrUnknownCategory = errors.New("swrcache: unknown category")
)

// InvalidateError reports the keys a tag invalidation could not remove.
// Remaining keys were still removed; the operation does not stop at the
// first backend failure.
type InvalidateError struct {
	Tags     []string
	Failures map[string]error
}

func (e *InvalidateError) Error() string {
	keys := make([]string, 0, len(e.Failures))
	for k := range e.Failures {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("swrcache: invalidate tags %v: %d key(s) failed: %v", e.Tags, len(keys), keys)
}

func (e *InvalidateError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, err := range e.Failures {
		errs = append(errs, err)
	}
	return errs
}
