package swrcache

import (
	"fmt"
	"strings"
	"time"
)

// EntryOptions is the per-operation options record accepted by Set and
// GetOrSet. Zero durations mean "unset, use the next layer"; negative
// durations are a caller error.
type EntryOptions struct {
	// TTL is an absolute time-to-live. Mutually exclusive with Sliding.
	TTL time.Duration
	// Sliding is a sliding expiration window; expiry resets on every fresh read.
	Sliding time.Duration
	// StaleTTL enables stale-while-revalidate for this entry with the given
	// stale window past expiration.
	StaleTTL time.Duration
	// Tags label the entry for bulk invalidation.
	Tags []string
	// Category selects a registered category default set.
	Category string
}

func (o EntryOptions) validate() error {
	if o.TTL < 0 || o.Sliding < 0 || o.StaleTTL < 0 {
		return ErrNegativeDuration
	}
	if o.TTL > 0 && o.Sliding > 0 {
		return ErrTTLConflict
	}
	for _, t := range o.Tags {
		if strings.TrimSpace(t) == "" {
			return ErrBlankTag
		}
	}
	return nil
}

// validateCategory checks an options record registered as a category default.
// Categories carry lifetime fields only; per-entry fields are rejected so a
// category cannot silently tag or re-categorize entries.
func validateCategory(name string, o EntryOptions) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("swrcache: category name must be non-empty and non-whitespace")
	}
	if err := o.validate(); err != nil {
		return fmt.Errorf("swrcache: category %q: %w", name, err)
	}
	if len(o.Tags) > 0 || o.Category != "" {
		return fmt.Errorf("swrcache: category %q: only ttl, sliding and staleTtl may be set", name)
	}
	return nil
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	return nil
}
