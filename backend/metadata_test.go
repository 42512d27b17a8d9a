package backend

import (
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		meta Metadata
		now  time.Time
		want State
	}{
		{
			name: "never expires",
			meta: Metadata{CreatedAt: base},
			now:  base.Add(1000 * time.Hour),
			want: StateHit,
		},
		{
			name: "fresh before expiration",
			meta: Metadata{CreatedAt: base, AbsoluteExpiration: base.Add(time.Minute)},
			now:  base.Add(30 * time.Second),
			want: StateHit,
		},
		{
			name: "fresh exactly at expiration",
			meta: Metadata{CreatedAt: base, AbsoluteExpiration: base.Add(time.Minute)},
			now:  base.Add(time.Minute),
			want: StateHit,
		},
		{
			name: "expired without stale window",
			meta: Metadata{CreatedAt: base, AbsoluteExpiration: base.Add(time.Minute)},
			now:  base.Add(time.Minute + time.Nanosecond),
			want: StateExpired,
		},
		{
			name: "stale inside window",
			meta: Metadata{CreatedAt: base, AbsoluteExpiration: base.Add(time.Minute), StaleWindow: 30 * time.Second},
			now:  base.Add(time.Minute + 10*time.Second),
			want: StateStale,
		},
		{
			name: "stale exactly at stale deadline",
			meta: Metadata{CreatedAt: base, AbsoluteExpiration: base.Add(time.Minute), StaleWindow: 30 * time.Second},
			now:  base.Add(time.Minute + 30*time.Second),
			want: StateStale,
		},
		{
			name: "expired past stale deadline",
			meta: Metadata{CreatedAt: base, AbsoluteExpiration: base.Add(time.Minute), StaleWindow: 30 * time.Second},
			now:  base.Add(time.Minute + 30*time.Second + time.Nanosecond),
			want: StateExpired,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.meta.Classify(tc.now); got != tc.want {
				t.Fatalf("Classify = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRefreshed(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	sliding := Metadata{
		CreatedAt:          base,
		AbsoluteExpiration: base.Add(time.Minute),
		SlidingWindow:      time.Minute,
		StaleWindow:        10 * time.Second,
	}
	now := base.Add(40 * time.Second)
	got := sliding.Refreshed(now)
	if !got.AbsoluteExpiration.Equal(now.Add(time.Minute)) {
		t.Fatalf("AbsoluteExpiration = %v, want %v", got.AbsoluteExpiration, now.Add(time.Minute))
	}
	if !got.CreatedAt.Equal(sliding.CreatedAt) || got.SlidingWindow != sliding.SlidingWindow || got.StaleWindow != sliding.StaleWindow {
		t.Fatalf("Refreshed must only move the expiration: %+v", got)
	}

	absolute := Metadata{CreatedAt: base, AbsoluteExpiration: base.Add(time.Minute)}
	if got := absolute.Refreshed(now); !got.AbsoluteExpiration.Equal(absolute.AbsoluteExpiration) {
		t.Fatalf("non-sliding metadata must not be refreshed")
	}
}

func TestStaleDeadline(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if d := (Metadata{CreatedAt: base}).StaleDeadline(); !d.IsZero() {
		t.Fatalf("never-expiring entry should have zero stale deadline, got %v", d)
	}
	m := Metadata{CreatedAt: base, AbsoluteExpiration: base.Add(time.Minute), StaleWindow: 15 * time.Second}
	if d := m.StaleDeadline(); !d.Equal(base.Add(time.Minute + 15*time.Second)) {
		t.Fatalf("StaleDeadline = %v", d)
	}
}
