package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/swrcache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	CorruptEvery uint64
	StaleEvery   uint64
	RejectEvery  uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	corruptCtr atomic.Uint64
	staleCtr   atomic.Uint64
	rejectCtr  atomic.Uint64
}

var _ swrcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sampled(ctr *atomic.Uint64, every uint64) bool {
	if every <= 1 {
		return true
	}
	return ctr.Add(1)%every == 1
}

func (h *Hooks) CorruptEntry(key, reason string) {
	if !sampled(&h.corruptCtr, h.opts.CorruptEvery) {
		return
	}
	h.l.Warn("cache entry purged", slog.String("key", h.redact(key)), slog.String("reason", reason))
}

func (h *Hooks) StaleServed(key string) {
	if !sampled(&h.staleCtr, h.opts.StaleEvery) {
		return
	}
	h.l.Debug("stale entry served", slog.String("key", h.redact(key)))
}

func (h *Hooks) RefreshFailed(key string, err error) {
	// refresh failures are rare and always worth a line
	h.l.Error("background refresh failed", slog.String("key", h.redact(key)), slog.Any("err", err))
}

func (h *Hooks) ProviderRejected(key string) {
	if !sampled(&h.rejectCtr, h.opts.RejectEvery) {
		return
	}
	h.l.Warn("provider rejected write", slog.String("key", h.redact(key)))
}
