package sloghooks

import (
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/visitcache"
)

type Options struct {
	// Sampling to avoid floods on churny workloads; 0/1 = log all.
	EvictedEvery     uint64
	InvalidatedEvery uint64
}

// Hooks emits visitcache events to slog, with optional sampling for the
// high-frequency ones.
type Hooks struct {
	l    *slog.Logger
	opts Options

	evictedCtr     atomic.Uint64
	invalidatedCtr atomic.Uint64
}

var _ visitcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Evicted(key visitcache.KeySet, sizeBytes int64) {
	if h.l == nil || !sample(h.opts.EvictedEvery, &h.evictedCtr) {
		return
	}
	h.l.Debug("visitcache.evicted",
		"lids", len(key.Keys()),
		"size", sizeBytes)
}

func (h *Hooks) Invalidated(key visitcache.KeySet, reason string) {
	if h.l == nil || !sample(h.opts.InvalidatedEvery, &h.invalidatedCtr) {
		return
	}
	h.l.Debug("visitcache.invalidated",
		"lids", len(key.Keys()),
		"reason", reason)
}

func (h *Hooks) NegativeCached(key visitcache.KeySet) {
	if h.l == nil {
		return
	}
	h.l.Debug("visitcache.negative_cached",
		"lids", len(key.Keys()))
}
