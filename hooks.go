package visitcache

// Hooks are lightweight callbacks for high-signal cache events.
// Implementations MUST be cheap and non-blocking; the cache calls them on
// hot paths, though never while holding its structural lock.
type Hooks interface {
	// An entry was evicted to get back under the byte budget.
	Evicted(key KeySet, sizeBytes int64)

	// An entry was dropped before aging out.
	// reason ∈ {"overlap", "remove"}
	Invalidated(key KeySet, reason string)

	// A fetch found nothing and the empty result was cached.
	NegativeCached(key KeySet)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) Evicted(KeySet, int64)      {}
func (NopHooks) Invalidated(KeySet, string) {}
func (NopHooks) NegativeCached(KeySet)      {}
