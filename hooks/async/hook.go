// usage:
//
// import (
//
//	"log/slog"
//
//	"github.com/unkn0wn-root/visitcache"
//	"github.com/unkn0wn-root/visitcache/hooks/async"
//	"github.com/unkn0wn-root/visitcache/sloghooks"
//
// )
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    EvictedEvery: 10, // sample: ~every 10th eviction
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
//	cache, _ := visitcache.New(visitcache.Options{
//	    Store:      store,
//	    CacheBytes: 64 << 20,
//	    Hooks:      hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/visitcache"
)

type Hooks struct {
	inner visitcache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ visitcache.Hooks = (*Hooks)(nil)

func New(inner visitcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) Evicted(k visitcache.KeySet, sz int64) { h.try(func() { h.inner.Evicted(k, sz) }) }
func (h *Hooks) NegativeCached(k visitcache.KeySet)    { h.try(func() { h.inner.NegativeCached(k) }) }
func (h *Hooks) Invalidated(k visitcache.KeySet, r string) {
	h.try(func() { h.inner.Invalidated(k, r) })
}
