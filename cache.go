package visitcache

import (
	"container/list"
	"context"
	"fmt"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/singleflight"
)

// entry is one live cache value. ck is the exact-set map key derived from
// key, kept to avoid re-encoding on removal.
type entry struct {
	ck   string
	key  KeySet
	val  CompressedBlobSet
	size int64
}

// cache is the bounded compressed visit cache. The structural lock guards
// the entry table, the eviction order and the index mirrors; it is held for
// short bookkeeping sections only and never across a backing fetch.
type cache struct {
	backing backingStore
	log     Logger
	hooks   Hooks

	// collapses concurrent fetches for the same exact KeySet
	flight singleflight.Group

	mu        sync.Mutex
	capacity  int64
	size      int64
	hits      uint64
	misses    uint64
	entries   map[string]*list.Element
	evictList *list.List // front = most recently used

	// Mirrors of the live entries, re-established atomically with every
	// insert, removal and eviction: every lid of every live entry points at
	// that entry's representative (its minimum lid), and every
	// representative points at exactly one live KeySet.
	liveLids *roaring.Bitmap
	lidToRep map[uint32]uint32
	repToKey map[uint32]KeySet
}

func newCache(opts Options) (*cache, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("visitcache: store is required")
	}
	if opts.CacheBytes <= 0 {
		return nil, fmt.Errorf("visitcache: cache byte budget is required")
	}

	c := &cache{
		backing:   backingStore{store: opts.Store, compression: opts.Compression},
		capacity:  opts.CacheBytes,
		entries:   make(map[string]*list.Element),
		evictList: list.New(),
		liveLids:  roaring.New(),
		lidToRep:  make(map[uint32]uint32),
		repToKey:  make(map[uint32]KeySet),
	}

	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	return c, nil
}

func (c *cache) Read(ctx context.Context, lids []uint32) (CompressedBlobSet, error) {
	return c.readSet(ctx, NewKeySet(lids))
}

func (c *cache) readSet(ctx context.Context, key KeySet) (CompressedBlobSet, error) {
	if key.Empty() {
		return CompressedBlobSet{}, nil
	}
	ck := key.cacheKey()

	// A cached entry keyed by some other grouping that shares any lid with
	// this request is stale with respect to it: at most one canonical
	// grouping per lid may be live at a time.
	var dropped []KeySet
	c.mu.Lock()
	if _, live := c.entries[ck]; !live {
		dropped = c.invalidateOverlappingLocked(key)
	}
	c.mu.Unlock()

	for _, k := range dropped {
		c.hooks.Invalidated(k, "overlap")
	}
	if len(dropped) > 0 {
		c.log.Debug("invalidated overlapping visit sets", Fields{"count": len(dropped)})
	}

	return c.read(ctx, ck, key)
}

// invalidateOverlappingLocked evicts every live entry sharing a lid with key
// and returns the dropped KeySets.
func (c *cache) invalidateOverlappingLocked(key KeySet) []KeySet {
	reps := make(map[uint32]struct{})
	for _, lid := range key.Keys() {
		if !c.liveLids.Contains(lid) {
			continue
		}
		if rep, ok := c.lidToRep[lid]; ok {
			reps[rep] = struct{}{}
		}
	}
	if len(reps) == 0 {
		return nil
	}
	dropped := make([]KeySet, 0, len(reps))
	for rep := range reps {
		k, ok := c.repToKey[rep]
		if !ok {
			continue
		}
		if c.removeLocked(k) {
			dropped = append(dropped, k)
		}
	}
	return dropped
}

// read is the ordinary get-or-compute half of a visit. The lock is dropped
// before the backing fetch so slow store I/O for one key never blocks
// unrelated cache traffic.
func (c *cache) read(ctx context.Context, ck string, key KeySet) (CompressedBlobSet, error) {
	c.mu.Lock()
	if el, ok := c.entries[ck]; ok {
		c.hits++
		c.evictList.MoveToFront(el)
		val := el.Value.(*entry).val
		c.mu.Unlock()
		return val, nil
	}
	c.misses++
	c.mu.Unlock()

	v, err, _ := c.flight.Do(ck, func() (any, error) {
		// another caller may have inserted while we waited on the flight
		c.mu.Lock()
		if el, ok := c.entries[ck]; ok {
			c.evictList.MoveToFront(el)
			val := el.Value.(*entry).val
			c.mu.Unlock()
			return val, nil
		}
		c.mu.Unlock()

		val, found, err := c.backing.read(ctx, key)
		if err != nil {
			return CompressedBlobSet{}, err
		}
		c.insert(ck, key, val)
		if !found {
			c.hooks.NegativeCached(key)
			c.log.Debug("cached negative visit result", Fields{"lids": len(key.Keys())})
		}
		return val, nil
	})
	if err != nil {
		return CompressedBlobSet{}, err
	}
	return v.(CompressedBlobSet), nil
}

// insert stores val keyed by the exact set, updating the index mirrors and
// evicting least-recently-used entries back under the byte budget.
func (c *cache) insert(ck string, key KeySet, val CompressedBlobSet) {
	sz := int64(len(ck)) + val.Size()

	c.mu.Lock()
	if el, ok := c.entries[ck]; ok {
		// identical key raced us in; refresh in place, mirrors unchanged
		e := el.Value.(*entry)
		c.size += sz - e.size
		e.val, e.size = val, sz
		c.evictList.MoveToFront(el)
		evicted := c.evictLocked()
		c.mu.Unlock()
		c.notifyEvicted(evicted)
		return
	}
	if sz > c.capacity {
		// would evict everything and still not fit; hand it back uncached
		c.mu.Unlock()
		c.log.Debug("visit set exceeds cache budget, not cached", Fields{"size": sz})
		return
	}
	el := c.evictList.PushFront(&entry{ck: ck, key: key, val: val, size: sz})
	c.entries[ck] = el
	c.size += sz
	c.onInsertLocked(key)
	evicted := c.evictLocked()
	c.mu.Unlock()
	c.notifyEvicted(evicted)
}

// evictLocked drops least-recently-used entries until the accounted size is
// back within budget. Runs through the same removal path as explicit
// invalidation so the index mirrors cannot drift.
func (c *cache) evictLocked() []*entry {
	var evicted []*entry
	for c.size > c.capacity {
		el := c.evictList.Back()
		if el == nil {
			break
		}
		evicted = append(evicted, el.Value.(*entry))
		c.removeElementLocked(el)
	}
	return evicted
}

func (c *cache) notifyEvicted(evicted []*entry) {
	for _, e := range evicted {
		c.hooks.Evicted(e.key, e.size)
		c.log.Debug("evicted visit set", Fields{"lids": len(e.key.Keys()), "size": e.size})
	}
}

func (c *cache) removeLocked(key KeySet) bool {
	el, ok := c.entries[key.cacheKey()]
	if !ok {
		return false
	}
	c.removeElementLocked(el)
	return true
}

func (c *cache) removeElementLocked(el *list.Element) {
	e := el.Value.(*entry)
	c.evictList.Remove(el)
	delete(c.entries, e.ck)
	c.size -= e.size
	c.onRemoveLocked(e.key)
}

// onInsertLocked mirrors key into the secondary indexes. The representative
// is the minimum lid, i.e. the first since sorted.
func (c *cache) onInsertLocked(key KeySet) {
	keys := key.Keys()
	rep := keys[0]
	c.repToKey[rep] = key
	for _, lid := range keys {
		c.lidToRep[lid] = rep
		c.liveLids.Add(lid)
	}
}

func (c *cache) onRemoveLocked(key KeySet) {
	keys := key.Keys()
	for _, lid := range keys {
		delete(c.lidToRep, lid)
		c.liveLids.Remove(lid)
	}
	delete(c.repToKey, keys[0])
}

// Remove drops the grouping containing lid, if any is live.
func (c *cache) Remove(lid uint32) {
	c.mu.Lock()
	rep, ok := c.lidToRep[lid]
	if !ok {
		c.mu.Unlock()
		return
	}
	key, ok := c.repToKey[rep]
	if !ok {
		c.mu.Unlock()
		return
	}
	c.removeLocked(key)
	c.mu.Unlock()

	c.hooks.Invalidated(key, "remove")
	c.log.Debug("removed visit set", Fields{"lid": lid, "lids": len(key.Keys())})
}

func (c *cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Entries:   len(c.entries),
		SizeBytes: c.size,
	}
}
