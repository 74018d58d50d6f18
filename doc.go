// Package visitcache implements a read-through cache for multi-document
// "visit" reads against an underlying document store, keyed by the exact set
// of requested lids. A cache value is the whole visit: every blob packed
// into one contiguous buffer and compressed as a unit.
//
// Components:
//   - KeySet: canonical sorted set of lids identifying one visit.
//   - BlobSet: packed buffer of blobs plus a (lid, offset, size) index.
//   - CompressedBlobSet: compressed-at-rest BlobSet, the cache's value type.
//   - docstore.Store: the multi-get document store misses are read from.
//   - compress.Config: whole-buffer compression (none, lz4, zstd).
//
// At most one cached grouping per lid is live at a time: a request whose
// KeySet differs from but overlaps a cached entry invalidates that entry
// before fetching. Eviction is least-recently-used within a byte budget, and
// the lid indexes are maintained atomically with every insert and removal.
//
// Concurrency: the structural lock is never held across the backing fetch,
// and concurrent identical requests share one fetch. Two different,
// overlapping KeySets fetched concurrently will not observe each other's
// overlap; callers must serialize mutating and visiting operations touching
// the same lids externally. This layer is a volatile in-memory accelerator
// with no durability or cross-process coherence.
package visitcache
