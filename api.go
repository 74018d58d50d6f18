package visitcache

import (
	"context"

	"github.com/unkn0wn-root/visitcache/compress"
	"github.com/unkn0wn-root/visitcache/docstore"
)

// VisitCache is the read-through cache over multi-document visits, keyed by
// the exact set of requested lids.
type VisitCache interface {
	// Read returns the cached (or freshly fetched) compressed blob set for
	// exactly the given lids. An empty result means no requested document
	// exists; that is not an error. Callers must serialize mutating and
	// visiting operations touching the same lids externally (see the
	// package documentation).
	Read(ctx context.Context, lids []uint32) (CompressedBlobSet, error)

	// Remove drops the cached grouping containing lid, if any. Call it
	// whenever a document is mutated or deleted.
	Remove(lid uint32)

	// Stats returns a point-in-time snapshot of the counters. For
	// monitoring only; no behavioral effect.
	Stats() Stats
}

// Stats is a read-only statistics snapshot.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Entries   int
	SizeBytes int64 // approximate accounted size of live entries
}

// Options tune the cache. Store and CacheBytes are required; others have
// sensible defaults.
type Options struct {
	// Required
	Store      docstore.Store // backing document store
	CacheBytes int64          // byte budget for compressed entries

	Compression compress.Config // zero value => store uncompressed
	Logger      Logger          // nil => NopLogger
	Hooks       Hooks           // nil => NopHooks
}

func New(opts Options) (VisitCache, error) {
	return newCache(opts)
}
