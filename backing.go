package visitcache

import (
	"context"

	"github.com/unkn0wn-root/visitcache/compress"
	"github.com/unkn0wn-root/visitcache/docstore"
)

// backingStore bridges a cache miss to the document store: one multi-get for
// exactly the requested lids, packed into a BlobSet and compressed.
type backingStore struct {
	store       docstore.Store
	compression compress.Config
}

// read fetches the blobs for key. found is false when no requested lid had a
// non-empty blob; the empty result is still cacheable as a negative entry.
func (b backingStore) read(ctx context.Context, key KeySet) (cbs CompressedBlobSet, found bool, err error) {
	seq, err := b.store.MultiGet(ctx, key.Keys())
	if err != nil {
		return CompressedBlobSet{}, false, err
	}
	var bs BlobSet
	for lid, blob := range seq {
		if len(blob) == 0 { // zero length means not stored
			continue
		}
		bs.Append(lid, blob)
	}
	cbs, err = NewCompressedBlobSet(b.compression, &bs)
	if err != nil {
		return CompressedBlobSet{}, false, err
	}
	return cbs, !cbs.Empty(), nil
}
