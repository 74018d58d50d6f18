package visitcache

import (
	"context"
	"fmt"

	"github.com/unkn0wn-root/visitcache/codec"
)

// Typed is a decoding view over a VisitCache: each blob of a visit is
// decoded with a codec.Codec, returning one value per lid found. Lids with
// no stored document are absent from the map.
type Typed[V any] struct {
	cache VisitCache
	codec codec.Codec[V]
}

func NewTyped[V any](cache VisitCache, c codec.Codec[V]) Typed[V] {
	return Typed[V]{cache: cache, codec: c}
}

func (t Typed[V]) Read(ctx context.Context, lids []uint32) (map[uint32]V, error) {
	cbs, err := t.cache.Read(ctx, lids)
	if err != nil {
		return nil, err
	}
	bs, err := cbs.BlobSet()
	if err != nil {
		return nil, err
	}
	buf := bs.Buffer()
	out := make(map[uint32]V, len(bs.Positions()))
	for _, pos := range bs.Positions() {
		v, err := t.codec.Decode(buf[pos.Offset : pos.Offset+pos.Size])
		if err != nil {
			return nil, fmt.Errorf("visitcache: decode lid %d: %w", pos.Lid, err)
		}
		out[pos.Lid] = v
	}
	return out, nil
}
