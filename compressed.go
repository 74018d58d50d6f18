package visitcache

import (
	"fmt"
	"slices"

	"github.com/unkn0wn-root/visitcache/compress"
	"github.com/unkn0wn-root/visitcache/internal/wire"
)

// Approximate in-memory cost of one LidPosition, for cache byte accounting.
const lidPositionFootprint = 12

// CompressedBlobSet is the compressed-at-rest form of a BlobSet and the
// cache's value type. The position index stays uncompressed so the
// pre-compression size and per-blob boundaries are known without touching
// the payload, which is compressed as one unit. Immutable after
// construction; safe to share across goroutines.
//
// The zero value is the empty set.
type CompressedBlobSet struct {
	kind      compress.Type
	positions []LidPosition
	buffer    []byte
}

// NewCompressedBlobSet compresses bs as one unit. An empty BlobSet yields
// the empty set. The kind stored is the one the compressor actually used,
// which may be None even when cfg asked for more. The BlobSet's index and,
// for incompressible payloads, its buffer are retained; bs must not be
// mutated afterwards.
func NewCompressedBlobSet(cfg compress.Config, bs *BlobSet) (CompressedBlobSet, error) {
	if len(bs.Positions()) == 0 {
		return CompressedBlobSet{}, nil
	}
	kind, buf, err := compress.Compress(cfg, bs.Buffer())
	if err != nil {
		return CompressedBlobSet{}, err
	}
	return CompressedBlobSet{kind: kind, positions: bs.Positions(), buffer: buf}, nil
}

// BlobSet decompresses into a freshly allocated buffer sized from the
// position index and wraps it with the stored positions. Safe to call
// repeatedly and from multiple goroutines.
func (c CompressedBlobSet) BlobSet() (*BlobSet, error) {
	if len(c.positions) == 0 {
		return &BlobSet{}, nil
	}
	raw, err := compress.Decompress(c.kind, packedSize(c.positions), c.buffer)
	if err != nil {
		return nil, err
	}
	return newBlobSet(c.positions, raw), nil
}

// Empty reports whether the set holds no blobs. A backing-store read uses
// this to signal that nothing was found for any requested lid.
func (c CompressedBlobSet) Empty() bool { return len(c.positions) == 0 }

// Kind returns the compression codec the payload is stored with.
func (c CompressedBlobSet) Kind() compress.Type { return c.kind }

// Size approximates the in-cache memory cost: the position index footprint
// plus the compressed payload length. Not exact resident bytes.
func (c CompressedBlobSet) Size() int64 {
	return int64(len(c.positions))*lidPositionFootprint + int64(len(c.buffer))
}

// MarshalBinary frames the set for transport or staging. Offsets are
// implied by the position sizes and not stored.
func (c CompressedBlobSet) MarshalBinary() ([]byte, error) {
	ps := make([]wire.Position, len(c.positions))
	for i, p := range c.positions {
		ps[i] = wire.Position{Lid: p.Lid, Size: p.Size}
	}
	return wire.Encode(byte(c.kind), ps, c.buffer), nil
}

// UnmarshalBinary parses a frame produced by MarshalBinary. The payload is
// copied out of b.
func (c *CompressedBlobSet) UnmarshalBinary(b []byte) error {
	kind, ps, payload, err := wire.Decode(b)
	if err != nil {
		return err
	}
	if compress.Type(kind) > compress.ZSTD {
		return fmt.Errorf("%w: compression kind %d", wire.ErrCorrupt, kind)
	}
	if len(ps) == 0 {
		*c = CompressedBlobSet{}
		return nil
	}
	positions := make([]LidPosition, len(ps))
	var off uint32
	for i, p := range ps {
		positions[i] = LidPosition{Lid: p.Lid, Offset: off, Size: p.Size}
		off += p.Size
	}
	*c = CompressedBlobSet{
		kind:      compress.Type(kind),
		positions: positions,
		buffer:    slices.Clone(payload),
	}
	return nil
}
