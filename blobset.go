package visitcache

import "slices"

// LidPosition locates one blob inside a BlobSet's buffer. Offsets are
// contiguous: each position starts where the previous one ended.
type LidPosition struct {
	Lid    uint32
	Offset uint32
	Size   uint32
}

// Visits typically carry many documents; starting the buffer this large
// skips the first few growth steps on the miss path.
const blobSetSizeHint = 64 * 1024

// BlobSet packs the blobs of one visit into a single contiguous buffer,
// located by lid through a position index. Append is the only mutator;
// positions are never removed or reordered.
//
// The zero value is an empty set ready for use.
type BlobSet struct {
	positions []LidPosition
	buffer    []byte
}

// newBlobSet wraps an already-packed buffer with its positions. Used when
// decompressing a CompressedBlobSet.
func newBlobSet(positions []LidPosition, buffer []byte) *BlobSet {
	return &BlobSet{positions: positions, buffer: buffer}
}

// Append records blob for lid at the current end of the buffer.
func (b *BlobSet) Append(lid uint32, blob []byte) {
	if b.buffer == nil {
		b.buffer = slices.Grow([]byte(nil), blobSetSizeHint)
	}
	b.positions = append(b.positions, LidPosition{
		Lid:    lid,
		Offset: uint32(len(b.buffer)),
		Size:   uint32(len(blob)),
	})
	b.buffer = append(b.buffer, blob...)
}

// Get returns the blob stored for lid, or nil when absent. Absence is not an
// error; callers read an empty result as "not found". The returned slice
// aliases the internal buffer.
func (b *BlobSet) Get(lid uint32) []byte {
	for _, pos := range b.positions {
		if pos.Lid == lid {
			return b.buffer[pos.Offset : pos.Offset+pos.Size]
		}
	}
	return nil
}

// Positions returns the position index. Treat it as read-only.
func (b *BlobSet) Positions() []LidPosition { return b.positions }

// Buffer returns the packed buffer. Treat it as read-only.
func (b *BlobSet) Buffer() []byte { return b.buffer }

// packedSize is the logical buffer length implied by positions.
func packedSize(positions []LidPosition) int {
	if len(positions) == 0 {
		return 0
	}
	last := positions[len(positions)-1]
	return int(last.Offset) + int(last.Size)
}
