// Package wire frames a compressed blob set for transport or staging.
// Framing only: no durability or compatibility promises beyond the version
// byte. Decoding is strictly validated; anything off is ErrCorrupt.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const version byte = 1

var (
	ErrCorrupt = errors.New("visitcache: corrupt frame")
	magic4     = [...]byte{'V', 'C', 'B', 'S'}
)

// Position is one index entry of the frame. Offsets are not stored; they are
// implied by the cumulative sizes.
type Position struct {
	Lid  uint32
	Size uint32
}

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Frame: magic(4) | ver(1) | kind(1) | n(u32 be) | {lid(u32 be) size(u32 be)}*n | plen(u32 be) | payload(plen)
func Encode(kind byte, positions []Position, payload []byte) []byte {
	total := 4 + 1 + 1 + 4 + 8*len(positions) + 4 + len(payload)

	var buf bytes.Buffer
	buf.Grow(total)

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kind)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(positions)))
	buf.Write(u4[:])

	for _, p := range positions {
		binary.BigEndian.PutUint32(u4[:], p.Lid)
		buf.Write(u4[:])
		binary.BigEndian.PutUint32(u4[:], p.Size)
		buf.Write(u4[:])
	}

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])
	buf.Write(payload)

	return buf.Bytes()
}

// Decode parses a frame produced by Encode. The returned payload aliases b.
func Decode(b []byte) (kind byte, positions []Position, payload []byte, err error) {
	const hdr = 4 + 1 + 1 + 4
	if len(b) < hdr || !hasMagic(b) || b[4] != version {
		return 0, nil, nil, ErrCorrupt
	}
	kind = b[5]

	off := 6
	n := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4

	// bound n by the bytes actually present before allocating
	if n < 0 || int64(n)*8 > int64(len(b)-off) {
		return 0, nil, nil, ErrCorrupt
	}

	positions = make([]Position, n)
	for i := 0; i < n; i++ {
		positions[i].Lid = binary.BigEndian.Uint32(b[off : off+4])
		positions[i].Size = binary.BigEndian.Uint32(b[off+4 : off+8])
		off += 8
	}

	if off+4 > len(b) {
		return 0, nil, nil, ErrCorrupt
	}
	plen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if plen < 0 || plen != len(b)-off { // no trailing bytes allowed
		return 0, nil, nil, ErrCorrupt
	}

	return kind, positions, b[off:], nil
}
