package visitcache

import (
	"bytes"
	"errors"
	"testing"

	"github.com/unkn0wn-root/visitcache/compress"
	"github.com/unkn0wn-root/visitcache/internal/wire"
)

func buildBlobSet() *BlobSet {
	var bs BlobSet
	bs.Append(1, bytes.Repeat([]byte("lorem ipsum "), 50))
	bs.Append(2, []byte("short"))
	bs.Append(9, bytes.Repeat([]byte{0xAB}, 1024))
	return &bs
}

// TestCompressedRoundTrip verifies byte-identical blobs after a
// compress/decompress cycle for every supported kind.
func TestCompressedRoundTrip(t *testing.T) {
	for _, kind := range []compress.Type{compress.None, compress.LZ4, compress.ZSTD} {
		bs := buildBlobSet()
		cbs, err := NewCompressedBlobSet(compress.Config{Type: kind}, bs)
		if err != nil {
			t.Fatalf("kind %d: %v", kind, err)
		}
		got, err := cbs.BlobSet()
		if err != nil {
			t.Fatalf("kind %d: %v", kind, err)
		}
		for _, lid := range []uint32{1, 2, 9} {
			if !bytes.Equal(got.Get(lid), bs.Get(lid)) {
				t.Fatalf("kind %d: lid %d mismatch", kind, lid)
			}
		}
	}
}

// TestCompressedIdempotentDecompress verifies repeated decompression of one
// immutable value yields equal results.
func TestCompressedIdempotentDecompress(t *testing.T) {
	cbs, err := NewCompressedBlobSet(compress.Config{Type: compress.LZ4}, buildBlobSet())
	if err != nil {
		t.Fatal(err)
	}
	a, err := cbs.BlobSet()
	if err != nil {
		t.Fatal(err)
	}
	b, err := cbs.BlobSet()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Buffer(), b.Buffer()) {
		t.Fatalf("two decompressions differ")
	}
	// fresh buffer per call: writing into one must not leak into the other
	if len(a.Buffer()) > 0 {
		a.Buffer()[0] ^= 0xFF
		if bytes.Equal(a.Buffer()[:1], b.Buffer()[:1]) {
			t.Fatalf("decompressed buffers are shared")
		}
	}
}

func TestCompressedEmpty(t *testing.T) {
	cbs, err := NewCompressedBlobSet(compress.Config{Type: compress.ZSTD}, &BlobSet{})
	if err != nil {
		t.Fatal(err)
	}
	if !cbs.Empty() {
		t.Fatalf("empty BlobSet must yield empty set")
	}
	got, err := cbs.BlobSet()
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Positions()) != 0 {
		t.Fatalf("empty set decompressed to %d positions", len(got.Positions()))
	}
	if cbs.Size() != 0 {
		t.Fatalf("empty set size = %d", cbs.Size())
	}
}

// TestCompressedKindIsActual verifies the stored kind reflects what the
// compressor used, not what was requested.
func TestCompressedKindIsActual(t *testing.T) {
	var bs BlobSet
	bs.Append(1, []byte("x")) // below the min-size threshold
	cbs, err := NewCompressedBlobSet(compress.Config{Type: compress.ZSTD}, &bs)
	if err != nil {
		t.Fatal(err)
	}
	if cbs.Kind() != compress.None {
		t.Fatalf("kind = %d, want none for tiny payload", cbs.Kind())
	}
	got, err := cbs.BlobSet()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.Get(1), []byte("x")) {
		t.Fatalf("round trip through uncompressed fallback failed")
	}
}

func TestCompressedSizeAccounting(t *testing.T) {
	bs := buildBlobSet()
	cbs, err := NewCompressedBlobSet(compress.Config{}, bs)
	if err != nil {
		t.Fatal(err)
	}
	want := int64(len(bs.Positions()))*lidPositionFootprint + int64(len(bs.Buffer()))
	if cbs.Size() != want {
		t.Fatalf("size = %d, want %d", cbs.Size(), want)
	}
}

// ==============================
// Binary framing
// ==============================

func TestCompressedMarshalRoundTrip(t *testing.T) {
	for _, kind := range []compress.Type{compress.None, compress.LZ4, compress.ZSTD} {
		orig, err := NewCompressedBlobSet(compress.Config{Type: kind}, buildBlobSet())
		if err != nil {
			t.Fatal(err)
		}
		frame, err := orig.MarshalBinary()
		if err != nil {
			t.Fatal(err)
		}
		var got CompressedBlobSet
		if err := got.UnmarshalBinary(frame); err != nil {
			t.Fatalf("kind %d: %v", kind, err)
		}
		if got.Kind() != orig.Kind() {
			t.Fatalf("kind %d -> %d after round trip", orig.Kind(), got.Kind())
		}
		want := buildBlobSet()
		bs, err := got.BlobSet()
		if err != nil {
			t.Fatal(err)
		}
		for _, lid := range []uint32{1, 2, 9} {
			if !bytes.Equal(bs.Get(lid), want.Get(lid)) {
				t.Fatalf("kind %d: lid %d mismatch after frame round trip", kind, lid)
			}
		}
	}
}

func TestCompressedMarshalEmpty(t *testing.T) {
	var empty CompressedBlobSet
	frame, err := empty.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	var got CompressedBlobSet
	if err := got.UnmarshalBinary(frame); err != nil {
		t.Fatal(err)
	}
	if !got.Empty() {
		t.Fatalf("empty set not empty after round trip")
	}
}

func TestUnmarshalRejectsBadKind(t *testing.T) {
	orig, err := NewCompressedBlobSet(compress.Config{}, buildBlobSet())
	if err != nil {
		t.Fatal(err)
	}
	frame, err := orig.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	frame[5] = 0x7F // kind byte
	var got CompressedBlobSet
	if err := got.UnmarshalBinary(frame); !errors.Is(err, wire.ErrCorrupt) {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}
}

// TestDecompressCorruptPayload verifies a mangled compressed buffer surfaces
// as a hard failure, not an empty result.
func TestDecompressCorruptPayload(t *testing.T) {
	bs := buildBlobSet()
	cbs, err := NewCompressedBlobSet(compress.Config{Type: compress.ZSTD}, bs)
	if err != nil {
		t.Fatal(err)
	}
	if cbs.Kind() != compress.ZSTD {
		t.Skip("payload did not compress; nothing to corrupt")
	}
	frame, err := cbs.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	frame[len(frame)-1] ^= 0xFF
	var mangled CompressedBlobSet
	if err := mangled.UnmarshalBinary(frame); err != nil {
		t.Fatal(err) // frame itself is structurally valid
	}
	if _, err := mangled.BlobSet(); !errors.Is(err, compress.ErrCorrupt) {
		t.Fatalf("err = %v, want compress.ErrCorrupt", err)
	}
}
