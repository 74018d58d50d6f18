package visitcache

import (
	"bytes"
	"testing"
)

func TestBlobSetAppendGet(t *testing.T) {
	var bs BlobSet
	bs.Append(3, []byte("three"))
	bs.Append(1, []byte("one"))
	bs.Append(7, nil)
	bs.Append(2, []byte("two"))

	if got := bs.Get(1); !bytes.Equal(got, []byte("one")) {
		t.Fatalf("Get(1) = %q", got)
	}
	if got := bs.Get(3); !bytes.Equal(got, []byte("three")) {
		t.Fatalf("Get(3) = %q", got)
	}
	if got := bs.Get(99); got != nil {
		t.Fatalf("Get(99) = %q, want nil", got)
	}
	// zero-length append is recorded with an empty range
	if got := bs.Get(7); len(got) != 0 {
		t.Fatalf("Get(7) = %q, want empty", got)
	}
}

func TestBlobSetPositionsContiguous(t *testing.T) {
	var bs BlobSet
	blobs := [][]byte{[]byte("a"), []byte("bcd"), []byte(""), []byte("efgh")}
	for i, b := range blobs {
		bs.Append(uint32(i), b)
	}

	var off uint32
	for i, pos := range bs.Positions() {
		if pos.Offset != off {
			t.Fatalf("position %d offset = %d, want %d", i, pos.Offset, off)
		}
		if int(pos.Size) != len(blobs[i]) {
			t.Fatalf("position %d size = %d, want %d", i, pos.Size, len(blobs[i]))
		}
		off += pos.Size
	}
	if packedSize(bs.Positions()) != len(bs.Buffer()) {
		t.Fatalf("packedSize=%d, buffer=%d", packedSize(bs.Positions()), len(bs.Buffer()))
	}
}

func TestBlobSetDuplicateLidReturnsFirst(t *testing.T) {
	var bs BlobSet
	bs.Append(5, []byte("first"))
	bs.Append(5, []byte("second"))
	if got := bs.Get(5); !bytes.Equal(got, []byte("first")) {
		t.Fatalf("Get(5) = %q, want first occurrence", got)
	}
}

func TestEmptyBlobSet(t *testing.T) {
	var bs BlobSet
	if bs.Get(1) != nil {
		t.Fatalf("empty set must return nil")
	}
	if packedSize(bs.Positions()) != 0 {
		t.Fatalf("empty set packed size != 0")
	}
}
