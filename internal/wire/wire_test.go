package wire

import (
	"encoding/binary"
	"testing"
)

func sampleFrame() []byte {
	return Encode(2, []Position{{Lid: 1, Size: 3}, {Lid: 7, Size: 0}}, []byte("abc"))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	kind, ps, payload, err := Decode(sampleFrame())
	if err != nil {
		t.Fatal(err)
	}
	if kind != 2 {
		t.Fatalf("kind = %d", kind)
	}
	if len(ps) != 2 || ps[0] != (Position{Lid: 1, Size: 3}) || ps[1] != (Position{Lid: 7, Size: 0}) {
		t.Fatalf("positions = %v", ps)
	}
	if string(payload) != "abc" {
		t.Fatalf("payload = %q", payload)
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	b := sampleFrame()
	b[0] = 'X'
	if _, _, _, err := Decode(b); err != ErrCorrupt {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}
}

func TestDecodeRejectsBadVersion(t *testing.T) {
	b := sampleFrame()
	b[4] = 0xFE
	if _, _, _, err := Decode(b); err != ErrCorrupt {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}
}

func TestDecodeRejectsTrailing(t *testing.T) {
	b := append(sampleFrame(), 0x00)
	if _, _, _, err := Decode(b); err != ErrCorrupt {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}
}

func TestDecodeRejectsTruncated(t *testing.T) {
	b := sampleFrame()
	for cut := 1; cut < len(b); cut++ {
		if _, _, _, err := Decode(b[:cut]); err != ErrCorrupt {
			t.Fatalf("cut=%d: err = %v, want ErrCorrupt", cut, err)
		}
	}
}

// TestDecodeFakeCountNotPrealloc verifies an inflated position count is
// rejected before any allocation sized from it.
func TestDecodeFakeCountNotPrealloc(t *testing.T) {
	b := sampleFrame()
	binary.BigEndian.PutUint32(b[6:10], 0xFFFFFFFF)
	if _, _, _, err := Decode(b); err != ErrCorrupt {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}
}

func TestEmptyFrame(t *testing.T) {
	kind, ps, payload, err := Decode(Encode(0, nil, nil))
	if err != nil {
		t.Fatal(err)
	}
	if kind != 0 || len(ps) != 0 || len(payload) != 0 {
		t.Fatalf("kind=%d ps=%v payload=%q", kind, ps, payload)
	}
}
