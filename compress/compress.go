// Package compress binds whole-buffer compression for visit payloads.
// It does not implement a codec itself: LZ4 block compression comes from
// pierrec/lz4 and zstd from klauspost/compress.
package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type identifies the codec a buffer was compressed with.
type Type uint8

const (
	// None stores the buffer uncompressed.
	None Type = iota
	// LZ4 block compression: fast, moderate ratio.
	LZ4
	// ZSTD block compression: better ratio, more CPU.
	ZSTD
)

// ErrCorrupt is returned when a compressed buffer cannot be decoded or does
// not decode to the expected length. It is fatal; this layer never retries.
var ErrCorrupt = errors.New("compress: corrupt block")

const (
	defaultMinSize  = 64
	defaultMaxRatio = 0.9
)

// Config selects the codec and when to bother using it.
type Config struct {
	// Type is the requested codec. Compress may still settle on None when
	// the buffer is too small or does not shrink enough.
	Type Type
	// MinSize skips compression of buffers shorter than this. 0 => 64.
	MinSize int
	// MaxRatio is the compressed/original size above which the buffer is
	// stored raw. 0 => 0.9.
	MaxRatio float64
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Compress compresses src per cfg and returns the codec actually used.
// The result is None whenever compression would not pay for itself; in that
// case the returned buffer is src itself, not a copy.
func Compress(cfg Config, src []byte) (Type, []byte, error) {
	minSize := cfg.MinSize
	if minSize <= 0 {
		minSize = defaultMinSize
	}
	maxRatio := cfg.MaxRatio
	if maxRatio <= 0 {
		maxRatio = defaultMaxRatio
	}
	if cfg.Type == None || len(src) < minSize {
		return None, src, nil
	}

	var compressed []byte
	switch cfg.Type {
	case LZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(src)))
		var c lz4.Compressor
		n, err := c.CompressBlock(src, buf)
		if err != nil {
			return None, nil, fmt.Errorf("compress: lz4: %w", err)
		}
		if n == 0 { // incompressible
			return None, src, nil
		}
		compressed = buf[:n]
	case ZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(src, make([]byte, 0, len(src)))
		zstdEncoderPool.Put(enc)
	default:
		return None, nil, fmt.Errorf("compress: unknown type %d", cfg.Type)
	}

	if float64(len(compressed)) > float64(len(src))*maxRatio {
		return None, src, nil
	}
	return cfg.Type, compressed, nil
}

// Decompress reverses Compress. dstLen must be the original length recorded
// next to the buffer; any mismatch means the data is corrupt. The returned
// buffer is always freshly allocated.
func Decompress(t Type, dstLen int, src []byte) ([]byte, error) {
	switch t {
	case None:
		if len(src) != dstLen {
			return nil, fmt.Errorf("%w: raw length %d, want %d", ErrCorrupt, len(src), dstLen)
		}
		out := make([]byte, dstLen)
		copy(out, src)
		return out, nil
	case LZ4:
		out := make([]byte, dstLen)
		n, err := lz4.UncompressBlock(src, out)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %v", ErrCorrupt, err)
		}
		if n != dstLen {
			return nil, fmt.Errorf("%w: lz4 length %d, want %d", ErrCorrupt, n, dstLen)
		}
		return out, nil
	case ZSTD:
		dec := getZstdDecoder()
		out, err := dec.DecodeAll(src, make([]byte, 0, dstLen))
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrCorrupt, err)
		}
		if len(out) != dstLen {
			return nil, fmt.Errorf("%w: zstd length %d, want %d", ErrCorrupt, len(out), dstLen)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %d", ErrCorrupt, t)
	}
}
