// Package codec decodes document blobs into caller value types. Used by the
// typed visit view; the cache core itself only moves bytes.
package codec

// Codec encodes/decodes values V to []byte document blobs.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
