// Package docstore defines the document store the cache reads through, plus
// ready-made in-memory, Redis and BigCache backed implementations.
package docstore

import (
	"context"
	"iter"
)

// Store is a multi-get view of the underlying document store.
//
// MultiGet returns the stored blobs for the requested lids as a one-shot
// sequence, yielded synchronously during iteration in store-determined
// order. Lids with no stored value are simply absent from the sequence.
// Implementations must be safe for concurrent use.
type Store interface {
	MultiGet(ctx context.Context, lids []uint32) (iter.Seq2[uint32, []byte], error)
}

func emptySeq(func(uint32, []byte) bool) {}
