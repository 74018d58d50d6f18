package visitcache

import (
	"encoding/binary"
	"slices"
)

// KeySet is the canonical identifier for one visit request: the requested
// lids, sorted ascending. Two KeySets are equal iff they list the same lids
// in the same multiplicity. Immutable after construction.
type KeySet struct {
	keys []uint32
}

// SingleKey returns a KeySet holding only lid.
func SingleKey(lid uint32) KeySet {
	return KeySet{keys: []uint32{lid}}
}

// NewKeySet builds a KeySet from the requested lids. The input is copied and
// sorted. Duplicates are kept as-is; deduplicating is the caller's job.
func NewKeySet(lids []uint32) KeySet {
	keys := slices.Clone(lids)
	slices.Sort(keys)
	return KeySet{keys: keys}
}

// Contains reports whether every lid of rhs also appears in k. Both sides
// are sorted, so this is a single merge walk.
func (k KeySet) Contains(rhs KeySet) bool {
	i := 0
	for _, want := range rhs.keys {
		for i < len(k.keys) && k.keys[i] < want {
			i++
		}
		if i == len(k.keys) || k.keys[i] != want {
			return false
		}
		i++
	}
	return true
}

// Empty reports whether the set holds no lids.
func (k KeySet) Empty() bool { return len(k.keys) == 0 }

// Keys returns the sorted lids. The slice is shared; treat it as read-only.
func (k KeySet) Keys() []uint32 { return k.keys }

// cacheKey packs the sorted lids into an exact, collision-free map key.
func (k KeySet) cacheKey() string {
	b := make([]byte, 4*len(k.keys))
	for i, lid := range k.keys {
		binary.BigEndian.PutUint32(b[4*i:], lid)
	}
	return string(b)
}
