package docstore

import (
	"context"
	"iter"
	"strconv"

	"github.com/allegro/bigcache/v3"
)

// BigCache adapts a bigcache-held corpus as a Store, for callers whose
// documents already live in an in-process bigcache instance. Entries evicted
// by bigcache surface as missing lids, which the visit cache treats as
// not-found.
type BigCache struct {
	c      *bigcache.BigCache
	prefix string
}

var _ Store = (*BigCache)(nil)

func NewBigCache(c *bigcache.BigCache, prefix string) *BigCache {
	if prefix == "" {
		prefix = "doc:"
	}
	return &BigCache{c: c, prefix: prefix}
}

func (s *BigCache) key(lid uint32) string {
	return s.prefix + strconv.FormatUint(uint64(lid), 10)
}

// Put stores blob under lid.
func (s *BigCache) Put(lid uint32, blob []byte) error {
	return s.c.Set(s.key(lid), blob)
}

// Delete removes lid. Missing entries are not an error.
func (s *BigCache) Delete(lid uint32) error {
	err := s.c.Delete(s.key(lid))
	if err == bigcache.ErrEntryNotFound {
		return nil
	}
	return err
}

func (s *BigCache) MultiGet(_ context.Context, lids []uint32) (iter.Seq2[uint32, []byte], error) {
	return func(yield func(uint32, []byte) bool) {
		for _, lid := range lids {
			b, err := s.c.Get(s.key(lid))
			if err != nil { // ErrEntryNotFound or evicted => absent
				continue
			}
			if !yield(lid, b) {
				return
			}
		}
	}, nil
}
