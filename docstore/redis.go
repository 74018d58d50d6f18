package docstore

import (
	"context"
	"iter"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Redis reads documents with a single MGET per visit. Keys are
// "<prefix><lid>" with the lid in decimal.
type Redis struct {
	rdb    redis.UniversalClient
	prefix string
}

var _ Store = (*Redis)(nil)

func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = "doc:"
	}
	return &Redis{rdb: client, prefix: prefix}
}

func (s *Redis) key(lid uint32) string {
	return s.prefix + strconv.FormatUint(uint64(lid), 10)
}

func (s *Redis) MultiGet(ctx context.Context, lids []uint32) (iter.Seq2[uint32, []byte], error) {
	if len(lids) == 0 {
		return emptySeq, nil
	}
	keys := make([]string, len(lids))
	for i, lid := range lids {
		keys[i] = s.key(lid)
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	return func(yield func(uint32, []byte) bool) {
		for i, v := range vals {
			str, ok := v.(string) // nil => missing
			if !ok {
				continue
			}
			if !yield(lids[i], []byte(str)) {
				return
			}
		}
	}, nil
}
