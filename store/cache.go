package store

import (
	"context"
	"encoding/json"
	"time"
)

const defaultCacheTTL = 10 * time.Second

// CacheGetBytes returns cached bytes for a key.
func (s *Store) CacheGetBytes(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	b, err := s.rdb.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

// CacheSetBytes stores bytes with the given TTL, falling back to the short
// default. Failures are swallowed; caching is best-effort.
func (s *Store) CacheSetBytes(ctx context.Context, key string, b []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	_ = s.rdb.Set(ctx, keyPrefix+key, b, ttl).Err()
}

// CacheSetJSON marshals v and stores the JSON bytes.
func (s *Store) CacheSetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.CacheSetBytes(ctx, key, b, ttl)
}

// InvalidateByPrefix deletes cache keys matching the prefix using SCAN, with
// a bounded number of rounds to avoid long loops.
func (s *Store) InvalidateByPrefix(ctx context.Context, prefix string) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var cursor uint64
	for i := 0; i < 10; i++ {
		keys, cur, err := s.rdb.Scan(ctx, cursor, keyPrefix+prefix+"*", 1000).Result()
		if err != nil {
			break
		}
		cursor = cur
		if len(keys) > 0 {
			pipe := s.rdb.Pipeline()
			for _, k := range keys {
				pipe.Del(ctx, k)
			}
			_, _ = pipe.Exec(ctx)
		}
		if cursor == 0 {
			break
		}
	}
}
