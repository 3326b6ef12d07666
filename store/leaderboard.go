package store

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Entry is one leaderboard row as persisted: a handle and its cumulative
// points.
type Entry struct {
	Handle string
	Points int64
}

// AddPoints atomically adds delta to the handle's leaderboard score and
// returns the new total. Negative deltas are supported even though current
// scoring never produces one.
func (s *Store) AddPoints(ctx context.Context, handle string, delta int64) (int64, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	total, err := s.rdb.ZIncrBy(ctx, pointsKey, float64(delta), NormalizeHandle(handle)).Result()
	if err != nil {
		return 0, err
	}
	return int64(total), nil
}

// TopN returns up to n rows ordered by points descending. Order among equal
// scores is whatever Redis returns and is not guaranteed stable.
func (s *Store) TopN(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.rdb.ZRevRangeWithScores(ctx, pointsKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		handle, _ := row.Member.(string)
		entries = append(entries, Entry{Handle: handle, Points: int64(row.Score)})
	}
	return entries, nil
}

// RankAndScore returns the handle's 1-based position in the descending
// ordering plus its points. ranked is false when the handle has no score
// entry yet; points is then 0.
func (s *Store) RankAndScore(ctx context.Context, handle string) (rank int64, ranked bool, points int64, err error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	h := NormalizeHandle(handle)
	pos, err := s.rdb.ZRevRank(ctx, pointsKey, h).Result()
	if err == redis.Nil {
		return 0, false, 0, nil
	}
	if err != nil {
		return 0, false, 0, err
	}
	score, err := s.rdb.ZScore(ctx, pointsKey, h).Result()
	if err != nil && err != redis.Nil {
		return 0, false, 0, err
	}
	return pos + 1, true, int64(score), nil
}
