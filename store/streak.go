package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RegisterHit applies the time-decay rule and counts one hit for the
// attacker, returning the new streak value. When the gap since the previous
// hit exceeds decay (strictly greater, a gap of exactly the window keeps the
// streak), the counter is reset to 0 before this hit is counted.
//
// The increment itself is an atomic INCR; the decay check is a read followed
// by a conditional reset, so two near-simultaneous hits from the same
// attacker can race around the reset. That window is accepted: a lost reset
// costs at most one stale streak point.
func (s *Store) RegisterHit(ctx context.Context, handle string, decay time.Duration) (int64, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	h := NormalizeHandle(handle)
	now := time.Now().UnixMilli()

	last, err := s.rdb.Get(ctx, lastAttackKey(h)).Result()
	if err != nil && err != redis.Nil {
		return 0, err
	}
	if err == nil {
		// unparsable timestamps behave like a first hit
		if ts, perr := strconv.ParseInt(last, 10, 64); perr == nil && now-ts > decay.Milliseconds() {
			if err := s.rdb.Set(ctx, streakKey(h), "0", 0).Err(); err != nil {
				return 0, err
			}
		}
	}

	streak, err := s.rdb.Incr(ctx, streakKey(h)).Result()
	if err != nil {
		return 0, err
	}
	if err := s.rdb.Set(ctx, lastAttackKey(h), strconv.FormatInt(now, 10), 0).Err(); err != nil {
		return 0, err
	}
	return streak, nil
}

// Streak reads the current streak counter without touching it. Missing or
// corrupt counters read as 0.
func (s *Store) Streak(ctx context.Context, handle string) (int64, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	val, err := s.rdb.Get(ctx, streakKey(NormalizeHandle(handle))).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, nil
	}
	return n, nil
}
