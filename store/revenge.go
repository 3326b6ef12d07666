package store

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RecordAttack makes the target remember its most recent attacker. The
// pointer is overwritten unconditionally on every hit; only the last
// attacker is retained.
func (s *Store) RecordAttack(ctx context.Context, attacker, target string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	return s.rdb.Set(ctx, revengeKey(NormalizeHandle(target)), NormalizeHandle(attacker), 0).Err()
}

// WasRevenge reports whether the attacker's own most recent assailant is
// today's target, i.e. this throw hits back the player who hit them last.
func (s *Store) WasRevenge(ctx context.Context, attacker, target string) (bool, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	lastAttacker, err := s.rdb.Get(ctx, revengeKey(NormalizeHandle(attacker))).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return lastAttacker == NormalizeHandle(target), nil
}

// HasHitBefore reports whether the attacker has ever hit this target.
func (s *Store) HasHitBefore(ctx context.Context, attacker, target string) (bool, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	return s.rdb.SIsMember(ctx, firstHitsKey(NormalizeHandle(attacker)), NormalizeHandle(target)).Result()
}

// RecordFirstHit adds the target to the attacker's ever-hit set. SADD makes
// repeated calls for the same pair harmless.
func (s *Store) RecordFirstHit(ctx context.Context, attacker, target string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	return s.rdb.SAdd(ctx, firstHitsKey(NormalizeHandle(attacker)), NormalizeHandle(target)).Err()
}
