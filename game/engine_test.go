package game

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/snowfight/config"
	"github.com/cppla/snowfight/notify"
	"github.com/cppla/snowfight/store"
)

type fakeNotifier struct {
	err   error
	calls []notify.Notification
}

func (f *fakeNotifier) Notify(_ context.Context, n notify.Notification) error {
	f.calls = append(f.calls, n)
	return f.err
}

func newTestEngine(t *testing.T) (*Engine, *store.Store, *fakeNotifier) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	st := store.NewWithClient(rdb)
	notifier := &fakeNotifier{}
	engine := NewEngine(st, notifier, config.AppConfig{
		AppURL:           "https://snowfight.example",
		ProtectedHandle:  "Frosty",
		StreakDecayHours: 24,
	})
	return engine, st, notifier
}

func registerPlayer(t *testing.T, st *store.Store, fid int64, handle string) {
	t.Helper()
	err := st.SaveIdentity(context.Background(), store.Identity{
		Fid:    fid,
		Handle: handle,
		Token:  "tok-" + handle,
		URL:    "https://push.example/" + handle,
	})
	require.NoError(t, err)
}

func TestThrowFirstHitAward(t *testing.T) {
	engine, st, notifier := newTestEngine(t)
	registerPlayer(t, st, 2, "bob")
	ctx := context.Background()

	result, err := engine.Throw(ctx, "Alice", "@Bob")
	require.NoError(t, err)

	// base 1 + streak 1 + novelty 5
	assert.Equal(t, int64(7), result.PointsAwarded)
	assert.Equal(t, int64(1), result.Streak)
	assert.Equal(t, int64(7), result.TotalPoints)

	require.Len(t, notifier.calls, 1)
	n := notifier.calls[0]
	assert.Equal(t, "https://push.example/bob", n.URL)
	assert.Equal(t, "tok-bob", n.Token)
	assert.Equal(t, "❄ INCOMING!", n.Title)
	assert.Equal(t, "alice hit you with a snowball!", n.Body)
	assert.Equal(t, "https://snowfight.example?referrer=alice&mode=hit", n.TargetURL)
}

func TestThrowRepeatHitNoNoveltyNoSelfRevenge(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	registerPlayer(t, st, 2, "bob")
	ctx := context.Background()

	_, err := engine.Throw(ctx, "alice", "bob")
	require.NoError(t, err)

	result, err := engine.Throw(ctx, "alice", "bob")
	require.NoError(t, err)

	// base 1 + streak 2; no novelty again, and hitting the same target is
	// not revenge for the attacker
	assert.Equal(t, int64(3), result.PointsAwarded)
	assert.Equal(t, int64(2), result.Streak)
	assert.Equal(t, int64(10), result.TotalPoints)
}

func TestThrowRevengeBonus(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	registerPlayer(t, st, 1, "alice")
	registerPlayer(t, st, 2, "bob")
	ctx := context.Background()

	_, err := engine.Throw(ctx, "alice", "bob")
	require.NoError(t, err)

	// bob strikes back at his most recent attacker
	result, err := engine.Throw(ctx, "bob", "alice")
	require.NoError(t, err)

	// base 1 + streak 1 + novelty 5 + revenge 2
	assert.Equal(t, int64(9), result.PointsAwarded)
}

func TestThrowProtectedHandleClampsToZero(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	registerPlayer(t, st, 3, "frosty")
	ctx := context.Background()

	result, err := engine.Throw(ctx, "alice", "Frosty")
	require.NoError(t, err)

	// 1 + 1 + 5 - 10 = -3, clamped
	assert.Equal(t, int64(0), result.PointsAwarded)
	assert.Equal(t, int64(0), result.TotalPoints)
	// the hit still counts for streak purposes
	assert.Equal(t, int64(1), result.Streak)
}

func TestThrowTargetNotRegistered(t *testing.T) {
	engine, st, notifier := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Throw(ctx, "alice", "nobody")
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindTargetNotRegistered, kind)
	assert.Empty(t, notifier.calls)

	// nothing mutated for the attacker
	streak, err := st.Streak(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(0), streak)
	_, ranked, _, err := st.RankAndScore(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ranked)
}

func TestThrowTargetMissingDelivery(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	ctx := context.Background()

	// identity exists but has no usable token/url
	require.NoError(t, st.SaveIdentity(ctx, store.Identity{Fid: 5, Handle: "ghost"}))

	_, err := engine.Throw(ctx, "alice", "ghost")
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindTargetMissingDelivery, kind)
}

func TestThrowDeliveryFailureMutatesNothing(t *testing.T) {
	engine, st, notifier := newTestEngine(t)
	registerPlayer(t, st, 2, "bob")
	notifier.err = errors.New("push endpoint down")
	ctx := context.Background()

	_, err := engine.Throw(ctx, "alice", "bob")
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindDeliveryFailed, kind)
	assert.Contains(t, err.Error(), "push endpoint down")

	streak, err := st.Streak(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(0), streak)
	_, ranked, _, err := st.RankAndScore(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ranked)
	revenge, err := st.WasRevenge(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.False(t, revenge)
}

func TestThrowInvalidInput(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	for _, tc := range []struct{ attacker, target string }{
		{"", "bob"},
		{"alice", ""},
		{"@", "bob"},
	} {
		_, err := engine.Throw(context.Background(), tc.attacker, tc.target)
		require.Error(t, err)
		kind, ok := KindOf(err)
		require.True(t, ok)
		assert.Equal(t, KindInvalidInput, kind)
	}
}

func TestBadgeFor(t *testing.T) {
	tests := []struct {
		streak int64
		want   string
	}{
		{0, ""},
		{2, ""},
		{3, "HotStreak"},
		{4, "HotStreak"},
		{5, "MegaStreak"},
		{12, "MegaStreak"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BadgeFor(tt.streak))
	}
}
