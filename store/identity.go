package store

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// SentinelFid marks identities created by the degraded webhook intake, when
// the platform callback carries notification details but no usable account
// id. A later real registration for the player overwrites it.
const SentinelFid = 0

// SentinelHandle is the placeholder handle stored alongside SentinelFid.
const SentinelHandle = "unknown"

// Identity is the stored record for a player: the platform account id, the
// canonical handle, and the notification delivery metadata captured at
// registration time.
type Identity struct {
	Fid    int64
	Handle string
	Token  string
	URL    string
}

// SaveIdentity upserts the identity hash and the handle -> fid index entry.
// Re-registration (e.g. after an app reinstall) rotates token and url without
// error.
func (s *Store) SaveIdentity(ctx context.Context, id Identity) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	handle := NormalizeHandle(id.Handle)
	if err := s.rdb.HSet(ctx, userKey(id.Fid), map[string]interface{}{
		"fid":    strconv.FormatInt(id.Fid, 10),
		"handle": handle,
		"token":  id.Token,
		"url":    id.URL,
	}).Err(); err != nil {
		return err
	}
	return s.rdb.Set(ctx, handleKey(handle), strconv.FormatInt(id.Fid, 10), 0).Err()
}

// FidByHandle resolves a handle to its account id. Unknown handles report
// ok=false rather than an error.
func (s *Store) FidByHandle(ctx context.Context, handle string) (int64, bool, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	val, err := s.rdb.Get(ctx, handleKey(NormalizeHandle(handle))).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	fid, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// corrupt index entry behaves like an unknown handle
		return 0, false, nil
	}
	return fid, true, nil
}

// DeliveryInfo returns the stored identity for fid. ok is false when the
// record is missing or lacks usable token/url, which covers sentinel
// identities that were never reconciled by a real registration.
func (s *Store) DeliveryInfo(ctx context.Context, fid int64) (Identity, bool, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	data, err := s.rdb.HGetAll(ctx, userKey(fid)).Result()
	if err != nil {
		return Identity{}, false, err
	}
	if data["token"] == "" || data["url"] == "" {
		return Identity{}, false, nil
	}
	return Identity{
		Fid:    fid,
		Handle: data["handle"],
		Token:  data["token"],
		URL:    data["url"],
	}, true, nil
}
