package store

import (
	"strconv"
	"strings"
)

// All keys live under one prefix so a shared Redis can host other apps.
const keyPrefix = "snowfight:"

// pointsKey is the leaderboard sorted set: member = handle, score = points.
const pointsKey = keyPrefix + "points"

func userKey(fid int64) string {
	return keyPrefix + "user:" + strconv.FormatInt(fid, 10)
}

func handleKey(handle string) string {
	return keyPrefix + "handle:" + handle
}

func streakKey(handle string) string {
	return keyPrefix + "streak:" + handle
}

func lastAttackKey(handle string) string {
	return keyPrefix + "last_attack:" + handle
}

// revengeKey holds, per victim, the handle of their most recent attacker.
func revengeKey(victim string) string {
	return keyPrefix + "revenge:" + victim
}

func firstHitsKey(attacker string) string {
	return keyPrefix + "first_hits:" + attacker
}

// NormalizeHandle is the single normalization point for player handles:
// surrounding whitespace and one leading '@' are dropped, the rest is
// lowercased. Every component must pass handles through here before
// comparing or keying on them.
func NormalizeHandle(raw string) string {
	h := strings.TrimSpace(raw)
	h = strings.TrimPrefix(h, "@")
	return strings.ToLower(strings.TrimSpace(h))
}
