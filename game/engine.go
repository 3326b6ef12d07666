package game

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/cppla/snowfight/config"
	"github.com/cppla/snowfight/notify"
	"github.com/cppla/snowfight/store"
)

// Point values for a single throw.
const (
	basePoints       = 1
	revengeBonus     = 2
	firstHitBonus    = 5
	protectedPenalty = 10
)

// ThrowResult reports the outcome of one scored throw.
type ThrowResult struct {
	PointsAwarded int64 `json:"pointsAwarded"`
	Streak        int64 `json:"streak"`
	TotalPoints   int64 `json:"totalPoints"`
}

// Engine converts a throw event into a point award and commits it to the
// leaderboard. Scoring only happens for hits whose notification was
// delivered; a failed delivery rejects the throw with nothing mutated.
type Engine struct {
	store    *store.Store
	notifier notify.Notifier

	appURL          string
	protectedHandle string
	decay           time.Duration
}

// NewEngine builds an engine around the store, the delivery notifier, and
// the scoring configuration.
func NewEngine(st *store.Store, notifier notify.Notifier, cfg config.AppConfig) *Engine {
	return &Engine{
		store:           st,
		notifier:        notifier,
		appURL:          cfg.AppURL,
		protectedHandle: store.NormalizeHandle(cfg.ProtectedHandle),
		decay:           time.Duration(cfg.StreakDecayHours) * time.Hour,
	}
}

// Throw scores one snowball from attacker to target.
//
// Award: 1 base, plus the attacker's current streak, plus 2 when this hit
// strikes back at the attacker's own most recent assailant, plus 5 the first
// time this attacker ever hits this target, minus 10 when the target is the
// protected handle. Never below 0.
func (e *Engine) Throw(ctx context.Context, attackerRaw, targetRaw string) (ThrowResult, error) {
	attacker := store.NormalizeHandle(attackerRaw)
	target := store.NormalizeHandle(targetRaw)
	if attacker == "" || target == "" {
		return ThrowResult{}, newError(KindInvalidInput, "missing target or sender")
	}

	fid, ok, err := e.store.FidByHandle(ctx, target)
	if err != nil {
		return ThrowResult{}, storeError(err)
	}
	if !ok {
		return ThrowResult{}, newError(KindTargetNotRegistered, fmt.Sprintf("user @%s not registered", target))
	}

	info, ok, err := e.store.DeliveryInfo(ctx, fid)
	if err != nil {
		return ThrowResult{}, storeError(err)
	}
	if !ok {
		return ThrowResult{}, newError(KindTargetMissingDelivery, fmt.Sprintf("user @%s missing notification token", target))
	}

	// Deliver before scoring. A hit nobody received earns nothing.
	notification := notify.Notification{
		URL:       info.URL,
		Token:     info.Token,
		Title:     "❄ INCOMING!",
		Body:      fmt.Sprintf("%s hit you with a snowball!", attacker),
		TargetURL: fmt.Sprintf("%s?referrer=%s&mode=hit", e.appURL, url.QueryEscape(attacker)),
	}
	if err := e.notifier.Notify(ctx, notification); err != nil {
		return ThrowResult{}, &Error{Kind: KindDeliveryFailed, Message: "notification failed", Err: err}
	}

	award := int64(basePoints)

	streak, err := e.store.RegisterHit(ctx, attacker, e.decay)
	if err != nil {
		return ThrowResult{}, storeError(err)
	}
	award += streak

	revenge, err := e.store.WasRevenge(ctx, attacker, target)
	if err != nil {
		return ThrowResult{}, storeError(err)
	}
	if revenge {
		award += revengeBonus
	}

	seen, err := e.store.HasHitBefore(ctx, attacker, target)
	if err != nil {
		return ThrowResult{}, storeError(err)
	}
	if !seen {
		award += firstHitBonus
		if err := e.store.RecordFirstHit(ctx, attacker, target); err != nil {
			return ThrowResult{}, storeError(err)
		}
	}

	if e.protectedHandle != "" && target == e.protectedHandle {
		award -= protectedPenalty
	}
	if award < 0 {
		award = 0
	}

	// Must run after the revenge check above, or an attacker could farm the
	// bonus against themselves within a single throw.
	if err := e.store.RecordAttack(ctx, attacker, target); err != nil {
		return ThrowResult{}, storeError(err)
	}

	total, err := e.store.AddPoints(ctx, attacker, award)
	if err != nil {
		return ThrowResult{}, storeError(err)
	}

	return ThrowResult{PointsAwarded: award, Streak: streak, TotalPoints: total}, nil
}
