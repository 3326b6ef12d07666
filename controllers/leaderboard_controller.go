package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/snowfight/config"
	"github.com/cppla/snowfight/game"
	"github.com/cppla/snowfight/models"
	"github.com/cppla/snowfight/store"
	"github.com/cppla/snowfight/utils"
)

const cacheLeaderboardPrefix = "cache:leaderboard"

// LeaderboardController answers standings queries: the visible top rows and
// a single player's global rank.
type LeaderboardController struct {
	store *store.Store
	topN  int
}

// NewLeaderboardController creates a new controller instance.
func NewLeaderboardController(st *store.Store) *LeaderboardController {
	return &LeaderboardController{store: st, topN: config.Get().LeaderboardSize}
}

// Leaderboard returns the top rows, plus the requested user's standing when
// a user query parameter is present. The user is reported even when they sit
// outside the visible rows.
func (l *LeaderboardController) Leaderboard(ctx *gin.Context) {
	rctx := ctx.Request.Context()

	entries, err := l.entries(rctx)
	if err != nil {
		utils.Sugar.Errorf("load leaderboard err=%v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to load leaderboard")
		return
	}

	payload := gin.H{"entries": entries, "user": nil}
	if user := store.NormalizeHandle(ctx.Query("user")); user != "" {
		standing, err := l.standing(rctx, user)
		if err != nil {
			utils.Sugar.Errorf("load standing user=%s err=%v", user, err)
			utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to load user standing")
			return
		}
		payload["user"] = standing
	}

	utils.Success(ctx, payload)
}

// Player returns a single player's rank, points, streak, and badge.
func (l *LeaderboardController) Player(ctx *gin.Context) {
	handle := store.NormalizeHandle(ctx.Param("handle"))
	if handle == "" {
		utils.Error(ctx, http.StatusBadRequest, 40011, "missing handle")
		return
	}

	standing, err := l.standing(ctx.Request.Context(), handle)
	if err != nil {
		utils.Sugar.Errorf("load standing handle=%s err=%v", handle, err)
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to load user standing")
		return
	}
	utils.Success(ctx, standing)
}

// entries loads the visible top rows, decorated with streak and badge,
// behind a short-lived cache that throws invalidate.
func (l *LeaderboardController) entries(ctx context.Context) ([]models.LeaderboardEntry, error) {
	cacheKey := cacheLeaderboardPrefix + ":top"
	if b, ok := l.store.CacheGetBytes(ctx, cacheKey); ok {
		var cached []models.LeaderboardEntry
		if err := json.Unmarshal(b, &cached); err == nil {
			return cached, nil
		}
	}

	rows, err := l.store.TopN(ctx, l.topN)
	if err != nil {
		return nil, err
	}
	entries := make([]models.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		streak, err := l.store.Streak(ctx, row.Handle)
		if err != nil {
			return nil, err
		}
		entries = append(entries, models.LeaderboardEntry{
			Username: row.Handle,
			Points:   row.Points,
			Streak:   streak,
			Badge:    game.BadgeFor(streak),
		})
	}

	l.store.CacheSetJSON(ctx, cacheKey, entries, 0)
	return entries, nil
}

func (l *LeaderboardController) standing(ctx context.Context, handle string) (models.Standing, error) {
	rank, ranked, points, err := l.store.RankAndScore(ctx, handle)
	if err != nil {
		return models.Standing{}, err
	}
	streak, err := l.store.Streak(ctx, handle)
	if err != nil {
		return models.Standing{}, err
	}

	standing := models.Standing{
		Username: handle,
		Points:   points,
		Streak:   streak,
		Badge:    game.BadgeFor(streak),
	}
	if ranked {
		standing.Rank = &rank
	}
	return standing, nil
}
