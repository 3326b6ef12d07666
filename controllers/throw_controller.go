package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/snowfight/game"
	"github.com/cppla/snowfight/models"
	"github.com/cppla/snowfight/store"
	"github.com/cppla/snowfight/utils"
)

// ThrowController handles the throw endpoint, the single scoring entry
// point.
type ThrowController struct {
	store  *store.Store
	engine *game.Engine
}

// NewThrowController creates a new controller instance.
func NewThrowController(st *store.Store, engine *game.Engine) *ThrowController {
	return &ThrowController{store: st, engine: engine}
}

// Throw scores one snowball throw and returns the award, streak, and new
// total.
func (t *ThrowController) Throw(ctx *gin.Context) {
	var req models.ThrowRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "missing target or sender")
		return
	}

	result, err := t.engine.Throw(ctx.Request.Context(), req.SenderName, req.TargetUsername)
	if err != nil {
		status, code := throwErrorStatus(err)
		if status >= http.StatusInternalServerError {
			utils.Sugar.Errorf("throw failed sender=%s target=%s err=%v", req.SenderName, req.TargetUsername, err)
		}
		utils.Error(ctx, status, code, err.Error())
		return
	}

	// Scores changed; drop any cached leaderboard view.
	t.store.InvalidateByPrefix(ctx.Request.Context(), cacheLeaderboardPrefix)

	utils.Success(ctx, result)
}

func throwErrorStatus(err error) (int, int) {
	kind, ok := game.KindOf(err)
	if !ok {
		return http.StatusInternalServerError, 50000
	}
	switch kind {
	case game.KindInvalidInput:
		return http.StatusBadRequest, 40001
	case game.KindTargetNotRegistered:
		return http.StatusNotFound, 40401
	case game.KindTargetMissingDelivery:
		return http.StatusNotFound, 40402
	case game.KindDeliveryFailed:
		return http.StatusBadGateway, 50201
	case game.KindStoreUnavailable:
		return http.StatusInternalServerError, 50001
	default:
		return http.StatusInternalServerError, 50000
	}
}
