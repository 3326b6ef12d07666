package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/snowfight/models"
	"github.com/cppla/snowfight/store"
	"github.com/cppla/snowfight/utils"
)

// webhookEventMiniAppAdded is the platform event carrying notification
// details for a player who just installed the mini-app.
const webhookEventMiniAppAdded = "miniapp_added"

// RegisterController handles identity registration, both the full intake and
// the degraded webhook path.
type RegisterController struct {
	store *store.Store
}

// NewRegisterController creates a new controller instance.
func NewRegisterController(st *store.Store) *RegisterController {
	return &RegisterController{store: st}
}

// Register upserts a player identity with delivery metadata. Re-registering
// the same fid rotates token and url.
func (r *RegisterController) Register(ctx *gin.Context) {
	var req models.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, "missing registration data")
		return
	}
	handle := store.NormalizeHandle(req.Username)
	if handle == "" {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid username")
		return
	}

	id := store.Identity{Fid: req.Fid, Handle: handle, Token: req.Token, URL: req.URL}
	if err := r.store.SaveIdentity(ctx.Request.Context(), id); err != nil {
		utils.Sugar.Errorf("save registration fid=%d err=%v", req.Fid, err)
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to save registration")
		return
	}

	utils.Success(ctx, gin.H{"fid": req.Fid, "username": handle})
}

// Webhook accepts asynchronous platform callbacks. A miniapp_added event with
// notification details is stored under the sentinel identity, to be
// reconciled by a later real registration; every other event is acknowledged
// and ignored.
func (r *RegisterController) Webhook(ctx *gin.Context) {
	var evt models.WebhookEvent
	if err := ctx.ShouldBindJSON(&evt); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, "invalid webhook payload")
		return
	}

	if evt.Event == webhookEventMiniAppAdded && evt.NotificationDetails != nil &&
		evt.NotificationDetails.Token != "" && evt.NotificationDetails.URL != "" {
		id := store.Identity{
			Fid:    store.SentinelFid,
			Handle: store.SentinelHandle,
			Token:  evt.NotificationDetails.Token,
			URL:    evt.NotificationDetails.URL,
		}
		if err := r.store.SaveIdentity(ctx.Request.Context(), id); err != nil {
			utils.Sugar.Errorf("save webhook registration err=%v", err)
			utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to store webhook registration")
			return
		}
	}

	utils.Success(ctx, gin.H{"received": true})
}
