package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/snowfight/config"
	"github.com/cppla/snowfight/game"
	"github.com/cppla/snowfight/notify"
	"github.com/cppla/snowfight/store"
)

type fakeNotifier struct {
	err   error
	calls int
}

func (f *fakeNotifier) Notify(context.Context, notify.Notification) error {
	f.calls++
	return f.err
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *store.Store, *fakeNotifier) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	st := store.NewWithClient(rdb)

	notifier := &fakeNotifier{}
	engine := game.NewEngine(st, notifier, config.AppConfig{
		AppURL:           "https://snowfight.example",
		ProtectedHandle:  "frosty",
		StreakDecayHours: 24,
	})

	r := gin.New()
	registerController := NewRegisterController(st)
	throwController := NewThrowController(st, engine)
	leaderboardController := NewLeaderboardController(st)
	r.POST("/api/v1/register", registerController.Register)
	r.POST("/api/v1/webhook", registerController.Webhook)
	r.POST("/api/v1/throw", throwController.Throw)
	r.GET("/api/v1/leaderboard", leaderboardController.Leaderboard)
	r.GET("/api/v1/players/:handle", leaderboardController.Player)
	return r, st, notifier
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestRegisterEndpoint(t *testing.T) {
	r, st, _ := newTestRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/register", gin.H{
		"fid":      42,
		"username": "@Alice",
		"token":    "tok-1",
		"url":      "https://push.example/send",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.Code)

	fid, ok, err := st.FidByHandle(context.Background(), "alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(42), fid)
}

func TestRegisterEndpointRejectsMissingFields(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/register", gin.H{
		"username": "alice",
		"token":    "tok-1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 40002, env.Code)
}

func TestWebhookStoresSentinelIdentity(t *testing.T) {
	r, st, _ := newTestRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/webhook", gin.H{
		"event": "miniapp_added",
		"notificationDetails": gin.H{
			"token": "tok-hook",
			"url":   "https://push.example/hook",
		},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.Code)

	info, ok, err := st.DeliveryInfo(context.Background(), store.SentinelFid)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, store.SentinelHandle, info.Handle)
	assert.Equal(t, "tok-hook", info.Token)
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	r, st, _ := newTestRouter(t)

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/webhook", gin.H{"event": "miniapp_removed"})
	assert.Equal(t, http.StatusOK, w.Code)

	_, ok, err := st.DeliveryInfo(context.Background(), store.SentinelFid)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestThrowEndpointScores(t *testing.T) {
	r, st, notifier := newTestRouter(t)
	require.NoError(t, st.SaveIdentity(context.Background(), store.Identity{
		Fid: 2, Handle: "bob", Token: "tok-bob", URL: "https://push.example/bob",
	}))

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/throw", gin.H{
		"targetUsername": "@Bob",
		"senderName":     "Alice",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.Code)
	assert.Equal(t, 1, notifier.calls)

	var result game.ThrowResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, int64(7), result.PointsAwarded)
	assert.Equal(t, int64(1), result.Streak)
	assert.Equal(t, int64(7), result.TotalPoints)
}

func TestThrowEndpointUnregisteredTarget(t *testing.T) {
	r, _, notifier := newTestRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/throw", gin.H{
		"targetUsername": "nobody",
		"senderName":     "alice",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 40401, env.Code)
	assert.Contains(t, env.Message, "@nobody")
	assert.Equal(t, 0, notifier.calls)
}

func TestThrowEndpointDeliveryFailure(t *testing.T) {
	r, st, notifier := newTestRouter(t)
	require.NoError(t, st.SaveIdentity(context.Background(), store.Identity{
		Fid: 2, Handle: "bob", Token: "tok-bob", URL: "https://push.example/bob",
	}))
	notifier.err = assert.AnError

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/throw", gin.H{
		"targetUsername": "bob",
		"senderName":     "alice",
	})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, 50201, env.Code)
}

func TestThrowEndpointMissingBody(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/throw", gin.H{"senderName": "alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 40001, env.Code)
}

func TestLeaderboardEndpoint(t *testing.T) {
	r, st, _ := newTestRouter(t)
	ctx := context.Background()

	_, err := st.AddPoints(ctx, "alice", 30)
	require.NoError(t, err)
	_, err = st.AddPoints(ctx, "bob", 20)
	require.NoError(t, err)
	_, err = st.AddPoints(ctx, "carol", 10)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err = st.RegisterHit(ctx, "alice", 24*time.Hour)
		require.NoError(t, err)
	}

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/leaderboard?user=dave", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Entries []struct {
			Username string `json:"username"`
			Points   int64  `json:"points"`
			Streak   int64  `json:"streak"`
			Badge    string `json:"badge"`
		} `json:"entries"`
		User struct {
			Username string `json:"username"`
			Rank     *int64 `json:"rank"`
			Points   int64  `json:"points"`
			Streak   int64  `json:"streak"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))

	require.Len(t, data.Entries, 3)
	assert.Equal(t, "alice", data.Entries[0].Username)
	assert.Equal(t, int64(30), data.Entries[0].Points)
	assert.Equal(t, "MegaStreak", data.Entries[0].Badge)
	for i := 1; i < len(data.Entries); i++ {
		assert.GreaterOrEqual(t, data.Entries[i-1].Points, data.Entries[i].Points)
	}

	// unranked user reports null rank and zero points
	assert.Equal(t, "dave", data.User.Username)
	assert.Nil(t, data.User.Rank)
	assert.Equal(t, int64(0), data.User.Points)
}

func TestPlayerEndpoint(t *testing.T) {
	r, st, _ := newTestRouter(t)
	ctx := context.Background()

	_, err := st.AddPoints(ctx, "alice", 30)
	require.NoError(t, err)
	_, err = st.AddPoints(ctx, "bob", 20)
	require.NoError(t, err)

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/players/Bob", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var standing struct {
		Username string `json:"username"`
		Rank     *int64 `json:"rank"`
		Points   int64  `json:"points"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &standing))
	assert.Equal(t, "bob", standing.Username)
	require.NotNil(t, standing.Rank)
	assert.Equal(t, int64(2), *standing.Rank)
	assert.Equal(t, int64(20), standing.Points)
}
