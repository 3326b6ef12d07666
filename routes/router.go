package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cppla/snowfight/config"
	"github.com/cppla/snowfight/controllers"
	"github.com/cppla/snowfight/game"
	"github.com/cppla/snowfight/middleware"
	"github.com/cppla/snowfight/store"
	"github.com/cppla/snowfight/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(st *store.Store, engine *game.Engine) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		if err := st.Ping(ctx.Request.Context()); err != nil {
			utils.Error(ctx, http.StatusServiceUnavailable, 50300, "store unavailable")
			return
		}
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	registerController := controllers.NewRegisterController(st)
	throwController := controllers.NewThrowController(st, engine)
	leaderboardController := controllers.NewLeaderboardController(st)

	api := r.Group("/api/v1")

	mutating := api.Group("")
	mutating.Use(middleware.RateLimitMiddleware())
	mutating.POST("/register", registerController.Register)
	mutating.POST("/webhook", registerController.Webhook)
	mutating.POST("/throw", throwController.Throw)

	api.GET("/leaderboard", leaderboardController.Leaderboard)
	api.GET("/players/:handle", leaderboardController.Player)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
