package main

import (
	"time"

	"github.com/cppla/snowfight/config"
	"github.com/cppla/snowfight/game"
	"github.com/cppla/snowfight/notify"
	"github.com/cppla/snowfight/routes"
	"github.com/cppla/snowfight/store"
	"github.com/cppla/snowfight/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		utils.Sugar.Fatalf("open store: %v", err)
	}
	defer st.Close()

	notifier := notify.NewHTTPNotifier(time.Duration(cfg.NotifyTimeoutSec) * time.Second)
	engine := game.NewEngine(st, notifier, cfg)

	r := routes.SetupRouter(st, engine)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
