package main

import (
	"github.com/Inmylir/realtime-chat/internal/config"
	"github.com/Inmylir/realtime-chat/internal/db"
	clog "github.com/Inmylir/realtime-chat/internal/log"
	"github.com/Inmylir/realtime-chat/internal/media"
	"github.com/Inmylir/realtime-chat/internal/server"
	"github.com/Inmylir/realtime-chat/internal/ws"

	"github.com/rs/zerolog/log"
)

func main() {
	// 加载配置、初始化日志、连接数据库、建媒体存储，然后启动 Gin 服务。
	cfg := config.Load()
	clog.Init(cfg.Env)
	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("config validate")
	}

	gdb, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	store, err := media.NewDiskStore(cfg.MediaDir)
	if err != nil {
		log.Fatal().Err(err).Msg("media store")
	}

	hub := ws.NewHub(ws.NewGormMessageStore(gdb))
	r := server.SetupRouter(cfg, gdb, hub, store)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server run")
	}
}
