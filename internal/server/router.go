package server

import (
	"net/http"
	"time"

	"github.com/Inmylir/realtime-chat/internal/auth"
	"github.com/Inmylir/realtime-chat/internal/config"
	"github.com/Inmylir/realtime-chat/internal/media"
	"github.com/Inmylir/realtime-chat/internal/metrics"
	"github.com/Inmylir/realtime-chat/internal/mw"
	"github.com/Inmylir/realtime-chat/internal/service"
	"github.com/Inmylir/realtime-chat/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// SetupRouter 初始化 Gin 中间件、REST API、媒体路由和 WebSocket 端点。
func SetupRouter(cfg config.Config, db *gorm.DB, hub *ws.Hub, store media.Store) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.GinMiddleware())
	r.Use(mw.CORS(cfg.Env))
	r.Use(mw.RateLimit(rate.Every(time.Second/20), 40, mw.ByIPRoute))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := NewHandler(
		cfg,
		service.NewUserService(db, cfg),
		service.NewHistoryService(db),
		service.NewMediaService(),
		store,
	)

	api := r.Group("/api")

	// 凭证端点额外收紧：按 IP 共享配额，防止口令爆破
	credLimit := mw.RateLimit(rate.Every(time.Second), 8, mw.ByIP)
	api.POST("/register", credLimit, h.Register)
	api.POST("/login", credLimit, h.Login)
	api.POST("/logout", h.Logout)

	// 需要有效会话令牌的接口
	authed := api.Group("")
	authed.Use(auth.Middleware(cfg.JWTSecret))
	authed.GET("/me", h.Me)
	authed.GET("/history", h.History)
	authed.POST("/media/init", h.MediaInit)
	authed.PUT("/media/upload/*key", h.MediaUpload)

	// 媒体回看同样要求登录，同域 <img>/<video> 会自动带上 cookie
	mediaGroup := r.Group("/media")
	mediaGroup.Use(auth.Middleware(cfg.JWTSecret))
	mediaGroup.GET("/*key", h.MediaGet)

	r.GET("/ws", ws.Serve(hub, cfg))

	r.Static("/app", "./web")
	return r
}
