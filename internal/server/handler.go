package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Inmylir/realtime-chat/internal/auth"
	"github.com/Inmylir/realtime-chat/internal/config"
	"github.com/Inmylir/realtime-chat/internal/media"
	"github.com/Inmylir/realtime-chat/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Handler 聚合所有 HTTP handler，依赖注入 service 层与对象存储。
type Handler struct {
	cfg        config.Config
	userSvc    *service.UserService
	historySvc *service.HistoryService
	mediaSvc   *service.MediaService
	store      media.Store
}

func NewHandler(cfg config.Config, userSvc *service.UserService, historySvc *service.HistoryService, mediaSvc *service.MediaService, store media.Store) *Handler {
	return &Handler{cfg: cfg, userSvc: userSvc, historySvc: historySvc, mediaSvc: mediaSvc, store: store}
}

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register 处理用户注册。注册开关默认关闭，未显式打开时一律 403。
func (h *Handler) Register(c *gin.Context) {
	if !h.cfg.AllowRegister {
		c.JSON(http.StatusForbidden, gin.H{"error": "registration disabled"})
		return
	}
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	user, err := h.userSvc.Register(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "username must be 3-32 chars of [A-Za-z0-9_-], password 8-128 chars"})
		case errors.Is(err, service.ErrUsernameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "username taken"})
		default:
			log.Error().Err(err).Str("username", req.Username).Msg("register")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": user.ID, "username": user.Username})
}

// Login 校验凭证，签发会话令牌并写入 session cookie。
func (h *Handler) Login(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	result, err := h.userSvc.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		log.Error().Err(err).Str("username", req.Username).Msg("login")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	maxAge := h.cfg.SessionTTLDays * 24 * 3600
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookie, result.Token, maxAge, "/", "", h.cfg.Env != "dev", true)
	c.JSON(http.StatusOK, gin.H{
		"token": result.Token,
		"user":  gin.H{"id": result.User.ID, "username": result.User.Username},
	})
}

// Logout 无状态登出：服务端不吊销令牌，只指示客户端丢弃 cookie。
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookie, "", -1, "/", "", h.cfg.Env != "dev", true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me 回显当前会话对应的身份，供页面刷新后恢复登录态。
func (h *Handler) Me(c *gin.Context) {
	id, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": gin.H{"id": id.ID, "username": id.Username}})
}

// History 返回某房间最近的消息，升序排列。
func (h *Handler) History(c *gin.Context) {
	room := c.DefaultQuery("room", "global")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	items, err := h.historySvc.ListRoom(room, limit)
	if err != nil {
		log.Error().Err(err).Str("room", room).Msg("list history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room, "items": items})
}

// MediaInit 上传握手：返回对象键与上传、回看 URL，字节不从这里走。
func (h *Handler) MediaInit(c *gin.Context) {
	id, _ := auth.CurrentUser(c)
	var req struct {
		Filename    string `json:"filename"`
		ContentType string `json:"contentType"`
		Room        string `json:"room"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	c.JSON(http.StatusOK, h.mediaSvc.Init(id, req.Room, req.Filename, req.ContentType))
}

// MediaUpload 接收上传字节并写入对象存储。
func (h *Handler) MediaUpload(c *gin.Context) {
	id, _ := auth.CurrentUser(c)
	key := strings.TrimPrefix(c.Param("key"), "/")
	if !media.ValidKey(key) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad key"})
		return
	}
	contentType := c.GetHeader("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := h.store.Put(key, contentType, id.ID, c.Request.Body); err != nil {
		log.Error().Err(err).Str("key", key).Uint("user_id", id.ID).Msg("media upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": media.RoutePrefix + key})
}

// MediaGet 按键回看媒体，读取同样要求有效会话。
func (h *Handler) MediaGet(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if !media.ValidKey(key) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad key"})
		return
	}
	obj, err := h.store.Get(key)
	if err != nil {
		if errors.Is(err, media.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		log.Error().Err(err).Str("key", key).Msg("media get")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read failed"})
		return
	}
	defer obj.Body.Close()

	c.Header("Content-Type", obj.ContentType)
	c.Header("Cache-Control", "private, max-age=3600")
	c.Header("Content-Disposition", "inline")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, obj.Body)
}
