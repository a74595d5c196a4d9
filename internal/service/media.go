package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Inmylir/realtime-chat/internal/auth"
	"github.com/Inmylir/realtime-chat/internal/media"

	"github.com/google/uuid"
)

// MediaService 负责上传握手：给出对象键和上传、回看两个 URL。
// 真正的文件字节不经过这里，由上传路由直接写入对象存储。
type MediaService struct{}

func NewMediaService() *MediaService {
	return &MediaService{}
}

// MediaInitResult 上传握手的返回。
type MediaInitResult struct {
	Key         string `json:"key"`
	UploadURL   string `json:"uploadUrl"`
	MediaURL    string `json:"mediaUrl"`
	ContentType string `json:"contentType"`
}

var extRE = regexp.MustCompile(`\.([a-z0-9]{1,8})$`)

// Init 生成对象键 room/userID/时间戳-uuid.ext，键天然按房间和上传者分组。
func (s *MediaService) Init(user auth.Identity, room, filename, contentType string) *MediaInitResult {
	if room == "" {
		room = "global"
	}
	if len(room) > 64 {
		room = room[:64]
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if len(contentType) > 128 {
		contentType = contentType[:128]
	}

	key := fmt.Sprintf("%s/%d/%d-%s%s", room, user.ID, time.Now().UnixMilli(), uuid.NewString(), guessExt(filename, contentType))
	return &MediaInitResult{
		Key:         key,
		UploadURL:   "/api/media/upload/" + key,
		MediaURL:    media.RoutePrefix + key,
		ContentType: contentType,
	}
}

// guessExt 优先取文件名后缀，取不到时按内容类型给个粗略的。
// "meta" 后缀跳过，避免生成的键撞上存储的元数据旁车文件。
func guessExt(filename, contentType string) string {
	if m := extRE.FindStringSubmatch(strings.ToLower(filename)); m != nil && m[1] != "meta" {
		return "." + m[1]
	}
	if strings.HasPrefix(contentType, "image/") {
		return ".img"
	}
	if strings.HasPrefix(contentType, "video/") {
		return ".vid"
	}
	return ""
}
