package service

import (
	"github.com/Inmylir/realtime-chat/internal/models"

	"gorm.io/gorm"
)

// HistoryService 只读地查询已落库的消息，与在线房间状态完全无关。
type HistoryService struct {
	db *gorm.DB
}

func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{db: db}
}

// UserRef 是消息里嵌的作者身份。
type UserRef struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// MessageDTO 与 WebSocket 下发的 message 帧字段保持一致，
// 客户端渲染历史和实时消息可以走同一条路径。
type MessageDTO struct {
	ID      string  `json:"id"`
	Room    string  `json:"room"`
	User    UserRef `json:"user"`
	MsgType string  `json:"msgType"`
	Content string  `json:"content"`
	Ts      int64   `json:"ts"`
}

// ClampLimit 把历史条数收敛到 (0, 200]：超上限压到 200，非正值回落到默认 50。
func ClampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 200 {
		return 200
	}
	return limit
}

// ListRoom 返回某房间最近 limit 条消息，按持久化先后升序排列。
func (s *HistoryService) ListRoom(room string, limit int) ([]MessageDTO, error) {
	limit = ClampLimit(limit)

	var msgs []models.Message
	if err := s.db.Where("room = ?", room).Order("seq desc").Limit(limit).Find(&msgs).Error; err != nil {
		return nil, err
	}

	// 查询按序号倒序取最近 N 条，反转成升序输出
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	out := make([]MessageDTO, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, MessageDTO{
			ID:      m.ID,
			Room:    m.Room,
			User:    UserRef{ID: m.UserID, Username: m.Username},
			MsgType: m.Type,
			Content: m.Content,
			Ts:      m.CreatedAt.UnixMilli(),
		})
	}
	return out, nil
}
