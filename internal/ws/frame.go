package ws

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Inmylir/realtime-chat/internal/media"
	"github.com/Inmylir/realtime-chat/internal/models"
)

// MaxTextLen 单条文本消息的最大字符数。
const MaxTextLen = 2000

// ClientFrame 客户端上行帧：text 带正文，image/video 带媒体 URL。
type ClientFrame struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	URL  string `json:"url,omitempty"`
}

// ParseClientFrame 解析并校验一条上行帧，返回消息类型与内容。
// 不合法的帧一律返回 ok=false，由调用方静默丢弃——协议错误从不断开连接。
func ParseClientFrame(data []byte) (msgType, content string, ok bool) {
	var f ClientFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return "", "", false
	}
	switch f.Type {
	case models.MsgTypeText:
		text := strings.TrimSpace(f.Text)
		if text == "" || utf8.RuneCountInString(text) > MaxTextLen {
			return "", "", false
		}
		return models.MsgTypeText, text, true
	case models.MsgTypeImage, models.MsgTypeVideo:
		url := strings.TrimSpace(f.URL)
		// 只放行本服务的媒体路由，外部 URL 不允许经聊天转发
		if !strings.HasPrefix(url, media.RoutePrefix) {
			return "", "", false
		}
		return f.Type, url, true
	}
	return "", "", false
}

// SystemFrame 下行系统通知。
type SystemFrame struct {
	Type string `json:"type"`
	Text string `json:"text"`
	Ts   int64  `json:"ts"`
}

// UserRef 下行消息里嵌的作者身份。
type UserRef struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// MessageFrame 下行聊天消息，字段与历史接口的输出一致。
type MessageFrame struct {
	Type    string  `json:"type"`
	ID      string  `json:"id"`
	Room    string  `json:"room"`
	User    UserRef `json:"user"`
	MsgType string  `json:"msgType"`
	Content string  `json:"content"`
	Ts      int64   `json:"ts"`
}

func systemNotice(text string) []byte {
	b, _ := json.Marshal(SystemFrame{Type: "system", Text: text, Ts: time.Now().UnixMilli()})
	return b
}
