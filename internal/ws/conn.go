package ws

import (
	"net/http"
	"time"

	"github.com/Inmylir/realtime-chat/internal/auth"
	"github.com/Inmylir/realtime-chat/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client 是一条已鉴权的 WebSocket 连接。
// 读侧只负责把原始字节转投给房间，校验和落库都在房间 goroutine 里做，
// 这样同一房间内消息的处理顺序完全由房间实例决定。
type Client struct {
	room     *Room
	conn     *websocket.Conn
	send     chan []byte
	identity auth.Identity
}

// trySend 非阻塞投递一帧，发不出去就丢，只在房间 goroutine 里调用。
func (c *Client) trySend(data []byte) {
	select {
	case c.send <- data:
	default:
	}
}

// Serve 处理 /ws 升级请求。令牌校验在升级之前完成：
// 没有有效令牌的请求直接 401 返回，不会在任何房间留下注册痕迹。
func Serve(hub *Hub, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		room := c.Query("room")
		if room == "" {
			room = "global"
		}
		if len(room) > 64 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room"})
			return
		}

		token := auth.TokenFromRequest(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, err := auth.VerifyToken(token, cfg.JWTSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		client := &Client{conn: conn, send: make(chan []byte, 256), identity: *id}
		hub.Join(room, client)

		go client.writePump()
		client.readPump()
	}
}

// readPump 逐帧读取并转投房间，退出时通知房间离开。
// 正常关闭、读错误和超时走的是同一条清理路径。
func (c *Client) readPump() {
	defer func() {
		c.room.leave <- c
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(1 << 20) // 1MB
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		c.room.frames <- inboundFrame{from: c, data: data}
	}
}

// writePump 把 send 通道里的帧写到连接上，定期 ping 保活。
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
