package ws

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Inmylir/realtime-chat/internal/auth"
	"github.com/Inmylir/realtime-chat/internal/metrics"
	"github.com/Inmylir/realtime-chat/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Hub 按房间名管理 Room，首次加入时懒创建，空置后回收。
// refs 记录"已注册 + 在途加入"的连接数，在 hub 锁下先加后投递，
// 保证房间 goroutine 在还有连接要进来时绝不会退出。
type Hub struct {
	mu    sync.Mutex
	rooms map[string]*Room
	store MessageStore
}

func NewHub(store MessageStore) *Hub {
	return &Hub{rooms: make(map[string]*Room), store: store}
}

// Join 把一个已鉴权的连接路由到其房间的唯一实例，必要时先创建。
func (h *Hub) Join(room string, c *Client) {
	h.mu.Lock()
	r := h.rooms[room]
	if r == nil {
		r = newRoom(room, h, h.store)
		h.rooms[room] = r
		go r.run()
	}
	r.refs++
	h.mu.Unlock()

	c.room = r
	r.join <- c
}

// detach 在房间处理完一次离开后调用，归零则把房间摘下并让它退出。
func (h *Hub) detach(r *Room) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	r.refs--
	if r.refs > 0 {
		return false
	}
	delete(h.rooms, r.name)
	return true
}

// Online 返回房间当前注册的连接数。
func (h *Hub) Online(room string) int {
	h.mu.Lock()
	r := h.rooms[room]
	h.mu.Unlock()
	if r == nil {
		return 0
	}
	return int(atomic.LoadInt32(&r.online))
}

type inboundFrame struct {
	from *Client
	data []byte
}

// Room 是一个房间的会话实例：持有注册表，串行处理加入、离开和上行帧。
// 全部事件都在 run 这一个 goroutine 里处理，注册表和广播不需要锁；
// 跨房间互不相干，不同 Room 并行运行。
type Room struct {
	name    string
	hub     *Hub
	store   MessageStore
	clients map[*Client]auth.Identity

	join   chan *Client
	leave  chan *Client
	frames chan inboundFrame

	online int32
	refs   int // hub.mu 保护
}

func newRoom(name string, hub *Hub, store MessageStore) *Room {
	return &Room{
		name:    name,
		hub:     hub,
		store:   store,
		clients: make(map[*Client]auth.Identity),
		join:    make(chan *Client),
		leave:   make(chan *Client),
		frames:  make(chan inboundFrame, 256),
	}
}

func (r *Room) run() {
	for {
		select {
		case c := <-r.join:
			r.clients[c] = c.identity
			atomic.StoreInt32(&r.online, int32(len(r.clients)))
			metrics.WsConnections.Inc()
			// 先给新连接发私有欢迎，再向其他人广播进房通知
			c.trySend(systemNotice("欢迎，" + c.identity.Username + "！"))
			r.broadcast(systemNotice(c.identity.Username+" 进入了房间"), c)

		case c := <-r.leave:
			if id, ok := r.clients[c]; ok {
				r.drop(c)
				r.broadcast(systemNotice(id.Username+" 离开了房间"), nil)
			}
			if r.hub.detach(r) {
				return
			}

		case in := <-r.frames:
			r.handleFrame(in)
		}
	}
}

// handleFrame 处理一条上行帧：校验、落库、广播，严格按此顺序。
// 没写进库的消息绝不会广播，历史回放因此不可能和实时看到的发生分叉。
func (r *Room) handleFrame(in inboundFrame) {
	id, ok := r.clients[in.from]
	if !ok {
		return
	}
	msgType, content, ok := ParseClientFrame(in.data)
	if !ok {
		metrics.WsFramesDropped.Inc()
		return
	}

	msg := &models.Message{
		ID:        uuid.NewString(),
		Room:      r.name,
		UserID:    id.ID,
		Username:  id.Username,
		Type:      msgType,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := r.store.Save(msg); err != nil {
		log.Error().Err(err).Str("room", r.name).Uint("user_id", id.ID).Msg("persist message")
		metrics.WsFramesDropped.Inc()
		return
	}

	frame := MessageFrame{
		Type:    "message",
		ID:      msg.ID,
		Room:    msg.Room,
		User:    UserRef{ID: id.ID, Username: id.Username},
		MsgType: msgType,
		Content: content,
		Ts:      msg.CreatedAt.UnixMilli(),
	}
	b, err := json.Marshal(frame)
	if err != nil {
		return
	}
	metrics.WsMessagesTotal.Inc()
	// 发消息的人也收到广播，它看到的顺序就是落库顺序
	r.broadcast(b, nil)
}

// broadcast 尽力把一帧发给所有注册连接。写缓冲已满的连接视作跟不上，
// 直接摘掉；单个连接发不出去不影响其余连接收到这一帧。
func (r *Room) broadcast(data []byte, exclude *Client) {
	for c := range r.clients {
		if c == exclude {
			continue
		}
		select {
		case c.send <- data:
		default:
			r.drop(c)
		}
	}
}

// drop 把连接从注册表摘除并关闭其发送通道，只会在 run goroutine 里调用。
func (r *Room) drop(c *Client) {
	delete(r.clients, c)
	close(c.send)
	atomic.StoreInt32(&r.online, int32(len(r.clients)))
	metrics.WsConnections.Dec()
}
