// Package websocket 实现事件推送网关
// channel 模式下规范化事件经这里广播给所有订阅端（本地前端、自动化脚本等）
package websocket

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"zalo_connector/pkg/constants"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second // 必须小于 pongWait
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	// 订阅端都在本地或内网，不做 Origin 校验
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// subscriber 单个订阅连接
// 发送走带缓冲的 send 通道，写不进去说明订阅端太慢，直接踢掉
type subscriber struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub 订阅端集合
// 实现 mq.BroadcastSink，事件出口把序列化后的事件交给 Broadcast
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber
}

// NewHub 创建推送网关
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]*subscriber),
	}
}

// Serve 把 HTTP 请求升级为 websocket 订阅连接
func (h *Hub) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Error("websocket 升级失败", zap.Error(err))
		return
	}

	sub := &subscriber{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, constants.CHANNEL_SIZE),
	}
	h.mu.Lock()
	h.subscribers[sub.id] = sub
	h.mu.Unlock()

	zap.L().Info("订阅端已连接", zap.String("subscriber", sub.id))
	go h.writePump(sub)
	go h.readPump(sub)
}

// Broadcast 把事件推给所有订阅端
// 单个订阅端的缓冲满时丢弃该端的这条事件，不阻塞其他端
func (h *Hub) Broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subscribers {
		select {
		case sub.send <- data:
		default:
			zap.L().Warn("订阅端消费过慢，丢弃事件", zap.String("subscriber", sub.id))
		}
	}
}

// Count 当前订阅端数量
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// readPump 只为感知断连和响应 pong，订阅端不上行业务数据
func (h *Hub) readPump(sub *subscriber) {
	defer h.drop(sub)

	sub.conn.SetReadLimit(512)
	_ = sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Warn("订阅端异常断开", zap.String("subscriber", sub.id), zap.Error(err))
			}
			return
		}
	}
}

// writePump 消费 send 通道并周期发 ping
func (h *Hub) writePump(sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.drop(sub)
	}()

	for {
		select {
		case data, ok := <-sub.send:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = sub.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				zap.L().Error("事件推送失败", zap.String("subscriber", sub.id), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// drop 移除订阅端并关闭连接，重复调用安全
func (h *Hub) drop(sub *subscriber) {
	h.mu.Lock()
	if _, ok := h.subscribers[sub.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.subscribers, sub.id)
	h.mu.Unlock()

	close(sub.send)
	_ = sub.conn.Close()
	zap.L().Info("订阅端已断开", zap.String("subscriber", sub.id))
}
