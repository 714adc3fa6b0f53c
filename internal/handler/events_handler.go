// 本文件处理事件订阅的 websocket 升级
package handler

import (
	"github.com/gin-gonic/gin"

	"zalo_connector/internal/gateway/websocket"
)

// EventsHandler 事件订阅处理器
type EventsHandler struct {
	hub *websocket.Hub
}

// NewEventsHandler 创建事件订阅处理器
func NewEventsHandler(hub *websocket.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Subscribe 升级为 websocket 并订阅事件流
// GET /events/subscribe
func (h *EventsHandler) Subscribe(c *gin.Context) {
	h.hub.Serve(c)
}
