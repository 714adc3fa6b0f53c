// Package handler 提供 HTTP 请求处理器
// 本文件定义 Handler 聚合结构和构造函数
package handler

import (
	"zalo_connector/internal/gateway/websocket"
	"zalo_connector/internal/service"
)

// Handlers 聚合所有 Handler 实例
// 作为依赖注入的入口，Router 层通过此结构访问各个 Handler
type Handlers struct {
	Auth      *AuthHandler
	Connector *ConnectorHandler
	Message   *MessageHandler
	Label     *LabelHandler
	QuickMsg  *QuickMessageHandler
	Events    *EventsHandler
}

// NewHandlers 创建并注入所有 Handler 实例
func NewHandlers(svc *service.Services, hub *websocket.Hub) *Handlers {
	return &Handlers{
		Auth:      NewAuthHandler(),
		Connector: NewConnectorHandler(svc),
		Message:   NewMessageHandler(svc),
		Label:     NewLabelHandler(svc),
		QuickMsg:  NewQuickMessageHandler(svc),
		Events:    NewEventsHandler(hub),
	}
}
