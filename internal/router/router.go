// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"github.com/gin-gonic/gin"

	"zalo_connector/internal/handler"
)

// Router 路由管理器，持有 Handler 聚合
type Router struct {
	handlers *handler.Handlers
}

// NewRouter 创建路由管理器
func NewRouter(handlers *handler.Handlers) *Router {
	return &Router{handlers: handlers}
}

// RegisterRoutes 注册所有路由
// 在 https_server.Init() 中调用
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	rt.registerAuthRoutes(r)      // 认证路由
	rt.registerConnectorRoutes(r) // 连接器生命周期路由
	rt.registerMessageRoutes(r)   // 出站消息路由
	rt.registerLabelRoutes(r)     // 标签路由
	rt.registerQuickMsgRoutes(r)  // 快捷语路由
	rt.registerEventRoutes(r)     // 事件订阅路由
}
