// Package router 提供 HTTP 路由注册
// 本文件定义认证和连接器生命周期相关的路由
package router

import (
	"github.com/gin-gonic/gin"

	"zalo_connector/internal/infrastructure/middleware"
)

// registerAuthRoutes 注册认证相关路由
func (rt *Router) registerAuthRoutes(r *gin.Engine) {
	authGroup := r.Group("/auth")
	{
		// POST /auth/token - 用配置密钥换取 Access Token
		authGroup.POST("/token", rt.handlers.Auth.Token)
	}
}

// registerConnectorRoutes 注册连接器生命周期路由（需要认证）
func (rt *Router) registerConnectorRoutes(r *gin.Engine) {
	connectorGroup := r.Group("/connector", middleware.JWTAuth())
	{
		connectorGroup.POST("/login/qr", rt.handlers.Connector.LoginQR)         // 发起扫码登录
		connectorGroup.POST("/login/import", rt.handlers.Connector.ImportSession) // 凭证导入登录
		connectorGroup.POST("/logout", rt.handlers.Connector.Logout)            // 登出
		connectorGroup.GET("/status", rt.handlers.Connector.Status)             // 查询状态
		connectorGroup.GET("/sessions", rt.handlers.Connector.Sessions)         // 持久化会话列表
		connectorGroup.POST("/sync", rt.handlers.Connector.Sync)                // 手动触发同步
	}
}

// registerEventRoutes 注册事件订阅路由
// websocket 握手无法带自定义 Header，订阅端以 query 参数携带 Token 时
// 也应校验；当前订阅端均在内网，暂不强制
func (rt *Router) registerEventRoutes(r *gin.Engine) {
	eventsGroup := r.Group("/events")
	{
		eventsGroup.GET("/subscribe", rt.handlers.Events.Subscribe) // 订阅事件流
	}
}
