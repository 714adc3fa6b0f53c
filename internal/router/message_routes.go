// Package router 提供 HTTP 路由注册
// 本文件定义出站消息、标签和快捷语相关的路由
package router

import (
	"github.com/gin-gonic/gin"

	"zalo_connector/internal/infrastructure/middleware"
)

// registerMessageRoutes 注册出站消息路由（需要认证）
func (rt *Router) registerMessageRoutes(r *gin.Engine) {
	messageGroup := r.Group("/message", middleware.JWTAuth())
	{
		messageGroup.POST("/send", rt.handlers.Message.Send)                       // 发送文本消息
		messageGroup.POST("/send_attachment", rt.handlers.Message.SendAttachment)  // 发送附件消息
		messageGroup.POST("/undo", rt.handlers.Message.Undo)                       // 撤回消息
		messageGroup.POST("/delete", rt.handlers.Message.Delete)                   // 删除消息
		messageGroup.POST("/forward", rt.handlers.Message.Forward)                 // 转发消息
	}
}

// registerLabelRoutes 注册标签路由（需要认证）
func (rt *Router) registerLabelRoutes(r *gin.Engine) {
	labelGroup := r.Group("/label", middleware.JWTAuth())
	{
		labelGroup.GET("/list", rt.handlers.Label.List)                    // 标签列表
		labelGroup.POST("/create", rt.handlers.Label.Create)               // 创建标签
		labelGroup.POST("/update", rt.handlers.Label.Update)               // 更新标签
		labelGroup.POST("/delete/:uuid", rt.handlers.Label.Delete)         // 删除标签
		labelGroup.POST("/attach", rt.handlers.Label.Attach)               // 会话打标
		labelGroup.POST("/detach", rt.handlers.Label.Detach)               // 会话去标
		labelGroup.GET("/conversation/:id", rt.handlers.Label.Conversation) // 会话标签查询
	}
}

// registerQuickMsgRoutes 注册快捷语路由（需要认证）
func (rt *Router) registerQuickMsgRoutes(r *gin.Engine) {
	quickGroup := r.Group("/quick_message", middleware.JWTAuth())
	{
		quickGroup.GET("/list", rt.handlers.QuickMsg.List)            // 快捷语列表
		quickGroup.GET("/lookup", rt.handlers.QuickMsg.Lookup)        // 关键字查找
		quickGroup.POST("/create", rt.handlers.QuickMsg.Create)       // 创建快捷语
		quickGroup.POST("/update", rt.handlers.QuickMsg.Update)       // 更新快捷语
		quickGroup.POST("/delete/:uuid", rt.handlers.QuickMsg.Delete) // 删除快捷语
	}
}
