// 本文件处理出站消息相关的 API 请求
package handler

import (
	"github.com/gin-gonic/gin"

	"zalo_connector/internal/dto/request"
	"zalo_connector/internal/dto/respond"
	"zalo_connector/internal/model"
	"zalo_connector/internal/platform"
	"zalo_connector/internal/service"
)

// MessageHandler 出站消息处理器
type MessageHandler struct {
	svc *service.Services
}

// NewMessageHandler 创建消息处理器
func NewMessageHandler(svc *service.Services) *MessageHandler {
	return &MessageHandler{svc: svc}
}

// Send 发送文本消息
// POST /message/send
func (h *MessageHandler) Send(c *gin.Context) {
	var req request.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	msg, err := h.svc.Outbound.SendText(c.Request.Context(), req.AccountId, req.ConversationId, req.Content)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, toMessageRespond(msg))
}

// SendAttachment 发送附件消息
// POST /message/send_attachment
func (h *MessageHandler) SendAttachment(c *gin.Context) {
	var req request.SendAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	att := &platform.AttachmentInfo{
		Url:      req.Url,
		FileName: req.FileName,
		MimeType: req.MimeType,
		FileSize: req.FileSize,
	}
	msg, err := h.svc.Outbound.SendAttachment(c.Request.Context(), req.AccountId, req.ConversationId, att, req.Caption)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, toMessageRespond(msg))
}

// Undo 撤回消息
// POST /message/undo
func (h *MessageHandler) Undo(c *gin.Context) {
	var req request.UndoMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.svc.Outbound.Undo(c.Request.Context(), req.AccountId, req.MessageId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// Delete 删除消息
// POST /message/delete
func (h *MessageHandler) Delete(c *gin.Context) {
	var req request.DeleteMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.svc.Outbound.Delete(c.Request.Context(), req.AccountId, req.MessageId, req.OnlyMe); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// Forward 转发消息
// POST /message/forward
func (h *MessageHandler) Forward(c *gin.Context) {
	var req request.ForwardMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.svc.Outbound.Forward(c.Request.Context(), req.AccountId, req.MessageId, req.ConversationIds); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

func toMessageRespond(msg *model.Message) respond.MessageRespond {
	resp := respond.MessageRespond{
		Uuid:           msg.Uuid,
		ClientMsgId:    msg.ClientMsgId,
		ConversationId: msg.ConversationId,
		SenderId:       msg.SenderId,
		Content:        msg.Content,
		IsUndone:       msg.IsUndone,
	}
	if msg.SentAt.Valid {
		resp.SentAt = msg.SentAt.Time
	}
	return resp
}
