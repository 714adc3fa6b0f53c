// 本文件处理快捷语管理相关的 API 请求
package handler

import (
	"github.com/gin-gonic/gin"

	"zalo_connector/internal/dto/request"
	"zalo_connector/internal/dto/respond"
	"zalo_connector/internal/model"
	"zalo_connector/internal/service"
	"zalo_connector/pkg/errorx"
)

// QuickMessageHandler 快捷语处理器
type QuickMessageHandler struct {
	svc *service.Services
}

// NewQuickMessageHandler 创建快捷语处理器
func NewQuickMessageHandler(svc *service.Services) *QuickMessageHandler {
	return &QuickMessageHandler{svc: svc}
}

// List 快捷语列表
// GET /quick_message/list
func (h *QuickMessageHandler) List(c *gin.Context) {
	items, err := h.svc.QuickMsg.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	resp := make([]respond.QuickMessageRespond, 0, len(items))
	for i := range items {
		resp = append(resp, toQuickMessageRespond(&items[i]))
	}
	HandleSuccess(c, resp)
}

// Lookup 按关键字查找快捷语
// GET /quick_message/lookup?shortcut=xxx
func (h *QuickMessageHandler) Lookup(c *gin.Context) {
	shortcut := c.Query("shortcut")
	if shortcut == "" {
		HandleError(c, errorx.ErrInvalidParam)
		return
	}
	qm, err := h.svc.QuickMsg.FindByShortcut(c.Request.Context(), shortcut)
	if err != nil {
		HandleError(c, err)
		return
	}
	if qm == nil {
		HandleError(c, errorx.Newf(errorx.CodeNotFound, "快捷语 %s 不存在", shortcut))
		return
	}
	HandleSuccess(c, toQuickMessageRespond(qm))
}

// Create 创建快捷语
// POST /quick_message/create
func (h *QuickMessageHandler) Create(c *gin.Context) {
	var req request.CreateQuickMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	qm, err := h.svc.QuickMsg.Create(c.Request.Context(), req.Shortcut, req.Content)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, toQuickMessageRespond(qm))
}

// Update 更新快捷语
// POST /quick_message/update
func (h *QuickMessageHandler) Update(c *gin.Context) {
	var req request.UpdateQuickMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	qm, err := h.svc.QuickMsg.Update(c.Request.Context(), req.Uuid, req.Shortcut, req.Content)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, toQuickMessageRespond(qm))
}

// Delete 删除快捷语
// POST /quick_message/delete/:uuid
func (h *QuickMessageHandler) Delete(c *gin.Context) {
	if err := h.svc.QuickMsg.Delete(c.Request.Context(), c.Param("uuid")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

func toQuickMessageRespond(qm *model.QuickMessage) respond.QuickMessageRespond {
	return respond.QuickMessageRespond{
		Uuid:     qm.Uuid,
		Shortcut: qm.Shortcut,
		Content:  qm.Content,
	}
}
