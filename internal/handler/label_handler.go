// 本文件处理标签管理相关的 API 请求
package handler

import (
	"github.com/gin-gonic/gin"

	"zalo_connector/internal/dto/request"
	"zalo_connector/internal/dto/respond"
	"zalo_connector/internal/model"
	"zalo_connector/internal/service"
)

// LabelHandler 标签处理器
type LabelHandler struct {
	svc *service.Services
}

// NewLabelHandler 创建标签处理器
func NewLabelHandler(svc *service.Services) *LabelHandler {
	return &LabelHandler{svc: svc}
}

// List 标签列表
// GET /label/list
func (h *LabelHandler) List(c *gin.Context) {
	labels, err := h.svc.Label.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, toLabelResponds(labels))
}

// Create 创建标签
// POST /label/create
func (h *LabelHandler) Create(c *gin.Context) {
	var req request.CreateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	l, err := h.svc.Label.Create(c.Request.Context(), req.Name, req.ColorHex, req.Description)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, toLabelRespond(l))
}

// Update 更新标签
// POST /label/update
func (h *LabelHandler) Update(c *gin.Context) {
	var req request.UpdateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	l, err := h.svc.Label.Update(c.Request.Context(), req.Uuid, req.Name, req.ColorHex, req.Description)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, toLabelRespond(l))
}

// Delete 删除标签
// POST /label/delete/:uuid
func (h *LabelHandler) Delete(c *gin.Context) {
	if err := h.svc.Label.Delete(c.Request.Context(), c.Param("uuid")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// Attach 给会话打标签
// POST /label/attach
func (h *LabelHandler) Attach(c *gin.Context) {
	var req request.ConversationLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	l, err := h.svc.Label.Attach(c.Request.Context(), req.ConversationId, req.Name)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, toLabelRespond(l))
}

// Detach 解除会话标签
// POST /label/detach
func (h *LabelHandler) Detach(c *gin.Context) {
	var req request.ConversationLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	l, err := h.svc.Label.Detach(c.Request.Context(), req.ConversationId, req.Name)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, toLabelRespond(l))
}

// Conversation 查询会话已关联的标签
// GET /label/conversation/:id
func (h *LabelHandler) Conversation(c *gin.Context) {
	labels, err := h.svc.Label.LabelsOf(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, toLabelResponds(labels))
}

func toLabelRespond(l *model.Label) respond.LabelRespond {
	return respond.LabelRespond{
		Uuid:        l.Uuid,
		Name:        l.Name,
		ColorHex:    l.ColorHex,
		Description: l.Description,
		IsSystem:    l.IsSystem,
	}
}

func toLabelResponds(labels []model.Label) []respond.LabelRespond {
	resp := make([]respond.LabelRespond, 0, len(labels))
	for i := range labels {
		resp = append(resp, toLabelRespond(&labels[i]))
	}
	return resp
}
