// 本文件处理登录/登出/状态/同步相关的 API 请求
package handler

import (
	"encoding/base64"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"zalo_connector/internal/dto/request"
	"zalo_connector/internal/dto/respond"
	"zalo_connector/internal/service"
	"zalo_connector/pkg/errorx"
)

// ConnectorHandler 连接器生命周期处理器
type ConnectorHandler struct {
	svc *service.Services
}

// NewConnectorHandler 创建连接器处理器
func NewConnectorHandler(svc *service.Services) *ConnectorHandler {
	return &ConnectorHandler{svc: svc}
}

// LoginQR 发起扫码登录
// POST /connector/login/qr
// 二维码内容经事件网关推送（type=qr_code），接口本身立即返回
func (h *ConnectorHandler) LoginQR(c *gin.Context) {
	var req request.QRLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	err := h.svc.Login.InitiateLogin(c.Request.Context(), req.DeviceId, req.ClientId, func(code string) {
		h.pushQRCode(code)
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// pushQRCode 把二维码内容作为事件推给订阅端
func (h *ConnectorHandler) pushQRCode(code string) {
	ctx, cancel := contextWithDefaultTimeout()
	defer cancel()
	if err := h.svc.Broker.Publish(ctx, qrCodeEvent(code)); err != nil {
		zap.L().Warn("二维码推送失败", zap.Error(err))
	}
}

// ImportSession 凭证导入登录
// POST /connector/login/import
func (h *ConnectorHandler) ImportSession(c *gin.Context) {
	var req request.ImportSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	material, err := base64.StdEncoding.DecodeString(req.Credential)
	if err != nil {
		HandleError(c, errorx.New(errorx.CodeInvalidParam, "凭证数据不是合法的 base64"))
		return
	}
	if err := h.svc.Login.ImportSession(c.Request.Context(), req.DeviceId, req.ClientId, material); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// Logout 登出
// POST /connector/logout
func (h *ConnectorHandler) Logout(c *gin.Context) {
	var req request.LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.svc.Login.Logout(c.Request.Context(), req.AccountId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// Status 查询连接器状态
// GET /connector/status
func (h *ConnectorHandler) Status(c *gin.Context) {
	resp := respond.StatusRespond{
		Status: h.svc.Login.Status("").String(),
		QrCode: h.svc.Login.PendingQRCode(),
	}
	for _, state := range h.svc.Login.AccountStates() {
		resp.Accounts = append(resp.Accounts, respond.AccountStatusRespond{
			AccountId: state.AccountId,
			Status:    state.Status.String(),
			Listening: state.Listening,
			Attempts:  state.Attempts,
		})
	}
	HandleSuccess(c, resp)
}

// Sessions 列出持久化会话（不含凭证数据）
// GET /connector/sessions
func (h *ConnectorHandler) Sessions(c *gin.Context) {
	sessions, err := h.svc.Sessions.ListAll(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}

	resp := make([]respond.SessionRespond, 0, len(sessions))
	for _, s := range sessions {
		resp = append(resp, respond.SessionRespond{
			AccountId: s.AccountId,
			LoginTime: s.LoginTime,
			IsActive:  s.IsActive,
		})
	}
	HandleSuccess(c, resp)
}

// Sync 手动触发同步
// POST /connector/sync
// 带 groupId 时同步单个群（同步执行），否则后台做全量群同步
func (h *ConnectorHandler) Sync(c *gin.Context) {
	var req request.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	if req.GroupId != "" {
		ctx, cancel := contextWithSyncTimeout()
		defer cancel()
		if err := h.svc.Syncer.SyncGroup(ctx, req.AccountId, req.GroupId); err != nil {
			HandleError(c, err)
			return
		}
		HandleSuccess(c, nil)
		return
	}

	accountId := req.AccountId
	go func() {
		ctx, cancel := contextWithSyncTimeout()
		defer cancel()
		if err := h.svc.Syncer.SyncAll(ctx, accountId); err != nil {
			zap.L().Error("手动同步失败", zap.String("accountId", accountId), zap.Error(err))
		}
	}()
	HandleSuccess(c, nil)
}
