// 本文件处理面板接口的认证
package handler

import (
	"github.com/gin-gonic/gin"

	"zalo_connector/internal/config"
	"zalo_connector/internal/dto/request"
	"zalo_connector/internal/dto/respond"
	"zalo_connector/pkg/errorx"
	"zalo_connector/pkg/util/jwt"
)

// AuthHandler 认证处理器
type AuthHandler struct{}

// NewAuthHandler 创建认证处理器
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// Token 签发面板接口的 Access Token
// POST /auth/token
// 调用方持配置中的签名密钥换取短期 Token，后续请求走 Bearer 认证
func (h *AuthHandler) Token(c *gin.Context) {
	var req request.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	if req.ApiKey != config.GetConfig().JWTConfig.Secret {
		HandleError(c, errorx.New(errorx.CodeUnauthorized, "密钥不正确"))
		return
	}

	token, err := jwt.GenerateAccessToken(req.CallerId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.TokenRespond{AccessToken: token})
}
