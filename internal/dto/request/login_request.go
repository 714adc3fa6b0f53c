package request

// QRLoginRequest 发起扫码登录请求
type QRLoginRequest struct {
	DeviceId string `json:"deviceId" binding:"required"`
	ClientId string `json:"clientId" binding:"required"`
}

// ImportSessionRequest 凭证导入登录请求
// Credential 为平台凭证数据的 base64 编码
type ImportSessionRequest struct {
	DeviceId   string `json:"deviceId" binding:"required"`
	ClientId   string `json:"clientId" binding:"required"`
	Credential string `json:"credential" binding:"required"`
}

// LogoutRequest 登出请求
// AccountId 为空时登出全部在线账号
type LogoutRequest struct {
	AccountId string `json:"accountId"`
}
