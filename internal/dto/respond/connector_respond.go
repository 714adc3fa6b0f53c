package respond

import "time"

// StatusRespond 连接器状态
type StatusRespond struct {
	Status   string                 `json:"status"`           // logged_out / pending_qr / logged_in
	QrCode   string                 `json:"qrCode,omitempty"` // 进行中扫码登录的二维码内容
	Accounts []AccountStatusRespond `json:"accounts"`
}

// AccountStatusRespond 单账号状态
type AccountStatusRespond struct {
	AccountId string `json:"accountId"`
	Status    string `json:"status"`
	Listening bool   `json:"listening"`
	Attempts  int    `json:"attempts"` // 当前重连计数
}

// QRCodeRespond 二维码内容
type QRCodeRespond struct {
	Code string `json:"code"`
}

// SessionRespond 持久化会话概要（不含凭证数据）
type SessionRespond struct {
	AccountId string    `json:"accountId"`
	LoginTime time.Time `json:"loginTime"`
	IsActive  bool      `json:"isActive"`
}

// TokenRespond 面板接口 Token
type TokenRespond struct {
	AccessToken string `json:"accessToken"`
}
