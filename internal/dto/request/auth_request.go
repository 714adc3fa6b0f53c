package request

// TokenRequest 面板接口取 Token 请求
// ApiKey 需与配置中的 JWT 签名密钥一致
type TokenRequest struct {
	CallerId string `json:"callerId" binding:"required"`
	ApiKey   string `json:"apiKey" binding:"required"`
}

// SyncRequest 手动触发同步请求
// GroupId 非空时只同步该群的详情和成员，否则做全量群同步
type SyncRequest struct {
	AccountId string `json:"accountId" binding:"required"`
	GroupId   string `json:"groupId"`
}
