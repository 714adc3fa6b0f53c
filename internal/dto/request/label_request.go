package request

// CreateLabelRequest 创建标签请求
type CreateLabelRequest struct {
	Name        string `json:"name" binding:"required,max=50"`
	ColorHex    string `json:"colorHex"`
	Description string `json:"description"`
}

// UpdateLabelRequest 更新标签请求
type UpdateLabelRequest struct {
	Uuid        string `json:"uuid" binding:"required"`
	Name        string `json:"name"`
	ColorHex    string `json:"colorHex"`
	Description string `json:"description"`
}

// ConversationLabelRequest 会话打标/去标请求
type ConversationLabelRequest struct {
	ConversationId string `json:"conversationId" binding:"required"`
	Name           string `json:"name" binding:"required"`
}
