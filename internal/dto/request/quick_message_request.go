package request

// CreateQuickMessageRequest 创建快捷语请求
type CreateQuickMessageRequest struct {
	Shortcut string `json:"shortcut" binding:"required,max=50"`
	Content  string `json:"content" binding:"required"`
}

// UpdateQuickMessageRequest 更新快捷语请求
type UpdateQuickMessageRequest struct {
	Uuid     string `json:"uuid" binding:"required"`
	Shortcut string `json:"shortcut"`
	Content  string `json:"content"`
}
