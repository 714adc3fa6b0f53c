package request

// SendMessageRequest 发送文本消息请求
type SendMessageRequest struct {
	AccountId      string `json:"accountId"`
	ConversationId string `json:"conversationId" binding:"required"`
	Content        string `json:"content" binding:"required"`
}

// SendAttachmentRequest 发送附件消息请求
type SendAttachmentRequest struct {
	AccountId      string `json:"accountId"`
	ConversationId string `json:"conversationId" binding:"required"`
	Url            string `json:"url" binding:"required"`
	FileName       string `json:"fileName"`
	MimeType       string `json:"mimeType"`
	FileSize       int64  `json:"fileSize"`
	Caption        string `json:"caption"`
}

// UndoMessageRequest 撤回消息请求
type UndoMessageRequest struct {
	AccountId string `json:"accountId"`
	MessageId string `json:"messageId" binding:"required"`
}

// DeleteMessageRequest 删除消息请求
type DeleteMessageRequest struct {
	AccountId string `json:"accountId"`
	MessageId string `json:"messageId" binding:"required"`
	OnlyMe    bool   `json:"onlyMe"`
}

// ForwardMessageRequest 转发消息请求
type ForwardMessageRequest struct {
	AccountId       string   `json:"accountId"`
	MessageId       string   `json:"messageId" binding:"required"`
	ConversationIds []string `json:"conversationIds" binding:"required,min=1"`
}
