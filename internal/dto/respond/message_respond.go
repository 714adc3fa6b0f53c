package respond

import "time"

// MessageRespond 消息概要
type MessageRespond struct {
	Uuid           string    `json:"uuid"`
	ClientMsgId    string    `json:"clientMsgId,omitempty"`
	ConversationId string    `json:"conversationId"`
	SenderId       string    `json:"senderId"`
	Content        string    `json:"content"`
	SentAt         time.Time `json:"sentAt"`
	IsUndone       bool      `json:"isUndone"`
}
