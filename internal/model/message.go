// Package model 定义本地镜像库的实体模型
// 本文件定义消息模型，以平台消息 ID 做幂等键
package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// Message 消息镜像
// 对应数据库 message 表
// Uuid 全局唯一，同一平台消息 ID 至多写入一行；
// ClientMsgId 作为次级去重键，覆盖本地发送与回流事件竞态的场景
type Message struct {
	gorm.Model

	// Uuid 平台侧消息 ID
	Uuid string `gorm:"column:uuid;uniqueIndex;type:varchar(64);not null;comment:平台消息id"`

	// ClientMsgId 本地发送时生成的关联 ID，回流事件据此去重
	ClientMsgId string `gorm:"column:client_msg_id;index;type:varchar(64);comment:客户端关联id"`

	// ConversationId 所属会话的推导 ID
	ConversationId string `gorm:"column:conversation_id;index;type:varchar(64);not null;comment:会话id"`

	// SenderId 发送者平台用户 ID，系统事件可能为空
	SenderId string `gorm:"column:sender_id;index;type:char(20);comment:发送者id"`

	// Content 文本内容；结构化消息存其描述/标题兜底文本
	Content string `gorm:"column:content;type:TEXT;comment:消息内容"`

	// RawSnapshot 平台事件原始 JSON
	RawSnapshot string `gorm:"column:raw_snapshot;type:TEXT;comment:原始事件快照"`

	// SentAt 平台侧发送时间
	SentAt sql.NullTime `gorm:"column:sent_at;comment:发送时间"`

	// ReceivedAt 本地收到事件的时间
	ReceivedAt sql.NullTime `gorm:"column:received_at;comment:接收时间"`

	IsEdited bool `gorm:"column:is_edited;default:false;comment:已编辑"`
	IsUndone bool `gorm:"column:is_undone;default:false;comment:已撤回"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "message"
}
