// Package model 定义本地镜像库的实体模型
// 本文件定义会话模型，会话 ID 由 (类型, 参与方) 确定性推导
package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// 会话类型
const (
	ConversationTypeDirect int8 = 0 // 单聊
	ConversationTypeGroup  int8 = 1 // 群聊
)

// Conversation 会话模型
// 对应数据库 conversation 表
// Uuid 是 (类型, 参与方) 的纯函数：
//
//	单聊: direct_<min(a,b)>_<max(a,b)>，双方 ID 排序后拼接，与事件到达顺序无关
//	群聊: group_<群组id>
//
// 并发事件引用同一逻辑会话时必须收敛到同一行，该确定性是幂等入库的前提
type Conversation struct {
	gorm.Model

	// Uuid 推导出的会话 ID
	Uuid string `gorm:"column:uuid;uniqueIndex;type:varchar(64);not null;comment:会话id"`

	// Type 会话类型，0 单聊 1 群聊
	Type int8 `gorm:"column:type;not null;comment:类型，0.单聊，1.群聊"`

	// ParticipantId 单聊对端的平台用户 ID（群聊为空）
	ParticipantId string `gorm:"column:participant_id;index;type:char(20);comment:单聊对端id"`

	// GroupUuid 群聊的平台群组 ID（单聊为空）
	GroupUuid string `gorm:"column:group_uuid;index;type:char(20);comment:群组id"`

	// LastMessageId 最新消息的平台消息 ID
	LastMessageId string `gorm:"column:last_message_id;type:varchar(64);comment:最新消息id"`

	// LastMessageAt 最新消息时间，用于会话列表排序
	LastMessageAt sql.NullTime `gorm:"column:last_message_at;comment:最新消息时间"`

	IsPinned    bool `gorm:"column:is_pinned;default:false;comment:置顶"`
	IsArchived  bool `gorm:"column:is_archived;default:false;comment:归档"`
	IsMuted     bool `gorm:"column:is_muted;default:false;comment:免打扰"`
	IsHidden    bool `gorm:"column:is_hidden;default:false;comment:隐藏"`
	UnreadCount int  `gorm:"column:unread_count;default:0;comment:未读数"`
}

// TableName 指定表名
func (Conversation) TableName() string {
	return "conversation"
}
