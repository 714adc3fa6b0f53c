package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// SyncStatus 会话级同步状态
// 每个会话一行；入库周期前后在 syncing/idle 之间翻转，
// 处理失败时记录最后一次错误但不阻塞后续周期
type SyncStatus struct {
	gorm.Model
	ConversationId      string       `gorm:"column:conversation_id;uniqueIndex;type:varchar(64);not null;comment:会话id"`
	IsSyncing           bool         `gorm:"column:is_syncing;default:false;comment:是否同步中"`
	LastMessageIdSynced string       `gorm:"column:last_message_id_synced;type:varchar(64);comment:最后入库消息id"`
	LastSyncAt          sql.NullTime `gorm:"column:last_sync_at;comment:最后同步时间"`
	SyncErrors          string       `gorm:"column:sync_errors;type:TEXT;comment:最近错误"`
}

func (SyncStatus) TableName() string {
	return "sync_status"
}
