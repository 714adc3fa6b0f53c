package mysql

import (
	"errors"
	"time"

	"zalo_connector/internal/model"

	"gorm.io/gorm"
)

type syncStatusRepository struct {
	db *gorm.DB
}

func newSyncStatusRepository(db *gorm.DB) SyncStatusRepository {
	return &syncStatusRepository{db: db}
}

// MarkSyncing 标记会话进入同步周期，行不存在时创建
func (r *syncStatusRepository) MarkSyncing(conversationId string) error {
	var existing model.SyncStatus
	err := r.db.First(&existing, "conversation_id = ?", conversationId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		status := model.SyncStatus{
			ConversationId: conversationId,
			IsSyncing:      true,
		}
		if err := r.db.Create(&status).Error; err != nil {
			return wrapDBErrorf(err, "创建同步状态 conv=%s", conversationId)
		}
		return nil
	}
	if err != nil {
		return wrapDBErrorf(err, "查询同步状态 conv=%s", conversationId)
	}
	if err := r.db.Model(&existing).Update("is_syncing", true).Error; err != nil {
		return wrapDBErrorf(err, "更新同步状态 conv=%s", conversationId)
	}
	return nil
}

// MarkIdle 标记会话同步完成并记录最后入库消息
func (r *syncStatusRepository) MarkIdle(conversationId, lastMessageId string) error {
	updates := map[string]any{
		"is_syncing":   false,
		"last_sync_at": time.Now(),
	}
	if lastMessageId != "" {
		updates["last_message_id_synced"] = lastMessageId
	}
	err := r.db.Model(&model.SyncStatus{}).
		Where("conversation_id = ?", conversationId).
		Updates(updates).Error
	if err != nil {
		return wrapDBErrorf(err, "标记同步完成 conv=%s", conversationId)
	}
	return nil
}

// MarkFailed 记录同步失败原因并退出 syncing 态
// 失败不能让状态停留在 syncing，否则后续周期会被误判为进行中
func (r *syncStatusRepository) MarkFailed(conversationId, errMsg string) error {
	updates := map[string]any{
		"is_syncing":  false,
		"sync_errors": errMsg,
	}
	err := r.db.Model(&model.SyncStatus{}).
		Where("conversation_id = ?", conversationId).
		Updates(updates).Error
	if err != nil {
		return wrapDBErrorf(err, "标记同步失败 conv=%s", conversationId)
	}
	return nil
}

// FindByConversation 查询会话同步状态
func (r *syncStatusRepository) FindByConversation(conversationId string) (*model.SyncStatus, error) {
	var status model.SyncStatus
	if err := r.db.First(&status, "conversation_id = ?", conversationId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapDBErrorf(err, "查询同步状态 conv=%s", conversationId)
	}
	return &status, nil
}
