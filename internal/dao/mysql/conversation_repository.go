package mysql

import (
	"errors"
	"time"

	"zalo_connector/internal/model"

	"gorm.io/gorm"
)

type conversationRepository struct {
	db *gorm.DB
}

func newConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// FindByUuid 按推导出的会话 ID 查找会话
func (r *conversationRepository) FindByUuid(uuid string) (*model.Conversation, error) {
	var conv model.Conversation
	if err := r.db.First(&conv, "uuid = ?", uuid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapDBErrorf(err, "查询会话 uuid=%s", uuid)
	}
	return &conv, nil
}

// Upsert 按 uuid 幂等写入
// 会话 ID 是 (类型, 参与方) 的纯函数，并发事件会收敛到同一行；
// 已存在时不覆盖置顶/归档/免打扰等本地标志
func (r *conversationRepository) Upsert(conv *model.Conversation) error {
	var existing model.Conversation
	err := r.db.First(&existing, "uuid = ?", conv.Uuid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := r.db.Create(conv).Error; err != nil {
			return wrapDBErrorf(err, "创建会话 uuid=%s", conv.Uuid)
		}
		return nil
	}
	if err != nil {
		return wrapDBErrorf(err, "查询会话 uuid=%s", conv.Uuid)
	}
	return nil
}

// UpdateLastMessage 更新会话的最新消息指针
func (r *conversationRepository) UpdateLastMessage(uuid, messageUuid string, at time.Time) error {
	updates := map[string]any{
		"last_message_id": messageUuid,
		"last_message_at": at,
	}
	err := r.db.Model(&model.Conversation{}).Where("uuid = ?", uuid).Updates(updates).Error
	if err != nil {
		return wrapDBErrorf(err, "更新会话最新消息 uuid=%s", uuid)
	}
	return nil
}
