package mysql

import (
	"errors"

	"zalo_connector/internal/model"

	"gorm.io/gorm"
)

type reactionRepository struct {
	db *gorm.DB
}

func newReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

// Upsert 按 (消息, 用户) 幂等写入
// 同一用户对同一消息的后到表态覆盖 icon/type（last-write-wins）
func (r *reactionRepository) Upsert(reaction *model.Reaction) error {
	var existing model.Reaction
	err := r.db.First(&existing, "message_uuid = ? AND user_uuid = ?", reaction.MessageUuid, reaction.UserUuid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := r.db.Create(reaction).Error; err != nil {
			return wrapDBErrorf(err, "创建表态 message=%s user=%s", reaction.MessageUuid, reaction.UserUuid)
		}
		return nil
	}
	if err != nil {
		return wrapDBErrorf(err, "查询表态 message=%s user=%s", reaction.MessageUuid, reaction.UserUuid)
	}

	updates := map[string]any{
		"icon": reaction.Icon,
		"type": reaction.Type,
	}
	if err := r.db.Model(&existing).Updates(updates).Error; err != nil {
		return wrapDBErrorf(err, "更新表态 message=%s user=%s", reaction.MessageUuid, reaction.UserUuid)
	}
	return nil
}
