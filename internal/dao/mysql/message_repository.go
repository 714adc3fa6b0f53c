package mysql

import (
	"errors"

	"zalo_connector/internal/model"

	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

func newMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// FindByUuid 按平台消息 ID 查找消息
func (r *messageRepository) FindByUuid(uuid string) (*model.Message, error) {
	var msg model.Message
	if err := r.db.First(&msg, "uuid = ?", uuid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapDBErrorf(err, "查询消息 uuid=%s", uuid)
	}
	return &msg, nil
}

// ExistsByUuid 平台消息 ID 是否已入库
func (r *messageRepository) ExistsByUuid(uuid string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Message{}).Where("uuid = ?", uuid).Count(&count).Error; err != nil {
		return false, wrapDBErrorf(err, "查询消息是否存在 uuid=%s", uuid)
	}
	return count > 0, nil
}

// ExistsByClientMsgId 客户端关联 ID 是否已入库
func (r *messageRepository) ExistsByClientMsgId(clientMsgId string) (bool, error) {
	if clientMsgId == "" {
		return false, nil
	}
	var count int64
	if err := r.db.Model(&model.Message{}).Where("client_msg_id = ?", clientMsgId).Count(&count).Error; err != nil {
		return false, wrapDBErrorf(err, "查询消息是否存在 client_msg_id=%s", clientMsgId)
	}
	return count > 0, nil
}

// Create 写入消息
func (r *messageRepository) Create(msg *model.Message) error {
	if err := r.db.Create(msg).Error; err != nil {
		return wrapDBErrorf(err, "创建消息 uuid=%s", msg.Uuid)
	}
	return nil
}

// MarkUndone 标记消息已撤回
func (r *messageRepository) MarkUndone(uuid string) error {
	err := r.db.Model(&model.Message{}).Where("uuid = ?", uuid).Update("is_undone", true).Error
	if err != nil {
		return wrapDBErrorf(err, "标记消息撤回 uuid=%s", uuid)
	}
	return nil
}
