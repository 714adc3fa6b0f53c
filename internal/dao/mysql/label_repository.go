package mysql

import (
	"errors"

	"zalo_connector/internal/model"

	"gorm.io/gorm"
)

type labelRepository struct {
	db *gorm.DB
}

func newLabelRepository(db *gorm.DB) LabelRepository {
	return &labelRepository{db: db}
}

func (r *labelRepository) FindByUuid(uuid string) (*model.Label, error) {
	var label model.Label
	if err := r.db.First(&label, "uuid = ?", uuid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapDBErrorf(err, "查询标签 uuid=%s", uuid)
	}
	return &label, nil
}

// FindByNameFold 按名称大小写不敏感精确匹配
// MySQL 默认排序规则本身不区分大小写，LOWER 兜底其他排序规则
func (r *labelRepository) FindByNameFold(name string) (*model.Label, error) {
	var label model.Label
	if err := r.db.First(&label, "LOWER(name) = LOWER(?)", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapDBErrorf(err, "查询标签 name=%s", name)
	}
	return &label, nil
}

func (r *labelRepository) FindAll() ([]model.Label, error) {
	var labels []model.Label
	if err := r.db.Find(&labels).Error; err != nil {
		return nil, wrapDBError(err, "查询标签列表")
	}
	return labels, nil
}

func (r *labelRepository) Create(label *model.Label) error {
	if err := r.db.Create(label).Error; err != nil {
		return wrapDBErrorf(err, "创建标签 name=%s", label.Name)
	}
	return nil
}

func (r *labelRepository) Update(label *model.Label) error {
	if err := r.db.Save(label).Error; err != nil {
		return wrapDBErrorf(err, "更新标签 uuid=%s", label.Uuid)
	}
	return nil
}

func (r *labelRepository) Delete(uuid string) error {
	if err := r.db.Where("uuid = ?", uuid).Delete(&model.Label{}).Error; err != nil {
		return wrapDBErrorf(err, "删除标签 uuid=%s", uuid)
	}
	// 级联清理会话关联
	if err := r.db.Where("label_uuid = ?", uuid).Delete(&model.ConversationLabel{}).Error; err != nil {
		return wrapDBErrorf(err, "清理标签关联 uuid=%s", uuid)
	}
	return nil
}

// AddConversationLabel 建立会话-标签关联，重复调用幂等
func (r *labelRepository) AddConversationLabel(conversationId, labelUuid string) error {
	var existing model.ConversationLabel
	err := r.db.First(&existing, "conversation_id = ? AND label_uuid = ?", conversationId, labelUuid).Error
	if err == nil {
		return nil // 关联已存在
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return wrapDBErrorf(err, "查询标签关联 conv=%s label=%s", conversationId, labelUuid)
	}
	assoc := model.ConversationLabel{
		ConversationId: conversationId,
		LabelUuid:      labelUuid,
	}
	if err := r.db.Create(&assoc).Error; err != nil {
		return wrapDBErrorf(err, "创建标签关联 conv=%s label=%s", conversationId, labelUuid)
	}
	return nil
}

// RemoveConversationLabel 解除会话-标签关联
func (r *labelRepository) RemoveConversationLabel(conversationId, labelUuid string) error {
	err := r.db.Where("conversation_id = ? AND label_uuid = ?", conversationId, labelUuid).
		Delete(&model.ConversationLabel{}).Error
	if err != nil {
		return wrapDBErrorf(err, "删除标签关联 conv=%s label=%s", conversationId, labelUuid)
	}
	return nil
}

// FindLabelsByConversation 查询会话已关联的标签
func (r *labelRepository) FindLabelsByConversation(conversationId string) ([]model.Label, error) {
	var labels []model.Label
	err := r.db.Model(&model.Label{}).
		Joins("JOIN conversation_label cl ON cl.label_uuid = label.uuid AND cl.deleted_at IS NULL").
		Where("cl.conversation_id = ?", conversationId).
		Find(&labels).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询会话标签 conv=%s", conversationId)
	}
	return labels, nil
}
