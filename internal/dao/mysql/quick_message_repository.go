package mysql

import (
	"errors"

	"zalo_connector/internal/model"

	"gorm.io/gorm"
)

type quickMessageRepository struct {
	db *gorm.DB
}

func newQuickMessageRepository(db *gorm.DB) QuickMessageRepository {
	return &quickMessageRepository{db: db}
}

func (r *quickMessageRepository) FindByUuid(uuid string) (*model.QuickMessage, error) {
	var qm model.QuickMessage
	if err := r.db.First(&qm, "uuid = ?", uuid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapDBErrorf(err, "查询快捷语 uuid=%s", uuid)
	}
	return &qm, nil
}

// FindByShortcut 按关键字查找（大小写不敏感）
func (r *quickMessageRepository) FindByShortcut(shortcut string) (*model.QuickMessage, error) {
	var qm model.QuickMessage
	if err := r.db.First(&qm, "LOWER(shortcut) = LOWER(?)", shortcut).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapDBErrorf(err, "查询快捷语 shortcut=%s", shortcut)
	}
	return &qm, nil
}

func (r *quickMessageRepository) FindAll() ([]model.QuickMessage, error) {
	var qms []model.QuickMessage
	if err := r.db.Find(&qms).Error; err != nil {
		return nil, wrapDBError(err, "查询快捷语列表")
	}
	return qms, nil
}

func (r *quickMessageRepository) Create(qm *model.QuickMessage) error {
	if err := r.db.Create(qm).Error; err != nil {
		return wrapDBErrorf(err, "创建快捷语 shortcut=%s", qm.Shortcut)
	}
	return nil
}

func (r *quickMessageRepository) Update(qm *model.QuickMessage) error {
	if err := r.db.Save(qm).Error; err != nil {
		return wrapDBErrorf(err, "更新快捷语 uuid=%s", qm.Uuid)
	}
	return nil
}

func (r *quickMessageRepository) Delete(uuid string) error {
	if err := r.db.Where("uuid = ?", uuid).Delete(&model.QuickMessage{}).Error; err != nil {
		return wrapDBErrorf(err, "删除快捷语 uuid=%s", uuid)
	}
	return nil
}
