package mysql

import (
	"zalo_connector/internal/model"

	"gorm.io/gorm"
)

type attachmentRepository struct {
	db *gorm.DB
}

func newAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

// Create 写入附件
func (r *attachmentRepository) Create(att *model.Attachment) error {
	if err := r.db.Create(att).Error; err != nil {
		return wrapDBErrorf(err, "创建附件 message=%s", att.MessageUuid)
	}
	return nil
}
