package model

import "gorm.io/gorm"

// Attachment 消息附件
// Message 的子实体，只随消息一起或在消息之后创建
type Attachment struct {
	gorm.Model
	Uuid        string `gorm:"column:uuid;uniqueIndex;type:varchar(32);not null;comment:附件id"`
	MessageUuid string `gorm:"column:message_uuid;index;type:varchar(64);not null;comment:所属消息id"`
	Url         string `gorm:"column:url;type:varchar(512);not null;comment:资源url"`
	FileName    string `gorm:"column:file_name;type:varchar(255);comment:文件名"`
	MimeType    string `gorm:"column:mime_type;type:varchar(100);comment:MIME类型"`
	FileSize    int64  `gorm:"column:file_size;default:0;comment:文件大小(字节)"`
	Width       int    `gorm:"column:width;default:0;comment:宽"`
	Height      int    `gorm:"column:height;default:0;comment:高"`
	Duration    int    `gorm:"column:duration;default:0;comment:时长(毫秒)"`
	Metadata    string `gorm:"column:metadata;type:TEXT;comment:附加元数据"`
}

func (Attachment) TableName() string {
	return "attachment"
}
