package model

import "gorm.io/gorm"

// Label 会话标签
type Label struct {
	gorm.Model
	Uuid        string `gorm:"column:uuid;uniqueIndex;type:varchar(32);not null;comment:标签id"`
	Name        string `gorm:"column:name;type:varchar(50);not null;comment:标签名"`
	ColorHex    string `gorm:"column:color_hex;type:char(7);comment:颜色"`
	Description string `gorm:"column:description;type:varchar(255);comment:描述"`
	IsSystem    bool   `gorm:"column:is_system;default:false;comment:是否内置"`
}

func (Label) TableName() string {
	return "label"
}

// ConversationLabel 会话与标签的多对多关联
// (conversation_id, label_uuid) 唯一
type ConversationLabel struct {
	gorm.Model
	ConversationId string `gorm:"column:conversation_id;type:varchar(64);uniqueIndex:idx_conv_label;not null;comment:会话id"`
	LabelUuid      string `gorm:"column:label_uuid;type:varchar(32);uniqueIndex:idx_conv_label;not null;comment:标签id"`
}

func (ConversationLabel) TableName() string {
	return "conversation_label"
}
