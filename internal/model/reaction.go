package model

import "gorm.io/gorm"

// Reaction 消息表态
// (message_uuid, user_uuid) 唯一，后到的表态覆盖 icon/type（last-write-wins）
type Reaction struct {
	gorm.Model
	MessageUuid string `gorm:"column:message_uuid;type:varchar(64);uniqueIndex:idx_msg_user;not null;comment:消息id"`
	UserUuid    string `gorm:"column:user_uuid;type:char(20);uniqueIndex:idx_msg_user;not null;comment:用户id"`
	Icon        string `gorm:"column:icon;type:varchar(16);not null;comment:表态图标"`
	Type        int    `gorm:"column:type;default:0;comment:表态类型"`
}

func (Reaction) TableName() string {
	return "reaction"
}
