package model

import "gorm.io/gorm"

// QuickMessage 快捷语
// 通过 shortcut 关键字查找，/qm 命令直接引用
type QuickMessage struct {
	gorm.Model
	Uuid     string `gorm:"column:uuid;uniqueIndex;type:varchar(32);not null;comment:快捷语id"`
	Shortcut string `gorm:"column:shortcut;uniqueIndex;type:varchar(50);not null;comment:关键字"`
	Content  string `gorm:"column:content;type:TEXT;not null;comment:内容"`
}

func (QuickMessage) TableName() string {
	return "quick_message"
}
