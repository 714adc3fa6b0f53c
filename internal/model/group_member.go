package model

import (
	"database/sql"
	"time"

	"gorm.io/gorm"
)

// GroupMember 群成员关联表
// (group_uuid, user_uuid) 唯一；退群/重新入群在同一行上做状态翻转，不产生新行
type GroupMember struct {
	gorm.Model
	GroupUuid string       `gorm:"column:group_uuid;type:char(20);uniqueIndex:idx_group_user;not null;comment:群组ID"`
	UserUuid  string       `gorm:"column:user_uuid;type:char(20);uniqueIndex:idx_group_user;not null;comment:用户ID"`
	IsActive  bool         `gorm:"column:is_active;default:true;comment:是否在群"`
	JoinedAt  time.Time    `gorm:"column:joined_at;comment:入群时间"`
	LeftAt    sql.NullTime `gorm:"column:left_at;comment:退群时间"`
}

func (GroupMember) TableName() string {
	return "group_member"
}
