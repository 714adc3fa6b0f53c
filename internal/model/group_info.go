// Package model 定义本地镜像库的实体模型
// 本文件定义平台群组镜像
package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// GroupInfo 平台群组镜像
// 对应数据库 group_info 表
// 由同步引擎批量写入，群事件到达时也会触发 upsert
type GroupInfo struct {
	gorm.Model

	// Uuid 平台侧群组 ID
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:平台群组id"`

	// Name 群名称
	Name string `gorm:"column:name;type:varchar(100);comment:群名称"`

	// OwnerId 群主的平台用户 ID，可能缺失
	OwnerId string `gorm:"column:owner_id;type:char(20);comment:群主id"`

	// MemberCnt 群成员总数（平台上报值，非本地行数）
	MemberCnt int `gorm:"column:member_cnt;default:0;comment:成员总数"`

	// InviteLink 入群链接
	InviteLink string `gorm:"column:invite_link;type:varchar(255);comment:入群链接"`

	// Settings 群设置原始 JSON
	Settings string `gorm:"column:settings;type:TEXT;comment:群设置"`

	// CreatedAtExternal 平台侧建群时间
	CreatedAtExternal sql.NullTime `gorm:"column:created_at_external;comment:平台建群时间"`
}

// TableName 指定表名
func (GroupInfo) TableName() string {
	return "group_info"
}
