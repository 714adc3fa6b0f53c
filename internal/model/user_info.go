// Package model 定义本地镜像库的实体模型
// 本文件定义平台用户镜像，首次被引用（发送者/接收者/群成员）时惰性创建
package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// UserInfo 平台用户镜像
// 对应数据库 user_info 表
// 本连接器只做机会性更新，从不删除用户行
type UserInfo struct {
	gorm.Model

	// Uuid 平台侧用户 ID（纯数字字符串，长度 8-20）
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:平台用户id"`

	// Nickname 显示名称
	Nickname string `gorm:"column:nickname;type:varchar(100);comment:显示名称"`

	// Alias 备注名（本账号对该用户设置的别名）
	Alias string `gorm:"column:alias;type:varchar(100);comment:备注名"`

	// Avatar 头像 URL
	Avatar string `gorm:"column:avatar;type:varchar(255);comment:头像"`

	// Birthday 生日，可为空
	Birthday sql.NullTime `gorm:"column:birthday;comment:生日"`

	// IsFriend 是否为好友
	IsFriend bool `gorm:"column:is_friend;default:false;comment:是否好友"`

	// LastOnlineAt 最近在线时间，可为空
	LastOnlineAt sql.NullTime `gorm:"column:last_online_at;comment:最近在线时间"`

	// RawSnapshot 平台返回的原始资料快照（JSON）
	// 保留原始数据便于排查字段映射问题
	RawSnapshot string `gorm:"column:raw_snapshot;type:TEXT;comment:原始资料快照"`
}

// TableName 指定表名
func (UserInfo) TableName() string {
	return "user_info"
}
