package mysql

import (
	"errors"
	"time"

	"zalo_connector/internal/model"

	"gorm.io/gorm"
)

type groupMemberRepository struct {
	db *gorm.DB
}

func newGroupMemberRepository(db *gorm.DB) GroupMemberRepository {
	return &groupMemberRepository{db: db}
}

// Upsert 按 (群, 用户) 幂等写入
// 行已存在且已离群时重新激活并清空 left_at，模拟"退群/重新入群"的状态翻转
func (r *groupMemberRepository) Upsert(member *model.GroupMember) error {
	var existing model.GroupMember
	err := r.db.First(&existing, "group_uuid = ? AND user_uuid = ?", member.GroupUuid, member.UserUuid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if member.JoinedAt.IsZero() {
			member.JoinedAt = time.Now()
		}
		member.IsActive = true
		if err := r.db.Create(member).Error; err != nil {
			return wrapDBErrorf(err, "创建群成员 group=%s user=%s", member.GroupUuid, member.UserUuid)
		}
		return nil
	}
	if err != nil {
		return wrapDBErrorf(err, "查询群成员 group=%s user=%s", member.GroupUuid, member.UserUuid)
	}

	if !existing.IsActive {
		updates := map[string]any{
			"is_active": true,
			"joined_at": time.Now(),
			"left_at":   nil,
		}
		if err := r.db.Model(&existing).Updates(updates).Error; err != nil {
			return wrapDBErrorf(err, "重新激活群成员 group=%s user=%s", member.GroupUuid, member.UserUuid)
		}
	}
	return nil
}

// MarkLeft 标记成员离群
func (r *groupMemberRepository) MarkLeft(groupUuid, userUuid string) error {
	updates := map[string]any{
		"is_active": false,
		"left_at":   time.Now(),
	}
	err := r.db.Model(&model.GroupMember{}).
		Where("group_uuid = ? AND user_uuid = ?", groupUuid, userUuid).
		Updates(updates).Error
	if err != nil {
		return wrapDBErrorf(err, "标记成员离群 group=%s user=%s", groupUuid, userUuid)
	}
	return nil
}

// FindUserUuidsByGroup 返回群内已知成员的用户 ID（含已离群的历史成员）
func (r *groupMemberRepository) FindUserUuidsByGroup(groupUuid string) ([]string, error) {
	var uuids []string
	err := r.db.Model(&model.GroupMember{}).
		Where("group_uuid = ?", groupUuid).
		Pluck("user_uuid", &uuids).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询群成员列表 group=%s", groupUuid)
	}
	return uuids, nil
}
