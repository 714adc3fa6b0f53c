package mysql

import (
	"errors"

	"zalo_connector/internal/model"

	"gorm.io/gorm"
)

type groupRepository struct {
	db *gorm.DB
}

func newGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

// FindByUuid 按平台群组 ID 查找群组
func (r *groupRepository) FindByUuid(uuid string) (*model.GroupInfo, error) {
	var group model.GroupInfo
	if err := r.db.First(&group, "uuid = ?", uuid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapDBErrorf(err, "查询群组 uuid=%s", uuid)
	}
	return &group, nil
}

// FindAll 查找所有群组
func (r *groupRepository) FindAll() ([]model.GroupInfo, error) {
	var groups []model.GroupInfo
	if err := r.db.Find(&groups).Error; err != nil {
		return nil, wrapDBError(err, "查询群组列表")
	}
	return groups, nil
}

// Upsert 按 uuid 幂等写入群组
func (r *groupRepository) Upsert(group *model.GroupInfo) error {
	var existing model.GroupInfo
	err := r.db.First(&existing, "uuid = ?", group.Uuid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := r.db.Create(group).Error; err != nil {
			return wrapDBErrorf(err, "创建群组 uuid=%s", group.Uuid)
		}
		return nil
	}
	if err != nil {
		return wrapDBErrorf(err, "查询群组 uuid=%s", group.Uuid)
	}

	updates := map[string]any{}
	if group.Name != "" {
		updates["name"] = group.Name
	}
	if group.OwnerId != "" {
		updates["owner_id"] = group.OwnerId
	}
	if group.MemberCnt > 0 {
		updates["member_cnt"] = group.MemberCnt
	}
	if group.InviteLink != "" {
		updates["invite_link"] = group.InviteLink
	}
	if group.Settings != "" {
		updates["settings"] = group.Settings
	}
	if group.CreatedAtExternal.Valid {
		updates["created_at_external"] = group.CreatedAtExternal
	}
	if len(updates) == 0 {
		return nil
	}
	if err := r.db.Model(&existing).Updates(updates).Error; err != nil {
		return wrapDBErrorf(err, "更新群组 uuid=%s", group.Uuid)
	}
	return nil
}
