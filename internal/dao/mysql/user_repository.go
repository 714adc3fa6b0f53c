package mysql

import (
	"errors"

	"zalo_connector/internal/model"

	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func newUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// FindByUuid 按平台用户 ID 查找用户
func (r *userRepository) FindByUuid(uuid string) (*model.UserInfo, error) {
	var user model.UserInfo
	if err := r.db.First(&user, "uuid = ?", uuid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapDBErrorf(err, "查询用户 uuid=%s", uuid)
	}
	return &user, nil
}

// ExistingUuids 返回入参中已有本地行的用户 ID 子集
// 成员增量同步据此跳过已知成员
func (r *userRepository) ExistingUuids(uuids []string) ([]string, error) {
	if len(uuids) == 0 {
		return nil, nil
	}
	var found []string
	if err := r.db.Model(&model.UserInfo{}).Where("uuid IN ?", uuids).Pluck("uuid", &found).Error; err != nil {
		return nil, wrapDBError(err, "批量查询用户")
	}
	return found, nil
}

// Upsert 按 uuid 幂等写入
// 已存在时只机会性更新资料字段，不触碰 is_friend 以外的本地状态
func (r *userRepository) Upsert(user *model.UserInfo) error {
	var existing model.UserInfo
	err := r.db.First(&existing, "uuid = ?", user.Uuid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := r.db.Create(user).Error; err != nil {
			return wrapDBErrorf(err, "创建用户 uuid=%s", user.Uuid)
		}
		return nil
	}
	if err != nil {
		return wrapDBErrorf(err, "查询用户 uuid=%s", user.Uuid)
	}

	updates := map[string]any{}
	if user.Nickname != "" {
		updates["nickname"] = user.Nickname
	}
	if user.Alias != "" {
		updates["alias"] = user.Alias
	}
	if user.Avatar != "" {
		updates["avatar"] = user.Avatar
	}
	if user.Birthday.Valid {
		updates["birthday"] = user.Birthday
	}
	if user.LastOnlineAt.Valid {
		updates["last_online_at"] = user.LastOnlineAt
	}
	if user.RawSnapshot != "" {
		updates["raw_snapshot"] = user.RawSnapshot
	}
	if user.IsFriend {
		updates["is_friend"] = true
	}
	if len(updates) == 0 {
		return nil
	}
	if err := r.db.Model(&existing).Updates(updates).Error; err != nil {
		return wrapDBErrorf(err, "更新用户 uuid=%s", user.Uuid)
	}
	return nil
}
