// Package syncer 实现登录后的全量/增量同步引擎
// 平台对批量接口有限流，群详情和成员资料都按固定批量拉取，批间强制停顿；
// 单个群或成员失败只记录并跳过，不中断整轮同步
package syncer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"zalo_connector/internal/dao/mysql"
	"zalo_connector/internal/model"
	"zalo_connector/internal/platform"
	"zalo_connector/internal/service/ingest"
	"zalo_connector/internal/service/supervisor"
	"zalo_connector/pkg/constants"
	"zalo_connector/pkg/errorx"
)

// Options 同步引擎参数
type Options struct {
	GroupBatchSize  int           // 每批拉取的群数量
	MemberBatchSize int           // 每批拉取的成员数量
	BatchDelay      time.Duration // 批间停顿
}

// DefaultOptions 返回默认参数
func DefaultOptions() Options {
	return Options{
		GroupBatchSize:  constants.GROUP_BATCH_SIZE,
		MemberBatchSize: constants.MEMBER_BATCH_SIZE,
		BatchDelay:      constants.BATCH_DELAY,
	}
}

// Service 同步引擎
type Service struct {
	repos    *mysql.Repositories
	registry *supervisor.Registry
	opts     Options

	// sleep 可注入，测试时替换以免真实等待
	sleep func(time.Duration)
}

// NewService 创建同步引擎
func NewService(repos *mysql.Repositories, registry *supervisor.Registry, opts Options) *Service {
	if opts.GroupBatchSize <= 0 {
		opts.GroupBatchSize = constants.GROUP_BATCH_SIZE
	}
	if opts.MemberBatchSize <= 0 {
		opts.MemberBatchSize = constants.MEMBER_BATCH_SIZE
	}
	return &Service{
		repos:    repos,
		registry: registry,
		opts:     opts,
		sleep:    time.Sleep,
	}
}

// SyncAll 对账号做一轮全量群同步
// 登录完成后由登录编排器异步触发
func (s *Service) SyncAll(ctx context.Context, accountId string) error {
	conn, ok := s.registry.Get(accountId)
	if !ok {
		zap.L().Warn("同步跳过：账号无活跃连接", zap.String("accountId", accountId))
		return platform.ErrConnectionClosed
	}

	groupIds, err := conn.GetAllGroups(ctx)
	if err != nil {
		zap.L().Error("拉取群列表失败", zap.String("accountId", accountId), zap.Error(err))
		return err
	}
	zap.L().Info("开始群同步",
		zap.String("accountId", accountId),
		zap.Int("total", len(groupIds)))

	for start := 0; start < len(groupIds); start += s.opts.GroupBatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := start + s.opts.GroupBatchSize
		if end > len(groupIds) {
			end = len(groupIds)
		}
		s.syncGroupBatch(ctx, conn, groupIds[start:end])

		if end < len(groupIds) && s.opts.BatchDelay > 0 {
			s.sleep(s.opts.BatchDelay)
		}
	}

	zap.L().Info("群同步完成", zap.String("accountId", accountId), zap.Int("total", len(groupIds)))
	return nil
}

// SyncGroup 对单个群做一轮详情 + 成员增量同步
func (s *Service) SyncGroup(ctx context.Context, accountId, groupId string) error {
	conn, ok := s.registry.Get(accountId)
	if !ok {
		zap.L().Warn("同步跳过：账号无活跃连接", zap.String("accountId", accountId))
		return platform.ErrConnectionClosed
	}

	profiles, err := conn.GetGroupInfo(ctx, groupId)
	if err != nil {
		return err
	}
	profile, ok := profiles[groupId]
	if !ok || profile == nil {
		return errorx.Newf(errorx.CodeNotFound, "群 %s 不存在", groupId)
	}
	return s.syncGroup(ctx, conn, profile)
}

// syncGroupBatch 同步一批群：群详情入库 + 会话 upsert + 成员增量同步
func (s *Service) syncGroupBatch(ctx context.Context, conn platform.Conn, groupIds []string) {
	profiles, err := conn.GetGroupInfo(ctx, groupIds...)
	if err != nil {
		zap.L().Error("批量拉取群详情失败", zap.Strings("groupIds", groupIds), zap.Error(err))
		return
	}

	for _, groupId := range groupIds {
		profile, ok := profiles[groupId]
		if !ok || profile == nil {
			zap.L().Warn("群详情缺失，跳过", zap.String("groupId", groupId))
			continue
		}
		if err := s.syncGroup(ctx, conn, profile); err != nil {
			zap.L().Error("群同步失败", zap.String("groupId", groupId), zap.Error(err))
		}
	}
}

// syncGroup 同步单个群
func (s *Service) syncGroup(ctx context.Context, conn platform.Conn, profile *platform.GroupProfile) error {
	group := &model.GroupInfo{
		Uuid:       profile.Id,
		Name:       profile.Name,
		OwnerId:    profile.OwnerId,
		MemberCnt:  profile.TotalMembers,
		InviteLink: profile.InviteLink,
		Settings:   profile.Settings,
	}
	if !profile.CreatedAt.IsZero() {
		group.CreatedAtExternal.Time = profile.CreatedAt
		group.CreatedAtExternal.Valid = true
	}
	if err := s.repos.Group.Upsert(group); err != nil {
		return err
	}

	conv := &model.Conversation{
		Uuid:      ingest.GroupConversationId(profile.Id),
		Type:      model.ConversationTypeGroup,
		GroupUuid: profile.Id,
	}
	if err := s.repos.Conversation.Upsert(conv); err != nil {
		return err
	}

	return s.syncMembers(ctx, conn, profile)
}

// syncMembers 增量同步群成员
// 新增成员分批拉取资料后入库，平台列表里的成员整体 upsert 保持在群状态，
// 消失的成员标记离群
func (s *Service) syncMembers(ctx context.Context, conn platform.Conn, profile *platform.GroupProfile) error {
	remote := make(map[string]struct{}, len(profile.MemberVersions))
	var remoteIds []string
	for _, mv := range profile.MemberVersions {
		remote[mv.UserId] = struct{}{}
		remoteIds = append(remoteIds, mv.UserId)
	}

	known, err := s.repos.GroupMember.FindUserUuidsByGroup(profile.Id)
	if err != nil {
		return err
	}
	knownSet := make(map[string]struct{}, len(known))
	for _, id := range known {
		knownSet[id] = struct{}{}
	}

	// 只对本地没有用户镜像的新成员拉资料
	var joined []string
	for _, id := range remoteIds {
		if _, ok := knownSet[id]; !ok {
			joined = append(joined, id)
		}
	}

	existing, err := s.repos.User.ExistingUuids(joined)
	if err != nil {
		return err
	}
	existingSet := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		existingSet[id] = struct{}{}
	}
	var toFetch []string
	for _, id := range joined {
		if _, ok := existingSet[id]; !ok {
			toFetch = append(toFetch, id)
		}
	}

	for start := 0; start < len(toFetch); start += s.opts.MemberBatchSize {
		end := start + s.opts.MemberBatchSize
		if end > len(toFetch) {
			end = len(toFetch)
		}
		for _, userId := range toFetch[start:end] {
			s.syncUser(ctx, conn, userId)
		}
		if end < len(toFetch) && s.opts.BatchDelay > 0 {
			s.sleep(s.opts.BatchDelay)
		}
	}

	// 平台列表里的成员全部 upsert：
	// 已知集合含已离群的行，退群后重新入群靠这里重新激活
	for _, userId := range remoteIds {
		member := &model.GroupMember{
			GroupUuid: profile.Id,
			UserUuid:  userId,
			IsActive:  true,
			JoinedAt:  time.Now(),
		}
		if err := s.repos.GroupMember.Upsert(member); err != nil {
			zap.L().Error("群成员入库失败",
				zap.String("groupId", profile.Id),
				zap.String("userId", userId),
				zap.Error(err))
		}
	}

	// 本地已知但平台列表里消失的成员，视为已离群
	for _, userId := range known {
		if _, ok := remote[userId]; !ok {
			if err := s.repos.GroupMember.MarkLeft(profile.Id, userId); err != nil {
				zap.L().Error("标记离群失败",
					zap.String("groupId", profile.Id),
					zap.String("userId", userId),
					zap.Error(err))
			}
		}
	}
	return nil
}

// syncUser 拉取并入库单个成员的用户镜像，失败降级为占位行
func (s *Service) syncUser(ctx context.Context, conn platform.Conn, userId string) {
	user := &model.UserInfo{Uuid: userId, Nickname: userId}

	profile, err := conn.GetUserInfo(ctx, userId)
	if err != nil {
		zap.L().Warn("拉取成员资料失败，写占位行", zap.String("userId", userId), zap.Error(err))
	} else if profile != nil {
		user.Nickname = profile.DisplayName
		user.Alias = profile.Alias
		user.Avatar = profile.AvatarUrl
		user.IsFriend = profile.IsFriend
		user.RawSnapshot = profile.Raw
		if !profile.Birthday.IsZero() {
			user.Birthday.Time = profile.Birthday
			user.Birthday.Valid = true
		}
		if !profile.LastOnline.IsZero() {
			user.LastOnlineAt.Time = profile.LastOnline
			user.LastOnlineAt.Valid = true
		}
	}

	if err := s.repos.User.Upsert(user); err != nil {
		zap.L().Error("成员镜像入库失败", zap.String("userId", userId), zap.Error(err))
	}
}
