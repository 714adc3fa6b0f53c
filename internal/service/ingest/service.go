// Package ingest 实现入站事件的入库管线
// 监听器回调把事件交到这里之后按会话分队处理：
// 推导会话 ID、补齐发送者/群组镜像、幂等入库、维护同步状态，
// 最后把规范化事件推给事件出口。单条事件失败只影响自己，不中断管线
package ingest

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"zalo_connector/internal/dao/mysql"
	"zalo_connector/internal/infrastructure/mq"
	"zalo_connector/internal/model"
	"zalo_connector/internal/platform"
	"zalo_connector/internal/service/supervisor"
)

// 资料拉取失败的重试上限，超过后写占位行
const profileFetchRetries = 2

// CommandEngine 命令处理方（由命令引擎实现）
// 入库完成后才分发命令，保证命令引用的消息已经落库
type CommandEngine interface {
	// IsCommand 判断文本是否为命令
	IsCommand(content string) bool
	// HandleCommand 执行命令，回复由引擎内部完成
	HandleCommand(ctx context.Context, accountId, conversationId, senderId, content string)
	// AutoLabel 对普通消息做关键词自动打标，尽力而为
	AutoLabel(ctx context.Context, conversationId, content string)
}

// Service 入库管线
type Service struct {
	repos    *mysql.Repositories
	registry *supervisor.Registry
	broker   mq.EventBroker
	commands CommandEngine
	dispatch *dispatcher
}

// NewService 创建入库管线并启动处理 Worker
func NewService(repos *mysql.Repositories, registry *supervisor.Registry, broker mq.EventBroker) *Service {
	return &Service{
		repos:    repos,
		registry: registry,
		broker:   broker,
		dispatch: newDispatcher(4),
	}
}

// SetCommandEngine 注入命令引擎
// 命令引擎依赖出站分发器，出站又依赖连接注册表，初始化顺序上只能后置注入
func (s *Service) SetCommandEngine(engine CommandEngine) {
	s.commands = engine
}

// Close 关闭处理队列
func (s *Service) Close() {
	s.dispatch.close()
}

// HandleMessage 消息事件入口（监听器回调线程）
// 只做字段校验和会话路由，重活都在 Worker 里
func (s *Service) HandleMessage(accountId string, ev *platform.MessageEvent) {
	if ev == nil || ev.MsgId == "" || ev.ThreadId == "" {
		zap.L().Warn("丢弃缺字段的消息事件", zap.String("accountId", accountId))
		return
	}
	if ev.Content == "" && ev.Attachment == nil {
		zap.L().Warn("丢弃无内容的消息事件",
			zap.String("accountId", accountId),
			zap.String("msgId", ev.MsgId))
		return
	}

	conversationId := s.conversationIdFor(accountId, ev.ThreadId, ev.ThreadType)
	s.dispatch.submit(conversationId, func() {
		s.processMessage(accountId, conversationId, ev)
	})
}

// HandleReaction 表态事件入口（监听器回调线程）
func (s *Service) HandleReaction(accountId string, ev *platform.ReactionEvent) {
	if ev == nil || ev.MsgId == "" || ev.UserId == "" || ev.Icon == "" {
		zap.L().Warn("丢弃缺字段的表态事件", zap.String("accountId", accountId))
		return
	}

	conversationId := s.conversationIdFor(accountId, ev.ThreadId, ev.ThreadType)
	s.dispatch.submit(conversationId, func() {
		s.processReaction(accountId, conversationId, ev)
	})
}

// conversationIdFor 由线程定位推导会话 ID
// 单聊线程 ID 即对端用户 ID，与本账号 ID 排序拼接，保证双向事件收敛到同一会话
func (s *Service) conversationIdFor(accountId, threadId string, threadType platform.ThreadType) string {
	if threadType == platform.ThreadTypeGroup {
		return GroupConversationId(threadId)
	}
	return DirectConversationId(accountId, threadId)
}

// processMessage 单条消息的入库流程（Worker 线程，同会话串行）
func (s *Service) processMessage(accountId, conversationId string, ev *platform.MessageEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.repos.SyncStatus.MarkSyncing(conversationId); err != nil {
		// 同步状态是旁路信息，写失败不阻塞入库
		zap.L().Warn("标记同步中失败", zap.String("conversationId", conversationId), zap.Error(err))
	}

	if err := s.storeMessage(ctx, accountId, conversationId, ev); err != nil {
		zap.L().Error("消息入库失败",
			zap.String("conversationId", conversationId),
			zap.String("msgId", ev.MsgId),
			zap.Error(err))
		if markErr := s.repos.SyncStatus.MarkFailed(conversationId, err.Error()); markErr != nil {
			zap.L().Warn("记录同步失败状态失败", zap.String("conversationId", conversationId), zap.Error(markErr))
		}
		return
	}

	if err := s.repos.SyncStatus.MarkIdle(conversationId, ev.MsgId); err != nil {
		zap.L().Warn("标记同步完成失败", zap.String("conversationId", conversationId), zap.Error(err))
	}

	// 命令分发与自动打标都在入库之后，失败不影响已入库的数据
	if s.commands != nil && ev.Content != "" {
		if s.commands.IsCommand(ev.Content) {
			s.commands.HandleCommand(ctx, accountId, conversationId, ev.SenderId, ev.Content)
		} else {
			s.commands.AutoLabel(ctx, conversationId, ev.Content)
		}
	}

	s.publish(ctx, "message", accountId, conversationId, ev)
}

// storeMessage 入库事务体：补齐镜像、去重、写消息和附件、推进会话指针
func (s *Service) storeMessage(ctx context.Context, accountId, conversationId string, ev *platform.MessageEvent) error {
	conn, _ := s.registry.Get(accountId)

	if ev.SenderId != "" {
		s.ensureUser(ctx, conn, ev.SenderId)
	}
	if err := s.ensureConversation(ctx, conn, accountId, conversationId, ev.ThreadId, ev.ThreadType); err != nil {
		return err
	}
	if ev.ThreadType == platform.ThreadTypeGroup && ev.SenderId != "" {
		s.recordMembership(ev.ThreadId, ev.SenderId)
	}

	// 两级去重：平台消息 ID 为主键，客户端关联 ID 覆盖本地发送回流的竞态
	exists, err := s.repos.Message.ExistsByUuid(ev.MsgId)
	if err != nil {
		return err
	}
	if exists {
		zap.L().Debug("消息已存在，跳过", zap.String("msgId", ev.MsgId))
		return nil
	}
	if ev.ClientMsgId != "" {
		exists, err = s.repos.Message.ExistsByClientMsgId(ev.ClientMsgId)
		if err != nil {
			return err
		}
		if exists {
			zap.L().Debug("客户端关联id已存在，跳过", zap.String("clientMsgId", ev.ClientMsgId))
			return nil
		}
	}

	msg := &model.Message{
		Uuid:           ev.MsgId,
		ClientMsgId:    ev.ClientMsgId,
		ConversationId: conversationId,
		SenderId:       ev.SenderId,
		Content:        messageContent(ev),
		RawSnapshot:    ev.Raw,
		SentAt:         nullTime(ev.SentAt),
		ReceivedAt:     nullTime(time.Now()),
	}
	if err := s.repos.Message.Create(msg); err != nil {
		return err
	}

	if ev.Attachment != nil {
		att := &model.Attachment{
			Uuid:        strings.ReplaceAll(uuid.NewString(), "-", ""),
			MessageUuid: ev.MsgId,
			Url:         ev.Attachment.Url,
			FileName:    ev.Attachment.FileName,
			MimeType:    ev.Attachment.MimeType,
			FileSize:    ev.Attachment.FileSize,
			Width:       ev.Attachment.Width,
			Height:      ev.Attachment.Height,
			Duration:    ev.Attachment.Duration,
			Metadata:    ev.Attachment.Metadata,
		}
		if err := s.repos.Attachment.Create(att); err != nil {
			// 消息已入库，附件失败只记录
			zap.L().Warn("附件入库失败", zap.String("msgId", ev.MsgId), zap.Error(err))
		}
	}

	return s.repos.Conversation.UpdateLastMessage(conversationId, ev.MsgId, ev.SentAt)
}

// processReaction 单条表态的入库流程
// 表态必须挂在已入库的消息上，消息未知时丢弃
func (s *Service) processReaction(accountId, conversationId string, ev *platform.ReactionEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := s.repos.Message.ExistsByUuid(ev.MsgId)
	if err != nil {
		zap.L().Error("表态入库失败", zap.String("msgId", ev.MsgId), zap.Error(err))
		return
	}
	if !exists {
		zap.L().Warn("表态引用未知消息，丢弃",
			zap.String("msgId", ev.MsgId),
			zap.String("userId", ev.UserId))
		return
	}

	conn, _ := s.registry.Get(accountId)
	s.ensureUser(ctx, conn, ev.UserId)
	if ev.ThreadType == platform.ThreadTypeGroup && ev.ThreadId != "" {
		s.recordMembership(ev.ThreadId, ev.UserId)
	}

	reaction := &model.Reaction{
		MessageUuid: ev.MsgId,
		UserUuid:    ev.UserId,
		Icon:        ev.Icon,
		Type:        ev.Type,
	}
	if err := s.repos.Reaction.Upsert(reaction); err != nil {
		zap.L().Error("表态入库失败", zap.String("msgId", ev.MsgId), zap.Error(err))
		return
	}

	s.publish(ctx, "reaction", accountId, conversationId, ev)
}

// ensureUser 确保用户镜像存在
// 资料拉取失败在有限次重试后降级为占位行，不让镜像缺口阻塞消息入库
func (s *Service) ensureUser(ctx context.Context, conn platform.Conn, userId string) {
	existing, err := s.repos.User.FindByUuid(userId)
	if err != nil {
		zap.L().Warn("查询用户镜像失败", zap.String("userId", userId), zap.Error(err))
	}
	if existing != nil {
		return
	}

	var profile *platform.UserProfile
	if conn != nil {
		for retry := 0; retry <= profileFetchRetries; retry++ {
			profile, err = conn.GetUserInfo(ctx, userId)
			if err == nil {
				break
			}
			zap.L().Warn("拉取用户资料失败",
				zap.String("userId", userId),
				zap.Int("retry", retry),
				zap.Error(err))
		}
	}

	user := &model.UserInfo{Uuid: userId}
	if profile != nil {
		user.Nickname = profile.DisplayName
		user.Alias = profile.Alias
		user.Avatar = profile.AvatarUrl
		user.Birthday = nullTime(profile.Birthday)
		user.IsFriend = profile.IsFriend
		user.LastOnlineAt = nullTime(profile.LastOnline)
		user.RawSnapshot = profile.Raw
	} else {
		// 占位行：只有 ID，后续同步或下次事件时机会性补全
		user.Nickname = userId
	}

	if err := s.repos.User.Upsert(user); err != nil {
		zap.L().Warn("写入用户镜像失败", zap.String("userId", userId), zap.Error(err))
	}
}

// recordMembership 群事件顺带登记当事人的群成员关系
// Upsert 会重新激活已离群的行，写失败只记录
func (s *Service) recordMembership(groupId, userId string) {
	member := &model.GroupMember{
		GroupUuid: groupId,
		UserUuid:  userId,
		IsActive:  true,
		JoinedAt:  time.Now(),
	}
	if err := s.repos.GroupMember.Upsert(member); err != nil {
		zap.L().Warn("写入群成员关系失败",
			zap.String("groupId", groupId),
			zap.String("userId", userId),
			zap.Error(err))
	}
}

// ensureConversation 确保会话行存在
// 群聊顺带补齐群组镜像（尽力而为），单聊补齐对端用户镜像
func (s *Service) ensureConversation(ctx context.Context, conn platform.Conn, accountId, conversationId, threadId string, threadType platform.ThreadType) error {
	conv := &model.Conversation{Uuid: conversationId}

	if threadType == platform.ThreadTypeGroup {
		conv.Type = model.ConversationTypeGroup
		conv.GroupUuid = threadId
		s.ensureGroup(ctx, conn, threadId)
	} else {
		conv.Type = model.ConversationTypeDirect
		conv.ParticipantId = threadId
		if threadId != accountId {
			s.ensureUser(ctx, conn, threadId)
		}
	}

	return s.repos.Conversation.Upsert(conv)
}

// ensureGroup 确保群组镜像存在，拉取失败写占位行
func (s *Service) ensureGroup(ctx context.Context, conn platform.Conn, groupId string) {
	existing, err := s.repos.Group.FindByUuid(groupId)
	if err != nil {
		zap.L().Warn("查询群组镜像失败", zap.String("groupId", groupId), zap.Error(err))
	}
	if existing != nil {
		return
	}

	group := &model.GroupInfo{Uuid: groupId}
	if conn != nil {
		if profiles, err := conn.GetGroupInfo(ctx, groupId); err == nil {
			if profile, ok := profiles[groupId]; ok && profile != nil {
				group.Name = profile.Name
				group.OwnerId = profile.OwnerId
				group.MemberCnt = profile.TotalMembers
				group.InviteLink = profile.InviteLink
				group.Settings = profile.Settings
				group.CreatedAtExternal = nullTime(profile.CreatedAt)
			}
		} else {
			zap.L().Warn("拉取群详情失败", zap.String("groupId", groupId), zap.Error(err))
		}
	}

	if err := s.repos.Group.Upsert(group); err != nil {
		zap.L().Warn("写入群组镜像失败", zap.String("groupId", groupId), zap.Error(err))
	}
}

// publish 把规范化事件推给事件出口，失败只记录
func (s *Service) publish(ctx context.Context, eventType, accountId, conversationId string, payload interface{}) {
	if s.broker == nil {
		return
	}
	event := &mq.Event{
		Type:           eventType,
		AccountId:      accountId,
		ConversationId: conversationId,
		Payload:        payload,
		At:             time.Now(),
	}
	if err := s.broker.Publish(ctx, event); err != nil {
		zap.L().Warn("事件投递失败", zap.String("conversationId", conversationId), zap.Error(err))
	}
}

// messageContent 取消息文本，结构化消息用标题/描述兜底
func messageContent(ev *platform.MessageEvent) string {
	if ev.Content != "" {
		return ev.Content
	}
	if ev.Attachment != nil {
		if ev.Attachment.Title != "" {
			return ev.Attachment.Title
		}
		return ev.Attachment.Description
	}
	return ""
}

// nullTime 零值时间转为 NULL
func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
