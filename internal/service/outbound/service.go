// Package outbound 实现出站消息分发
// 发送目标用本地会话 ID 表达，这里负责解析成平台线程定位；
// 单聊发送遇到接收方无效时，用会话 ID 中的另一方做一次备用重试
package outbound

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"zalo_connector/internal/dao/mysql"
	"zalo_connector/internal/model"
	"zalo_connector/internal/platform"
	"zalo_connector/internal/service/supervisor"
	"zalo_connector/pkg/errorx"
)

// Service 出站分发器
type Service struct {
	repos    *mysql.Repositories
	registry *supervisor.Registry
}

// NewService 创建出站分发器
func NewService(repos *mysql.Repositories, registry *supervisor.Registry) *Service {
	return &Service{repos: repos, registry: registry}
}

// target 解析后的发送目标
type target struct {
	threadId   string
	threadType platform.ThreadType
	// alternate 单聊的备用接收方（会话 ID 中的另一方），群聊为空
	alternate string
}

// resolveTarget 把会话 ID 解析为平台线程定位
func (s *Service) resolveTarget(conversationId string) (*target, error) {
	conv, err := s.repos.Conversation.FindByUuid(conversationId)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, errorx.Newf(errorx.CodeNotFound, "会话 %s 不存在", conversationId)
	}

	if conv.Type == model.ConversationTypeGroup {
		return &target{threadId: conv.GroupUuid, threadType: platform.ThreadTypeGroup}, nil
	}

	t := &target{threadId: conv.ParticipantId, threadType: platform.ThreadTypeUser}
	// 会话 ID 形如 direct_<a>_<b>，另一方即备用接收方
	if parts := strings.SplitN(conversationId, "_", 3); len(parts) == 3 {
		if parts[1] != conv.ParticipantId {
			t.alternate = parts[1]
		} else if parts[2] != conv.ParticipantId {
			t.alternate = parts[2]
		}
	}
	return t, nil
}

// conn 取账号连接，accountId 为空时取任意活跃连接
func (s *Service) conn(accountId string) (platform.Conn, error) {
	if accountId != "" {
		if c, ok := s.registry.Get(accountId); ok {
			return c, nil
		}
		return nil, errorx.ErrNotLoggedIn
	}
	if c, ok := s.registry.First(); ok {
		return c, nil
	}
	return nil, errorx.ErrNotLoggedIn
}

// SendText 向会话发送文本消息
func (s *Service) SendText(ctx context.Context, accountId, conversationId, text string) (*model.Message, error) {
	if text == "" {
		return nil, errorx.ErrInvalidParam
	}
	return s.Send(ctx, accountId, conversationId, &platform.MessagePayload{Text: text})
}

// SendAttachment 向会话发送附件消息
func (s *Service) SendAttachment(ctx context.Context, accountId, conversationId string, att *platform.AttachmentInfo, caption string) (*model.Message, error) {
	if att == nil {
		return nil, errorx.ErrInvalidParam
	}
	return s.Send(ctx, accountId, conversationId, &platform.MessagePayload{Text: caption, Attachment: att})
}

// Send 发送消息并本地落库
// ClientMsgId 在发送前生成，回流事件据此去重；
// 接收方无效时对单聊做一次备用接收方重试，两次都失败向上返回
func (s *Service) Send(ctx context.Context, accountId, conversationId string, payload *platform.MessagePayload) (*model.Message, error) {
	conn, err := s.conn(accountId)
	if err != nil {
		return nil, err
	}
	t, err := s.resolveTarget(conversationId)
	if err != nil {
		return nil, err
	}

	if payload.ClientMsgId == "" {
		payload.ClientMsgId = strings.ReplaceAll(uuid.NewString(), "-", "")
	}

	result, err := conn.SendMessage(ctx, payload, t.threadId, t.threadType)
	if err != nil && errors.Is(err, platform.ErrRecipientInvalid) && t.alternate != "" {
		zap.L().Warn("接收方无效，改用备用接收方重试",
			zap.String("conversationId", conversationId),
			zap.String("threadId", t.threadId),
			zap.String("alternate", t.alternate))
		result, err = conn.SendMessage(ctx, payload, t.alternate, t.threadType)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeSendFailed, "消息发送失败")
	}

	msg := &model.Message{
		Uuid:           result.MsgId,
		ClientMsgId:    payload.ClientMsgId,
		ConversationId: conversationId,
		SenderId:       conn.OwnId(),
		Content:        payload.Text,
		SentAt:         sql.NullTime{Time: time.Now(), Valid: true},
		ReceivedAt:     sql.NullTime{Time: time.Now(), Valid: true},
	}
	if err := s.repos.Message.Create(msg); err != nil {
		// 平台侧已发出,落库失败只记录,回流事件还有机会补上
		zap.L().Warn("出站消息落库失败", zap.String("msgId", result.MsgId), zap.Error(err))
	} else if err := s.repos.Conversation.UpdateLastMessage(conversationId, result.MsgId, msg.SentAt.Time); err != nil {
		zap.L().Warn("更新会话指针失败", zap.String("conversationId", conversationId), zap.Error(err))
	}
	return msg, nil
}

// ReplyWithFallback 命令引擎的回复出口
// 失败只记录不上抛，命令回复不影响命令本身的执行结果
func (s *Service) ReplyWithFallback(ctx context.Context, conversationId, text string) error {
	_, err := s.SendText(ctx, "", conversationId, text)
	if err != nil {
		zap.L().Warn("命令回复发送失败", zap.String("conversationId", conversationId), zap.Error(err))
	}
	return err
}

// Undo 撤回已发送的消息并更新本地标记
func (s *Service) Undo(ctx context.Context, accountId, messageUuid string) error {
	conn, dest, err := s.locate(accountId, messageUuid)
	if err != nil {
		return err
	}
	if err := conn.Undo(ctx, *dest); err != nil {
		return errorx.Wrap(err, errorx.CodePlatformError, "消息撤回失败")
	}
	if err := s.repos.Message.MarkUndone(messageUuid); err != nil {
		zap.L().Warn("标记撤回失败", zap.String("msgId", messageUuid), zap.Error(err))
	}
	return nil
}

// Delete 删除消息，onlyMe 为 true 时仅本端删除
func (s *Service) Delete(ctx context.Context, accountId, messageUuid string, onlyMe bool) error {
	conn, dest, err := s.locate(accountId, messageUuid)
	if err != nil {
		return err
	}
	if err := conn.DeleteMessage(ctx, *dest, onlyMe); err != nil {
		return errorx.Wrap(err, errorx.CodePlatformError, "消息删除失败")
	}
	return nil
}

// Forward 把已入库的消息转发到多个会话
// 平台转发接口按线程类型分组调用
func (s *Service) Forward(ctx context.Context, accountId, messageUuid string, conversationIds []string) error {
	if len(conversationIds) == 0 {
		return errorx.ErrInvalidParam
	}
	conn, err := s.conn(accountId)
	if err != nil {
		return err
	}
	msg, err := s.repos.Message.FindByUuid(messageUuid)
	if err != nil {
		return err
	}
	if msg == nil {
		return errorx.Newf(errorx.CodeNotFound, "消息 %s 不存在", messageUuid)
	}

	byType := map[platform.ThreadType][]string{}
	for _, convId := range conversationIds {
		t, err := s.resolveTarget(convId)
		if err != nil {
			return err
		}
		byType[t.threadType] = append(byType[t.threadType], t.threadId)
	}

	payload := &platform.MessagePayload{Text: msg.Content}
	for threadType, threadIds := range byType {
		if err := conn.ForwardMessage(ctx, payload, threadIds, threadType); err != nil {
			return errorx.Wrap(err, errorx.CodePlatformError, "消息转发失败")
		}
	}
	return nil
}

// locate 定位消息所属的连接和平台线程
func (s *Service) locate(accountId, messageUuid string) (platform.Conn, *platform.MessageDest, error) {
	conn, err := s.conn(accountId)
	if err != nil {
		return nil, nil, err
	}
	msg, err := s.repos.Message.FindByUuid(messageUuid)
	if err != nil {
		return nil, nil, err
	}
	if msg == nil {
		return nil, nil, errorx.Newf(errorx.CodeNotFound, "消息 %s 不存在", messageUuid)
	}
	t, err := s.resolveTarget(msg.ConversationId)
	if err != nil {
		return nil, nil, err
	}
	return conn, &platform.MessageDest{
		MsgId:      messageUuid,
		ThreadId:   t.threadId,
		ThreadType: t.threadType,
	}, nil
}
