// Package command 实现聊天内命令引擎
// 入库管线把以 / 开头的消息交到这里解析执行，
// 执行结果通过 Replier 回复到原会话
package command

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"zalo_connector/internal/service/label"
	"zalo_connector/internal/service/quickmsg"
	"zalo_connector/pkg/errorx"
)

// Replier 命令回复出口（由出站分发器实现）
type Replier interface {
	ReplyWithFallback(ctx context.Context, conversationId, text string) error
}

// Service 命令引擎
type Service struct {
	labels  *label.Service
	quick   *quickmsg.Service
	replier Replier
}

// NewService 创建命令引擎
func NewService(labels *label.Service, quick *quickmsg.Service, replier Replier) *Service {
	return &Service{labels: labels, quick: quick, replier: replier}
}

// IsCommand 判断文本是否为命令
func (s *Service) IsCommand(content string) bool {
	return strings.HasPrefix(strings.TrimSpace(content), "/")
}

// HandleCommand 解析并执行命令
// 命令失败回复错误提示，不向上抛错
func (s *Service) HandleCommand(ctx context.Context, accountId, conversationId, senderId, content string) {
	fields := strings.Fields(strings.TrimSpace(content))
	if len(fields) == 0 {
		return
	}

	zap.L().Info("收到命令",
		zap.String("conversationId", conversationId),
		zap.String("senderId", senderId),
		zap.String("command", fields[0]))

	switch fields[0] {
	case "/label":
		s.handleLabel(ctx, conversationId, fields[1:])
	case "/qm":
		s.handleQuickMessage(ctx, conversationId, fields[1:])
	default:
		s.reply(ctx, conversationId, "未知命令，可用命令: /label add|remove <标签名>, /qm <关键字>")
	}
}

// handleLabel 处理 /label add|remove <标签名>
func (s *Service) handleLabel(ctx context.Context, conversationId string, args []string) {
	if len(args) < 2 {
		s.reply(ctx, conversationId, "用法: /label add|remove <标签名>")
		return
	}
	action := strings.ToLower(args[0])
	// 标签名允许带空格
	name := strings.Join(args[1:], " ")

	switch action {
	case "add":
		l, err := s.labels.Attach(ctx, conversationId, name)
		if err != nil {
			// 命令只关联已有标签，未知标签回提示而不是替用户建标签
			if errorx.GetCode(err) == errorx.CodeNotFound {
				s.reply(ctx, conversationId, fmt.Sprintf("标签 %s 不存在。%s", name, s.labelHint(ctx)))
				return
			}
			zap.L().Warn("命令打标失败", zap.String("conversationId", conversationId), zap.Error(err))
			s.reply(ctx, conversationId, "标签添加失败")
			return
		}
		s.reply(ctx, conversationId, fmt.Sprintf("已添加标签: %s", l.Name))
	case "remove":
		l, err := s.labels.Detach(ctx, conversationId, name)
		if err != nil {
			if errorx.GetCode(err) == errorx.CodeNotFound {
				s.reply(ctx, conversationId, fmt.Sprintf("标签 %s 不存在。%s", name, s.labelHint(ctx)))
				return
			}
			zap.L().Warn("命令移除标签失败", zap.String("conversationId", conversationId), zap.Error(err))
			s.reply(ctx, conversationId, "标签移除失败")
			return
		}
		s.reply(ctx, conversationId, fmt.Sprintf("已移除标签: %s", l.Name))
	default:
		s.reply(ctx, conversationId, "用法: /label add|remove <标签名>")
	}
}

// handleQuickMessage 处理 /qm <关键字>
// 命中时把快捷语内容作为普通消息发到当前会话
func (s *Service) handleQuickMessage(ctx context.Context, conversationId string, args []string) {
	if len(args) == 0 {
		s.reply(ctx, conversationId, "用法: /qm <关键字>。"+s.quickHint(ctx))
		return
	}
	shortcut := args[0]

	qm, err := s.quick.FindByShortcut(ctx, shortcut)
	if err != nil {
		zap.L().Warn("查询快捷语失败", zap.String("shortcut", shortcut), zap.Error(err))
		s.reply(ctx, conversationId, "快捷语查询失败")
		return
	}
	if qm == nil {
		s.reply(ctx, conversationId, fmt.Sprintf("快捷语 %s 不存在。%s", shortcut, s.quickHint(ctx)))
		return
	}
	s.reply(ctx, conversationId, qm.Content)
}

// labelHint 拼接可用标签列表的提示文案
func (s *Service) labelHint(ctx context.Context) string {
	labels, err := s.labels.List(ctx)
	if err != nil || len(labels) == 0 {
		return "当前没有可用标签"
	}
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.Name)
	}
	return "可用标签: " + strings.Join(names, ", ")
}

// quickHint 拼接可用快捷语关键字的提示文案
func (s *Service) quickHint(ctx context.Context) string {
	items, err := s.quick.List(ctx)
	if err != nil || len(items) == 0 {
		return "当前没有可用快捷语"
	}
	shortcuts := make([]string, 0, len(items))
	for _, qm := range items {
		shortcuts = append(shortcuts, qm.Shortcut)
	}
	return "可用关键字: " + strings.Join(shortcuts, ", ")
}

// reply 回复到原会话，失败已在出站层记录
func (s *Service) reply(ctx context.Context, conversationId, text string) {
	if s.replier == nil {
		return
	}
	_ = s.replier.ReplyWithFallback(ctx, conversationId, text)
}
