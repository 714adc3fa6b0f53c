// Package quickmsg 实现快捷语管理
// 快捷语按关键字唯一，/qm 命令和 HTTP 接口共用这层
package quickmsg

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"zalo_connector/internal/dao/mysql"
	"zalo_connector/internal/model"
	"zalo_connector/pkg/errorx"
	"zalo_connector/pkg/util/snowflake"
)

// Service 快捷语服务
type Service struct {
	repos *mysql.Repositories
}

// NewService 创建快捷语服务
func NewService(repos *mysql.Repositories) *Service {
	return &Service{repos: repos}
}

// List 返回全部快捷语
func (s *Service) List(_ context.Context) ([]model.QuickMessage, error) {
	return s.repos.QuickMessage.FindAll()
}

// FindByShortcut 按关键字查找，大小写不敏感
func (s *Service) FindByShortcut(_ context.Context, shortcut string) (*model.QuickMessage, error) {
	return s.repos.QuickMessage.FindByShortcut(strings.TrimSpace(shortcut))
}

// Create 创建快捷语，关键字重复时报错
func (s *Service) Create(_ context.Context, shortcut, content string) (*model.QuickMessage, error) {
	shortcut = strings.TrimSpace(shortcut)
	if shortcut == "" || content == "" {
		return nil, errorx.ErrInvalidParam
	}

	existing, err := s.repos.QuickMessage.FindByShortcut(shortcut)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "关键字 %s 已存在", shortcut)
	}

	qm := &model.QuickMessage{
		Uuid:     snowflake.GenerateIDString(),
		Shortcut: shortcut,
		Content:  content,
	}
	if err := s.repos.QuickMessage.Create(qm); err != nil {
		return nil, err
	}
	zap.L().Info("快捷语已创建", zap.String("shortcut", shortcut))
	return qm, nil
}

// Update 更新快捷语内容
func (s *Service) Update(_ context.Context, uuid, shortcut, content string) (*model.QuickMessage, error) {
	qm, err := s.repos.QuickMessage.FindByUuid(uuid)
	if err != nil {
		return nil, err
	}
	if qm == nil {
		return nil, errorx.New(errorx.CodeNotFound, "快捷语不存在")
	}

	if shortcut = strings.TrimSpace(shortcut); shortcut != "" {
		qm.Shortcut = shortcut
	}
	if content != "" {
		qm.Content = content
	}
	if err := s.repos.QuickMessage.Update(qm); err != nil {
		return nil, err
	}
	return qm, nil
}

// Delete 删除快捷语
func (s *Service) Delete(_ context.Context, uuid string) error {
	qm, err := s.repos.QuickMessage.FindByUuid(uuid)
	if err != nil {
		return err
	}
	if qm == nil {
		return errorx.New(errorx.CodeNotFound, "快捷语不存在")
	}
	return s.repos.QuickMessage.Delete(uuid)
}
