// Package label 实现会话标签管理
// 标签列表读多写少，走 cache-aside：读先查缓存，写后异步失效
package label

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"zalo_connector/internal/dao/mysql"
	myredis "zalo_connector/internal/dao/redis"
	"zalo_connector/internal/model"
	"zalo_connector/pkg/constants"
	"zalo_connector/pkg/errorx"
	"zalo_connector/pkg/util/snowflake"
)

const labelCacheTTL = 10 * time.Minute

// Service 标签服务
type Service struct {
	repos *mysql.Repositories
	cache myredis.AsyncCacheService
}

// NewService 创建标签服务
func NewService(repos *mysql.Repositories, cache myredis.AsyncCacheService) *Service {
	return &Service{repos: repos, cache: cache}
}

// List 返回全部标签，优先读缓存
func (s *Service) List(ctx context.Context) ([]model.Label, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, constants.LABEL_CACHE_PREFIX)
		if err != nil {
			zap.L().Warn("读标签缓存失败", zap.Error(err))
		} else if cached != "" {
			var labels []model.Label
			if err := json.Unmarshal([]byte(cached), &labels); err == nil {
				return labels, nil
			}
			zap.L().Warn("标签缓存内容损坏，回源", zap.Error(err))
		}
	}

	labels, err := s.repos.Label.FindAll()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(labels); err == nil {
			s.cache.SubmitTask(func() {
				cctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				if err := s.cache.Set(cctx, constants.LABEL_CACHE_PREFIX, string(data), labelCacheTTL); err != nil {
					zap.L().Warn("写标签缓存失败", zap.Error(err))
				}
			})
		}
	}
	return labels, nil
}

// FindByName 按名称查找标签，大小写不敏感
func (s *Service) FindByName(_ context.Context, name string) (*model.Label, error) {
	return s.repos.Label.FindByNameFold(name)
}

// Create 创建标签
// 名称大小写不敏感唯一，重名时返回已存在的标签
func (s *Service) Create(ctx context.Context, name, colorHex, description string) (*model.Label, error) {
	if name == "" {
		return nil, errorx.ErrInvalidParam
	}

	existing, err := s.repos.Label.FindByNameFold(name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	l := &model.Label{
		Uuid:        snowflake.GenerateIDString(),
		Name:        name,
		ColorHex:    colorHex,
		Description: description,
	}
	if err := s.repos.Label.Create(l); err != nil {
		return nil, err
	}
	s.invalidate()
	zap.L().Info("标签已创建", zap.String("uuid", l.Uuid), zap.String("name", name))
	return l, nil
}

// Update 更新标签
func (s *Service) Update(ctx context.Context, uuid, name, colorHex, description string) (*model.Label, error) {
	l, err := s.repos.Label.FindByUuid(uuid)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, errorx.New(errorx.CodeNotFound, "标签不存在")
	}

	if name != "" {
		l.Name = name
	}
	if colorHex != "" {
		l.ColorHex = colorHex
	}
	if description != "" {
		l.Description = description
	}
	if err := s.repos.Label.Update(l); err != nil {
		return nil, err
	}
	s.invalidate()
	return l, nil
}

// Delete 删除标签
// 内置标签不可删除
func (s *Service) Delete(ctx context.Context, uuid string) error {
	l, err := s.repos.Label.FindByUuid(uuid)
	if err != nil {
		return err
	}
	if l == nil {
		return errorx.New(errorx.CodeNotFound, "标签不存在")
	}
	if l.IsSystem {
		return errorx.New(errorx.CodeInvalidParam, "内置标签不可删除")
	}

	if err := s.repos.Label.Delete(uuid); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// Attach 给会话打标签
// 只关联已存在的标签，不隐式创建；名称大小写不敏感，重复关联幂等
func (s *Service) Attach(ctx context.Context, conversationId, name string) (*model.Label, error) {
	l, err := s.repos.Label.FindByNameFold(name)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, errorx.New(errorx.CodeNotFound, "标签不存在")
	}
	if err := s.repos.Label.AddConversationLabel(conversationId, l.Uuid); err != nil {
		return nil, err
	}
	return l, nil
}

// Detach 解除会话标签
// 标签不存在视为错误，关联不存在时解除是 no-op
func (s *Service) Detach(ctx context.Context, conversationId, name string) (*model.Label, error) {
	l, err := s.repos.Label.FindByNameFold(name)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, errorx.New(errorx.CodeNotFound, "标签不存在")
	}
	if err := s.repos.Label.RemoveConversationLabel(conversationId, l.Uuid); err != nil {
		return nil, err
	}
	return l, nil
}

// LabelsOf 查询会话已关联的标签
func (s *Service) LabelsOf(_ context.Context, conversationId string) ([]model.Label, error) {
	return s.repos.Label.FindLabelsByConversation(conversationId)
}

// invalidate 异步失效标签列表缓存
func (s *Service) invalidate() {
	if s.cache == nil {
		return
	}
	s.cache.SubmitTask(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.cache.Delete(ctx, constants.LABEL_CACHE_PREFIX); err != nil {
			zap.L().Warn("失效标签缓存失败", zap.Error(err))
		}
	})
}
