// Package project 提供项目管理应用服务
package project

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel"

	"storyboard-ai-api/internal/application/storyboard"
	"storyboard-ai-api/internal/domain/entity"
	"storyboard-ai-api/internal/domain/repository"
	"storyboard-ai-api/pkg/errors"
	"storyboard-ai-api/pkg/logger"
)

var tracer = otel.Tracer("project")

// EntityCache 工作区快照读缓存端口
type EntityCache interface {
	GetOrLoadEntities(ctx context.Context, projectID string, ttl time.Duration, loader func() (interface{}, error)) ([]byte, error)
	InvalidateProject(ctx context.Context, projectID string) error
}

// Service 项目管理服务
type Service struct {
	projects repository.ProjectRepository
	store    repository.StoryboardStore
	txMgr    repository.Transactor
	cache    EntityCache
	cacheTTL time.Duration
}

// NewService 创建项目管理服务
func NewService(projects repository.ProjectRepository, store repository.StoryboardStore, txMgr repository.Transactor, cache EntityCache, cacheTTL time.Duration) *Service {
	return &Service{projects: projects, store: store, txMgr: txMgr, cache: cache, cacheTTL: cacheTTL}
}

// Create 创建项目
func (s *Service) Create(ctx context.Context, name, description string) (*entity.Project, error) {
	ctx, span := tracer.Start(ctx, "project.Service.Create")
	defer span.End()

	if name == "" {
		return nil, errors.ErrValidationFailed.WithDetail("project name is required")
	}

	p := entity.NewProject(name, description)
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get 获取项目
func (s *Service) Get(ctx context.Context, id string) (*entity.Project, error) {
	return s.projects.GetByID(ctx, id)
}

// List 项目列表
func (s *Service) List(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.Project], error) {
	return s.projects.List(ctx, pagination)
}

// UpdateSettings 更新项目名称与风格设定，空字段保持不变
func (s *Service) UpdateSettings(ctx context.Context, id string, name, description, stylePrompt, qualityPrompt *string) (*entity.Project, error) {
	ctx, span := tracer.Start(ctx, "project.Service.UpdateSettings")
	defer span.End()

	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		if *name == "" {
			return nil, errors.ErrValidationFailed.WithDetail("project name cannot be empty")
		}
		p.Name = *name
	}
	if description != nil {
		p.Description = *description
	}
	if stylePrompt != nil {
		p.StylePrompt = *stylePrompt
	}
	if qualityPrompt != nil {
		p.QualityPrompt = *qualityPrompt
	}

	if err := s.projects.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete 删除项目及其分镜、资产与会话
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "project.Service.Delete")
	defer span.End()

	err := s.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.projects.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}

	if err := s.cache.InvalidateProject(ctx, id); err != nil {
		logger.FromContext(ctx).Warn("failed to invalidate project cache", "project_id", id, "error", err)
	}
	return nil
}

// ImportDocument 提取上传文档的文本并存为项目源文本
func (s *Service) ImportDocument(ctx context.Context, id, filename string, data []byte) (*entity.Project, error) {
	ctx, span := tracer.Start(ctx, "project.Service.ImportDocument")
	defer span.End()

	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	text, err := storyboard.ExtractText(filename, data)
	if err != nil {
		return nil, err
	}

	p.SourceText = text
	if err := s.projects.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Entities 返回项目当前工作区快照，经读缓存回源
func (s *Service) Entities(ctx context.Context, id string) (*entity.EntitySets, error) {
	ctx, span := tracer.Start(ctx, "project.Service.Entities")
	defer span.End()

	if _, err := s.projects.GetByID(ctx, id); err != nil {
		return nil, err
	}

	raw, err := s.cache.GetOrLoadEntities(ctx, id, s.cacheTTL, func() (interface{}, error) {
		return s.store.LoadEntities(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	var sets entity.EntitySets
	if err := json.Unmarshal(raw, &sets); err != nil {
		return nil, errors.Wrap(err, errors.CodeCacheError, "failed to decode cached entities")
	}
	return &sets, nil
}

// UpdateShotImage 更新分镜图片路径与状态并使快照缓存失效
func (s *Service) UpdateShotImage(ctx context.Context, projectID, mirrorID, firstPath, lastPath string, status entity.ImageStatus) (*entity.Shot, error) {
	ctx, span := tracer.Start(ctx, "project.Service.UpdateShotImage")
	defer span.End()

	if err := s.store.UpdateShotImage(ctx, projectID, mirrorID, firstPath, lastPath, status); err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateProject(ctx, projectID); err != nil {
		logger.FromContext(ctx).Warn("failed to invalidate project cache", "project_id", projectID, "error", err)
	}
	return s.store.GetShot(ctx, projectID, mirrorID)
}
