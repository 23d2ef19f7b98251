// Package provider 提供模型服务商管理应用服务
package provider

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"

	"storyboard-ai-api/internal/domain/entity"
	"storyboard-ai-api/internal/domain/repository"
	"storyboard-ai-api/pkg/errors"
)

var tracer = otel.Tracer("provider")

// Service 模型服务商管理服务
type Service struct {
	providers repository.ProviderRepository
	txMgr     repository.Transactor
}

// NewService 创建服务商管理服务
func NewService(providers repository.ProviderRepository, txMgr repository.Transactor) *Service {
	return &Service{providers: providers, txMgr: txMgr}
}

// Create 创建服务商，首个同类型服务商自动成为默认
func (s *Service) Create(ctx context.Context, p *entity.Provider) (*entity.Provider, error) {
	ctx, span := tracer.Start(ctx, "provider.Service.Create")
	defer span.End()

	if err := validate(p); err != nil {
		return nil, err
	}

	existing, err := s.providers.List(ctx, p.Kind)
	if err != nil {
		return nil, err
	}
	p.IsDefault = len(existing) == 0

	if err := s.providers.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get 获取服务商
func (s *Service) Get(ctx context.Context, id string) (*entity.Provider, error) {
	return s.providers.GetByID(ctx, id)
}

// List 列出服务商
func (s *Service) List(ctx context.Context, kind entity.ProviderKind) ([]*entity.Provider, error) {
	return s.providers.List(ctx, kind)
}

// Update 更新服务商
func (s *Service) Update(ctx context.Context, p *entity.Provider) (*entity.Provider, error) {
	ctx, span := tracer.Start(ctx, "provider.Service.Update")
	defer span.End()

	if err := validate(p); err != nil {
		return nil, err
	}
	// 凭证省略时保留已存储的值
	if p.Credential == "" {
		existing, err := s.providers.GetByID(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.Credential = existing.Credential
	}
	if err := s.providers.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.providers.GetByID(ctx, p.ID)
}

// Delete 删除服务商
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.providers.Delete(ctx, id)
}

// SetDefault 设为同类型默认，清除与设置在同一事务内完成
// 默认标记按类型独立，设置文本默认不影响图片和视频的默认选择。
func (s *Service) SetDefault(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "provider.Service.SetDefault")
	defer span.End()

	return s.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.providers.SetDefault(txCtx, id)
	})
}

// validate 校验必填字段
func validate(p *entity.Provider) error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return errors.ErrValidationFailed.WithDetail("provider name is required")
	case p.Kind != entity.ProviderKindText && p.Kind != entity.ProviderKindImage && p.Kind != entity.ProviderKindVideo:
		return errors.ErrValidationFailed.WithDetail("provider kind must be text, image or video")
	case strings.TrimSpace(p.Endpoint) == "":
		return errors.ErrValidationFailed.WithDetail("provider endpoint is required")
	case strings.TrimSpace(p.Model) == "":
		return errors.ErrValidationFailed.WithDetail("provider model is required")
	}
	return nil
}
