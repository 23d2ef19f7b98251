// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	stderrors "errors"
	"fmt"

	"gorm.io/gorm"

	"storyboard-ai-api/internal/domain/entity"
	"storyboard-ai-api/pkg/errors"
)

// ProviderRepository 模型服务商仓储实现
type ProviderRepository struct {
	client *Client
}

// NewProviderRepository 创建服务商仓储
func NewProviderRepository(client *Client) *ProviderRepository {
	return &ProviderRepository{client: client}
}

// Create 创建服务商
func (r *ProviderRepository) Create(ctx context.Context, provider *entity.Provider) error {
	ctx, span := tracer.Start(ctx, "postgres.ProviderRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(provider).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create provider: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取服务商
func (r *ProviderRepository) GetByID(ctx context.Context, id string) (*entity.Provider, error) {
	ctx, span := tracer.Start(ctx, "postgres.ProviderRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var provider entity.Provider
	if err := db.First(&provider, "id = ?", id).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrProviderNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}
	return &provider, nil
}

// Update 更新服务商
func (r *ProviderRepository) Update(ctx context.Context, provider *entity.Provider) error {
	ctx, span := tracer.Start(ctx, "postgres.ProviderRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	result := db.Model(&entity.Provider{}).Where("id = ?", provider.ID).Updates(map[string]interface{}{
		"name":       provider.Name,
		"kind":       provider.Kind,
		"endpoint":   provider.Endpoint,
		"credential": provider.Credential,
		"model":      provider.Model,
	})
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to update provider: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrProviderNotFound
	}
	return nil
}

// Delete 删除服务商
func (r *ProviderRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.ProviderRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	result := db.Delete(&entity.Provider{}, "id = ?", id)
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to delete provider: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrProviderNotFound
	}
	return nil
}

// List 按类型列出服务商，kind 为空时返回全部
func (r *ProviderRepository) List(ctx context.Context, kind entity.ProviderKind) ([]*entity.Provider, error) {
	ctx, span := tracer.Start(ctx, "postgres.ProviderRepository.List")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Provider{})
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var providers []*entity.Provider
	if err := query.Order("created_at ASC").Find(&providers).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	return providers, nil
}

// DefaultByKind 返回指定类型的默认服务商
func (r *ProviderRepository) DefaultByKind(ctx context.Context, kind entity.ProviderKind) (*entity.Provider, error) {
	ctx, span := tracer.Start(ctx, "postgres.ProviderRepository.DefaultByKind")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var provider entity.Provider
	if err := db.First(&provider, "kind = ? AND is_default = true", kind).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrProviderNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get default provider: %w", err)
	}
	return &provider, nil
}

// SetDefault 将指定服务商设为同类型默认
func (r *ProviderRepository) SetDefault(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.ProviderRepository.SetDefault")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var provider entity.Provider
	if err := db.First(&provider, "id = ?", id).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrProviderNotFound
		}
		span.RecordError(err)
		return fmt.Errorf("failed to get provider: %w", err)
	}

	// 同类型只保留一个默认
	if err := db.Model(&entity.Provider{}).
		Where("kind = ?", provider.Kind).
		Update("is_default", false).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to clear default providers: %w", err)
	}
	if err := db.Model(&entity.Provider{}).
		Where("id = ?", id).
		Update("is_default", true).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to set default provider: %w", err)
	}
	return nil
}
