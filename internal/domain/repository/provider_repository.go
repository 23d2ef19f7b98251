// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"storyboard-ai-api/internal/domain/entity"
)

// ProviderRepository 模型服务商仓储接口
type ProviderRepository interface {
	// Create 创建服务商
	Create(ctx context.Context, provider *entity.Provider) error

	// GetByID 根据 ID 获取服务商
	GetByID(ctx context.Context, id string) (*entity.Provider, error)

	// Update 更新服务商
	Update(ctx context.Context, provider *entity.Provider) error

	// Delete 删除服务商
	Delete(ctx context.Context, id string) error

	// List 按类型列出服务商，kind 为空时返回全部
	List(ctx context.Context, kind entity.ProviderKind) ([]*entity.Provider, error)

	// DefaultByKind 返回指定类型的默认服务商
	DefaultByKind(ctx context.Context, kind entity.ProviderKind) (*entity.Provider, error)

	// SetDefault 将指定服务商设为同类型默认，同类型其余服务商取消默认
	SetDefault(ctx context.Context, id string) error
}
