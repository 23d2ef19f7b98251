// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"storyboard-ai-api/internal/domain/entity"
)

// StoryboardStore 分镜工作区读写接口
// Commit 要求调用方已经开启事务，整个快照替换在同一事务内完成。
type StoryboardStore interface {
	// LoadEntities 加载项目全量工作区快照，分镜按顺序号排列
	LoadEntities(ctx context.Context, projectID string) (*entity.EntitySets, error)

	// Commit 以整理结果整体替换项目工作区
	Commit(ctx context.Context, projectID string, sets *entity.EntitySets) error

	// GetShot 获取单个分镜
	GetShot(ctx context.Context, projectID, mirrorID string) (*entity.Shot, error)

	// UpdateShotImage 更新分镜图片路径与状态
	UpdateShotImage(ctx context.Context, projectID, mirrorID string, firstPath, lastPath string, status entity.ImageStatus) error

	// UpdateAssetImage 更新资产图片路径
	UpdateAssetImage(ctx context.Context, projectID string, kind entity.AssetKind, name, imagePath string) error
}
