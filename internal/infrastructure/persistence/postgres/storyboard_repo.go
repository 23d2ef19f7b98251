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

// StoryboardRepository 分镜工作区仓储实现
type StoryboardRepository struct {
	client *Client
}

// NewStoryboardRepository 创建分镜工作区仓储
func NewStoryboardRepository(client *Client) *StoryboardRepository {
	return &StoryboardRepository{client: client}
}

// LoadEntities 加载项目全量工作区快照
func (r *StoryboardRepository) LoadEntities(ctx context.Context, projectID string) (*entity.EntitySets, error) {
	ctx, span := tracer.Start(ctx, "postgres.StoryboardRepository.LoadEntities")
	defer span.End()

	db := getDB(ctx, r.client.db)

	var shots []entity.Shot
	if err := db.Where("project_id = ?", projectID).
		Order("sequence_number ASC").
		Find(&shots).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load shots: %w", err)
	}

	var assets []entity.Asset
	if err := db.Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&assets).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load assets: %w", err)
	}

	sets := &entity.EntitySets{Shots: shots}
	for _, a := range assets {
		switch a.Kind {
		case entity.AssetKindCharacter:
			sets.Characters = append(sets.Characters, a)
		case entity.AssetKindScene:
			sets.Scenes = append(sets.Scenes, a)
		case entity.AssetKindProp:
			sets.Props = append(sets.Props, a)
		}
	}
	return sets, nil
}

// Commit 以整理结果整体替换项目工作区
// 调用方负责事务边界，替换与会话追加在同一事务内提交。
func (r *StoryboardRepository) Commit(ctx context.Context, projectID string, sets *entity.EntitySets) error {
	ctx, span := tracer.Start(ctx, "postgres.StoryboardRepository.Commit")
	defer span.End()

	db := getDB(ctx, r.client.db)

	if err := db.Where("project_id = ?", projectID).Delete(&entity.Shot{}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to clear shots: %w", err)
	}
	if err := db.Where("project_id = ?", projectID).Delete(&entity.Asset{}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to clear assets: %w", err)
	}

	if len(sets.Shots) > 0 {
		shots := make([]entity.Shot, len(sets.Shots))
		copy(shots, sets.Shots)
		for i := range shots {
			shots[i].ProjectID = projectID
		}
		if err := db.Create(&shots).Error; err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to insert shots: %w", err)
		}
	}

	assets := collectAssets(projectID, sets)
	if len(assets) > 0 {
		if err := db.Create(&assets).Error; err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to insert assets: %w", err)
		}
	}
	return nil
}

// collectAssets 合并三类资产并补齐项目 ID 与类型
func collectAssets(projectID string, sets *entity.EntitySets) []entity.Asset {
	out := make([]entity.Asset, 0, len(sets.Characters)+len(sets.Scenes)+len(sets.Props))
	appendKind := func(items []entity.Asset, kind entity.AssetKind) {
		for _, a := range items {
			a.ProjectID = projectID
			a.Kind = kind
			out = append(out, a)
		}
	}
	appendKind(sets.Characters, entity.AssetKindCharacter)
	appendKind(sets.Scenes, entity.AssetKindScene)
	appendKind(sets.Props, entity.AssetKindProp)
	return out
}

// GetShot 获取单个分镜
func (r *StoryboardRepository) GetShot(ctx context.Context, projectID, mirrorID string) (*entity.Shot, error) {
	ctx, span := tracer.Start(ctx, "postgres.StoryboardRepository.GetShot")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var shot entity.Shot
	if err := db.First(&shot, "project_id = ? AND mirror_id = ?", projectID, mirrorID).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeShotNotFound, "shot not found")
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get shot: %w", err)
	}
	return &shot, nil
}

// UpdateShotImage 更新分镜图片路径与状态
func (r *StoryboardRepository) UpdateShotImage(ctx context.Context, projectID, mirrorID string, firstPath, lastPath string, status entity.ImageStatus) error {
	ctx, span := tracer.Start(ctx, "postgres.StoryboardRepository.UpdateShotImage")
	defer span.End()

	db := getDB(ctx, r.client.db)
	updates := map[string]interface{}{"image_status": status}
	if firstPath != "" {
		updates["image_first_path"] = firstPath
	}
	if lastPath != "" {
		updates["image_last_path"] = lastPath
	}
	result := db.Model(&entity.Shot{}).
		Where("project_id = ? AND mirror_id = ?", projectID, mirrorID).
		Updates(updates)
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to update shot image: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.CodeShotNotFound, "shot not found")
	}
	return nil
}

// UpdateAssetImage 更新资产图片路径
func (r *StoryboardRepository) UpdateAssetImage(ctx context.Context, projectID string, kind entity.AssetKind, name, imagePath string) error {
	ctx, span := tracer.Start(ctx, "postgres.StoryboardRepository.UpdateAssetImage")
	defer span.End()

	db := getDB(ctx, r.client.db)
	result := db.Model(&entity.Asset{}).
		Where("project_id = ? AND kind = ? AND name = ?", projectID, kind, name).
		Update("image_path", imagePath)
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to update asset image: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "asset not found")
	}
	return nil
}
