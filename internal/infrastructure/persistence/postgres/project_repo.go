// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	stderrors "errors"
	"fmt"

	"gorm.io/gorm"

	"storyboard-ai-api/internal/domain/entity"
	"storyboard-ai-api/internal/domain/repository"
	"storyboard-ai-api/pkg/errors"
)

// ProjectRepository 项目仓储实现
type ProjectRepository struct {
	client *Client
}

// NewProjectRepository 创建项目仓储
func NewProjectRepository(client *Client) *ProjectRepository {
	return &ProjectRepository{client: client}
}

// Create 创建项目
func (r *ProjectRepository) Create(ctx context.Context, project *entity.Project) error {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(project).Error; err != nil {
		span.RecordError(err)
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.New(errors.CodeConflict, "project name already exists")
		}
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取项目
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var project entity.Project
	if err := db.First(&project, "id = ?", id).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrProjectNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &project, nil
}

// GetByName 根据名称获取项目
func (r *ProjectRepository) GetByName(ctx context.Context, name string) (*entity.Project, error) {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.GetByName")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var project entity.Project
	if err := db.First(&project, "name = ?", name).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrProjectNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get project by name: %w", err)
	}
	return &project, nil
}

// Update 更新项目
func (r *ProjectRepository) Update(ctx context.Context, project *entity.Project) error {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	result := db.Model(&entity.Project{}).Where("id = ?", project.ID).Updates(map[string]interface{}{
		"name":           project.Name,
		"description":    project.Description,
		"source_text":    project.SourceText,
		"style_prompt":   project.StylePrompt,
		"quality_prompt": project.QualityPrompt,
	})
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to update project: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrProjectNotFound
	}
	return nil
}

// Delete 删除项目及其下属数据
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Where("project_id = ?", id).Delete(&entity.Shot{}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete project shots: %w", err)
	}
	if err := db.Where("project_id = ?", id).Delete(&entity.Asset{}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete project assets: %w", err)
	}
	if err := db.Where("project_id = ?", id).Delete(&entity.ConversationTurn{}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete project transcript: %w", err)
	}
	result := db.Delete(&entity.Project{}, "id = ?", id)
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to delete project: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrProjectNotFound
	}
	return nil
}

// List 获取项目列表
func (r *ProjectRepository) List(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.Project], error) {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.List")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Project{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}

	var projects []*entity.Project
	if err := query.Order("updated_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&projects).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return repository.NewPagedResult(projects, total, pagination), nil
}
