// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"storyboard-ai-api/internal/domain/entity"
)

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description" binding:"max=5000"`
}

// UpdateProjectRequest 更新项目请求，空字段保持不变
type UpdateProjectRequest struct {
	Name          *string `json:"name,omitempty" binding:"omitempty,max=255"`
	Description   *string `json:"description,omitempty" binding:"omitempty,max=5000"`
	StylePrompt   *string `json:"style_prompt,omitempty"`
	QualityPrompt *string `json:"quality_prompt,omitempty"`
}

// ProjectResponse 项目响应
type ProjectResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	StylePrompt   string    `json:"style_prompt,omitempty"`
	QualityPrompt string    `json:"quality_prompt,omitempty"`
	HasSourceText bool      `json:"has_source_text"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProjectListResponse 项目列表响应
type ProjectListResponse struct {
	Projects []*ProjectResponse `json:"projects"`
}

// ToProjectResponse 实体转响应
func ToProjectResponse(p *entity.Project) *ProjectResponse {
	return &ProjectResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		StylePrompt:   p.StylePrompt,
		QualityPrompt: p.QualityPrompt,
		HasSourceText: p.SourceText != "",
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ToProjectListResponse 实体列表转响应
func ToProjectListResponse(projects []*entity.Project) ProjectListResponse {
	out := make([]*ProjectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, ToProjectResponse(p))
	}
	return ProjectListResponse{Projects: out}
}
