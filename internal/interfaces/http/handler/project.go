// Package handler 提供 HTTP 请求处理器
package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"storyboard-ai-api/internal/application/project"
	"storyboard-ai-api/internal/config"
	"storyboard-ai-api/internal/domain/repository"
	"storyboard-ai-api/internal/interfaces/http/dto"
	"storyboard-ai-api/pkg/errors"
	"storyboard-ai-api/pkg/logger"
)

// ProjectHandler 项目处理器
type ProjectHandler struct {
	service *project.Service
	upload  *config.UploadConfig
}

// NewProjectHandler 创建项目处理器
func NewProjectHandler(service *project.Service, cfg *config.Config) *ProjectHandler {
	return &ProjectHandler{
		service: service,
		upload:  &cfg.Upload,
	}
}

// ListProjects 获取项目列表
// @Summary 获取项目列表
// @Tags Projects
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页条数" default(20)
// @Success 200 {object} dto.Response[dto.ProjectListResponse]
// @Router /v1/projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	ctx := c.Request.Context()
	pageReq := dto.BindPage(c)

	result, err := h.service.List(ctx, repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to list projects", err)
		dto.InternalError(c, "failed to list projects")
		return
	}

	resp := dto.ToProjectListResponse(result.Items)
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}

// CreateProject 创建项目
// @Summary 创建项目
// @Tags Projects
// @Accept json
// @Produce json
// @Param body body dto.CreateProjectRequest true "项目信息"
// @Success 201 {object} dto.Response[dto.ProjectResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	p, err := h.service.Create(ctx, req.Name, req.Description)
	if err != nil {
		if errors.IsAppError(err) {
			dto.AppError(c, err)
			return
		}
		logger.Error(ctx, "failed to create project", err)
		dto.InternalError(c, "failed to create project")
		return
	}

	dto.Created(c, dto.ToProjectResponse(p))
}

// GetProject 获取项目详情
// @Summary 获取项目详情
// @Tags Projects
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 200 {object} dto.Response[dto.ProjectResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	ctx := c.Request.Context()

	p, err := h.service.Get(ctx, dto.BindProjectID(c))
	if err != nil {
		if errors.IsAppError(err) {
			dto.AppError(c, err)
			return
		}
		logger.Error(ctx, "failed to get project", err)
		dto.InternalError(c, "failed to get project")
		return
	}

	dto.Success(c, dto.ToProjectResponse(p))
}

// UpdateProject 更新项目设置
// @Summary 更新项目名称与风格设定
// @Tags Projects
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Param body body dto.UpdateProjectRequest true "更新内容"
// @Success 200 {object} dto.Response[dto.ProjectResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid} [put]
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	p, err := h.service.UpdateSettings(ctx, dto.BindProjectID(c), req.Name, req.Description, req.StylePrompt, req.QualityPrompt)
	if err != nil {
		if errors.IsAppError(err) {
			dto.AppError(c, err)
			return
		}
		logger.Error(ctx, "failed to update project", err)
		dto.InternalError(c, "failed to update project")
		return
	}

	dto.Success(c, dto.ToProjectResponse(p))
}

// DeleteProject 删除项目
// @Summary 删除项目及其分镜、资产与会话
// @Tags Projects
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid} [delete]
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.service.Delete(ctx, dto.BindProjectID(c)); err != nil {
		if errors.IsAppError(err) {
			dto.AppError(c, err)
			return
		}
		logger.Error(ctx, "failed to delete project", err)
		dto.InternalError(c, "failed to delete project")
		return
	}

	dto.NoContent(c)
}

// ImportDocument 上传剧本文档
// @Summary 上传文档并提取文本作为项目源文本
// @Tags Projects
// @Accept multipart/form-data
// @Produce json
// @Param pid path string true "项目 ID"
// @Param file formData file true "剧本文档 (txt/md/json/docx)"
// @Success 200 {object} dto.Response[dto.ProjectResponse]
// @Failure 415 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/document [post]
func (h *ProjectHandler) ImportDocument(c *gin.Context) {
	ctx := c.Request.Context()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		dto.BadRequest(c, "file is required")
		return
	}
	if fileHeader.Size > h.upload.MaxFileSize {
		dto.BadRequest(c, "file is too large")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		dto.BadRequest(c, "failed to open uploaded file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		logger.Error(ctx, "failed to read uploaded file", err)
		dto.InternalError(c, "failed to read uploaded file")
		return
	}

	p, err := h.service.ImportDocument(ctx, dto.BindProjectID(c), fileHeader.Filename, data)
	if err != nil {
		if errors.IsAppError(err) {
			dto.AppError(c, err)
			return
		}
		logger.Error(ctx, "failed to import document", err)
		dto.InternalError(c, "failed to import document")
		return
	}

	dto.Success(c, dto.ToProjectResponse(p))
}
