package handler

import (
	"github.com/gin-gonic/gin"

	"storyboard-ai-api/internal/application/project"
	"storyboard-ai-api/internal/domain/entity"
	"storyboard-ai-api/internal/domain/repository"
	"storyboard-ai-api/internal/interfaces/http/dto"
	"storyboard-ai-api/pkg/errors"
	"storyboard-ai-api/pkg/logger"
)

// StoryboardHandler 分镜处理器
type StoryboardHandler struct {
	projects *project.Service
	store    repository.StoryboardStore
}

// NewStoryboardHandler 创建分镜处理器
func NewStoryboardHandler(projects *project.Service, store repository.StoryboardStore) *StoryboardHandler {
	return &StoryboardHandler{projects: projects, store: store}
}

// GetEntities 获取项目分镜与资产
// @Summary 获取项目当前的分镜表与资产清单
// @Tags Storyboard
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 200 {object} dto.Response[dto.EntitySetsResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/entities [get]
func (h *StoryboardHandler) GetEntities(c *gin.Context) {
	ctx := c.Request.Context()

	sets, err := h.projects.Entities(ctx, dto.BindProjectID(c))
	if err != nil {
		if errors.IsAppError(err) {
			dto.AppError(c, err)
			return
		}
		logger.Error(ctx, "failed to load entities", err)
		dto.InternalError(c, "failed to load entities")
		return
	}

	dto.Success(c, dto.ToEntitySetsResponse(sets))
}

// GetShot 获取单个分镜
// @Summary 按镜号获取单个分镜
// @Tags Storyboard
// @Produce json
// @Param pid path string true "项目 ID"
// @Param mid path string true "镜号"
// @Success 200 {object} dto.Response[dto.ShotResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/shots/{mid} [get]
func (h *StoryboardHandler) GetShot(c *gin.Context) {
	ctx := c.Request.Context()

	shot, err := h.store.GetShot(ctx, dto.BindProjectID(c), dto.BindMirrorID(c))
	if err != nil {
		if errors.IsAppError(err) {
			dto.AppError(c, err)
			return
		}
		logger.Error(ctx, "failed to get shot", err)
		dto.InternalError(c, "failed to get shot")
		return
	}

	dto.Success(c, dto.ToShotResponse(shot))
}

// UpdateShotImage 更新分镜图片
// @Summary 更新分镜的首末帧图片路径与状态
// @Tags Storyboard
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Param mid path string true "镜号"
// @Param body body dto.UpdateShotImageRequest true "图片信息"
// @Success 200 {object} dto.Response[dto.ShotResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/shots/{mid}/image [put]
func (h *StoryboardHandler) UpdateShotImage(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpdateShotImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	projectID := dto.BindProjectID(c)
	mirrorID := dto.BindMirrorID(c)
	status := entity.ImageStatus(req.ImageStatus)

	shot, err := h.projects.UpdateShotImage(ctx, projectID, mirrorID, req.ImageFirstPath, req.ImageLastPath, status)
	if err != nil {
		if errors.IsAppError(err) {
			dto.AppError(c, err)
			return
		}
		logger.Error(ctx, "failed to update shot image", err)
		dto.InternalError(c, "failed to update shot image")
		return
	}

	dto.Success(c, dto.ToShotResponse(shot))
}
