package handler

import (
	"github.com/gin-gonic/gin"

	"storyboard-ai-api/internal/application/provider"
	"storyboard-ai-api/internal/domain/entity"
	"storyboard-ai-api/internal/interfaces/http/dto"
	"storyboard-ai-api/pkg/errors"
	"storyboard-ai-api/pkg/logger"
)

// ProviderHandler 服务商处理器
type ProviderHandler struct {
	service *provider.Service
}

// NewProviderHandler 创建服务商处理器
func NewProviderHandler(service *provider.Service) *ProviderHandler {
	return &ProviderHandler{service: service}
}

// ListProviders 获取服务商列表
// @Summary 获取服务商列表，可按类型过滤
// @Tags Providers
// @Produce json
// @Param kind query string false "类型 (text/image/video)"
// @Success 200 {object} dto.Response[dto.ProviderListResponse]
// @Router /v1/providers [get]
func (h *ProviderHandler) ListProviders(c *gin.Context) {
	ctx := c.Request.Context()

	providers, err := h.service.List(ctx, entity.ProviderKind(c.Query("kind")))
	if err != nil {
		if errors.IsAppError(err) {
			dto.AppError(c, err)
			return
		}
		logger.Error(ctx, "failed to list providers", err)
		dto.InternalError(c, "failed to list providers")
		return
	}

	dto.Success(c, dto.ToProviderListResponse(providers))
}

// CreateProvider 创建服务商
// @Summary 创建模型服务商
// @Tags Providers
// @Accept json
// @Produce json
// @Param body body dto.CreateProviderRequest true "服务商信息"
// @Success 201 {object} dto.Response[dto.ProviderResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/providers [post]
func (h *ProviderHandler) CreateProvider(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	p, err := h.service.Create(ctx, req.ToProviderEntity())
	if err != nil {
		if errors.IsAppError(err) {
			dto.AppError(c, err)
			return
		}
		logger.Error(ctx, "failed to create provider", err)
		dto.InternalError(c, "failed to create provider")
		return
	}

	dto.Created(c, dto.ToProviderResponse(p))
}

// GetProvider 获取服务商详情
// @Summary 获取服务商详情
// @Tags Providers
// @Produce json
// @Param id path string true "服务商 ID"
// @Success 200 {object} dto.Response[dto.ProviderResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/providers/{id} [get]
func (h *ProviderHandler) GetProvider(c *gin.Context) {
	ctx := c.Request.Context()

	p, err := h.service.Get(ctx, dto.BindProviderID(c))
	if err != nil {
		if errors.IsAppError(err) {
			dto.AppError(c, err)
			return
		}
		logger.Error(ctx, "failed to get provider", err)
		dto.InternalError(c, "failed to get provider")
		return
	}

	dto.Success(c, dto.ToProviderResponse(p))
}

// UpdateProvider 更新服务商
// @Summary 更新服务商配置
// @Tags Providers
// @Accept json
// @Produce json
// @Param id path string true "服务商 ID"
// @Param body body dto.UpdateProviderRequest true "更新内容"
// @Success 200 {object} dto.Response[dto.ProviderResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/providers/{id} [put]
func (h *ProviderHandler) UpdateProvider(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpdateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	p := &entity.Provider{
		ID:         dto.BindProviderID(c),
		Name:       req.Name,
		Kind:       entity.ProviderKind(req.Kind),
		Endpoint:   req.Endpoint,
		Credential: req.Credential,
		Model:      req.Model,
	}

	updated, err := h.service.Update(ctx, p)
	if err != nil {
		if errors.IsAppError(err) {
			dto.AppError(c, err)
			return
		}
		logger.Error(ctx, "failed to update provider", err)
		dto.InternalError(c, "failed to update provider")
		return
	}

	dto.Success(c, dto.ToProviderResponse(updated))
}

// DeleteProvider 删除服务商
// @Summary 删除服务商
// @Tags Providers
// @Produce json
// @Param id path string true "服务商 ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/providers/{id} [delete]
func (h *ProviderHandler) DeleteProvider(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.service.Delete(ctx, dto.BindProviderID(c)); err != nil {
		if errors.IsAppError(err) {
			dto.AppError(c, err)
			return
		}
		logger.Error(ctx, "failed to delete provider", err)
		dto.InternalError(c, "failed to delete provider")
		return
	}

	dto.NoContent(c)
}

// SetDefaultProvider 设为默认服务商
// @Summary 将服务商设为同类型默认
// @Tags Providers
// @Produce json
// @Param id path string true "服务商 ID"
// @Success 200 {object} dto.Response[dto.ProviderResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/providers/{id}/default [put]
func (h *ProviderHandler) SetDefaultProvider(c *gin.Context) {
	ctx := c.Request.Context()
	id := dto.BindProviderID(c)

	if err := h.service.SetDefault(ctx, id); err != nil {
		if errors.IsAppError(err) {
			dto.AppError(c, err)
			return
		}
		logger.Error(ctx, "failed to set default provider", err)
		dto.InternalError(c, "failed to set default provider")
		return
	}

	p, err := h.service.Get(ctx, id)
	if err != nil {
		if errors.IsAppError(err) {
			dto.AppError(c, err)
			return
		}
		logger.Error(ctx, "failed to get provider", err)
		dto.InternalError(c, "failed to get provider")
		return
	}

	dto.Success(c, dto.ToProviderResponse(p))
}
