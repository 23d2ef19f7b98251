package handler

import (
	"github.com/gin-gonic/gin"

	"storyboard-ai-api/internal/application/storyboard"
	"storyboard-ai-api/internal/interfaces/http/dto"
	"storyboard-ai-api/pkg/errors"
	"storyboard-ai-api/pkg/logger"
)

// ChatHandler 对话处理器
type ChatHandler struct {
	service *storyboard.ChatService
}

// NewChatHandler 创建对话处理器
func NewChatHandler(service *storyboard.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// Chat 发送对话消息
// @Summary 发送对话消息并按意图更新分镜
// @Tags Chat
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Param body body dto.ChatRequest true "消息内容"
// @Success 200 {object} dto.Response[dto.ChatResponse]
// @Failure 409 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.service.Chat(ctx, storyboard.ChatInput{
		ProjectID:  dto.BindProjectID(c),
		Message:    req.Message,
		ProviderID: req.ProviderID,
		Confirmed:  req.Confirmed,
	})
	if err != nil {
		if errors.IsAppError(err) {
			dto.AppError(c, err)
			return
		}
		logger.Error(ctx, "chat turn failed", err)
		dto.InternalError(c, "chat turn failed")
		return
	}

	dto.Success(c, dto.ToChatResponse(result))
}

// Transcript 获取会话记录
// @Summary 获取项目最近的会话记录
// @Tags Chat
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 200 {object} dto.Response[dto.TranscriptResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/transcript [get]
func (h *ChatHandler) Transcript(c *gin.Context) {
	ctx := c.Request.Context()

	turns, err := h.service.History(ctx, dto.BindProjectID(c))
	if err != nil {
		if errors.IsAppError(err) {
			dto.AppError(c, err)
			return
		}
		logger.Error(ctx, "failed to load transcript", err)
		dto.InternalError(c, "failed to load transcript")
		return
	}

	dto.Success(c, dto.ToTranscriptResponse(turns))
}
