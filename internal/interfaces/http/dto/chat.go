// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"storyboard-ai-api/internal/application/storyboard"
	"storyboard-ai-api/internal/domain/entity"
)

// ChatRequest 对话请求
type ChatRequest struct {
	Message    string `json:"message" binding:"required"`
	ProviderID string `json:"provider_id,omitempty"`
	// Confirmed 整体重做确认答复，首次提交时省略
	Confirmed *bool `json:"confirmed,omitempty"`
}

// ChatResponse 对话响应
type ChatResponse struct {
	Outcome        string              `json:"outcome"`
	Intent         string              `json:"intent"`
	AssistantReply string              `json:"assistant_reply,omitempty"`
	Entities       *EntitySetsResponse `json:"entities,omitempty"`
}

// TurnResponse 会话消息响应
type TurnResponse struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TranscriptResponse 会话记录响应
type TranscriptResponse struct {
	Turns []*TurnResponse `json:"turns"`
}

// ToChatResponse 服务结果转响应
func ToChatResponse(result *storyboard.ChatResult) *ChatResponse {
	resp := &ChatResponse{
		Outcome:        string(result.Outcome),
		Intent:         string(result.Intent),
		AssistantReply: result.AssistantReply,
	}
	if result.Entities != nil {
		resp.Entities = ToEntitySetsResponse(result.Entities)
	}
	return resp
}

// ToTranscriptResponse 会话记录转响应
func ToTranscriptResponse(turns []*entity.ConversationTurn) TranscriptResponse {
	out := make([]*TurnResponse, 0, len(turns))
	for _, t := range turns {
		out = append(out, &TurnResponse{
			ID:        t.ID,
			Role:      string(t.Role),
			Content:   t.Content,
			CreatedAt: t.CreatedAt,
		})
	}
	return TranscriptResponse{Turns: out}
}
