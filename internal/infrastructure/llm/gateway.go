// Package llm 提供对话模型调用网关
package llm

import (
	"context"
	"time"

	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"storyboard-ai-api/internal/config"
	"storyboard-ai-api/internal/domain/entity"
	"storyboard-ai-api/pkg/errors"
	"storyboard-ai-api/pkg/metrics"
)

var tracer = otel.Tracer("llm")

// Gateway 对话模型网关，按服务商配置发起一次完整的生成调用
type Gateway struct {
	factory *EinoFactory
	config  *config.LLMConfig
}

// NewGateway 创建对话模型网关
func NewGateway(factory *EinoFactory, cfg *config.Config) *Gateway {
	return &Gateway{
		factory: factory,
		config:  &cfg.LLM,
	}
}

// Send 以系统提示词 + 截断历史 + 当前消息发起一次生成调用，返回完整回复文本
func (g *Gateway) Send(ctx context.Context, provider *entity.Provider, systemPrompt string, history []*entity.ConversationTurn, userMessage string) (string, error) {
	ctx, span := tracer.Start(ctx, "llm.Gateway.Send")
	span.SetAttributes(
		attribute.String("llm.provider", provider.Name),
		attribute.String("llm.model", provider.Model),
	)
	defer span.End()

	chatModel, err := g.factory.Get(ctx, provider)
	if err != nil {
		span.RecordError(err)
		return "", errors.Wrap(err, errors.CodeProviderError, "failed to init chat model")
	}

	messages := make([]*schema.Message, 0, len(history)+2)
	if systemPrompt != "" {
		messages = append(messages, schema.SystemMessage(systemPrompt))
	}

	// 只携带最近 HistoryLimit 条历史
	hist := history
	if limit := g.config.HistoryLimit; limit > 0 && len(hist) > limit {
		hist = hist[len(hist)-limit:]
	}
	for _, turn := range hist {
		switch turn.Role {
		case entity.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(turn.Content, nil))
		default:
			messages = append(messages, schema.UserMessage(turn.Content))
		}
	}
	messages = append(messages, schema.UserMessage(userMessage))

	start := time.Now()
	resp, err := chatModel.Generate(ctx, messages)
	duration := time.Since(start).Seconds()
	metrics.LLMCallDuration.WithLabelValues(provider.Name, provider.Model).Observe(duration)
	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(provider.Name, provider.Model, "error").Inc()
		span.RecordError(err)
		return "", errors.Wrap(err, errors.CodeProviderError, "chat model call failed")
	}
	metrics.LLMCallTotal.WithLabelValues(provider.Name, provider.Model, "success").Inc()

	if resp == nil || resp.Content == "" {
		return "", errors.New(errors.CodeProviderError, "chat model returned empty response")
	}
	return resp.Content, nil
}
