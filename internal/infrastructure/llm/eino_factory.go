package llm

import (
	"context"
	"fmt"
	"sync"

	"storyboard-ai-api/internal/config"
	"storyboard-ai-api/internal/domain/entity"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

// EinoFactory 管理多个 Eino ChatModel 客户端实例
// 服务商配置存储在数据库中，按配置指纹惰性构建并缓存客户端，
// 配置变更后指纹变化，旧客户端自然失效。
type EinoFactory struct {
	config *config.LLMConfig
	models map[string]model.BaseChatModel
	mu     sync.RWMutex
}

// NewEinoFactory 创建 Eino LLM 工厂
func NewEinoFactory(cfg *config.Config) *EinoFactory {
	return &EinoFactory{
		config: &cfg.LLM,
		models: make(map[string]model.BaseChatModel),
	}
}

// Get 获取服务商对应的 ChatModel
func (f *EinoFactory) Get(ctx context.Context, provider *entity.Provider) (model.BaseChatModel, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider is nil")
	}
	key := fingerprint(provider)

	f.mu.RLock()
	m, ok := f.models[key]
	f.mu.RUnlock()
	if ok {
		return m, nil
	}

	// 惰性加载
	f.mu.Lock()
	defer f.mu.Unlock()

	// 再次检查防止竞态
	if m, ok = f.models[key]; ok {
		return m, nil
	}

	temperature := f.config.Temperature
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      provider.Credential,
		BaseURL:     provider.Endpoint,
		Model:       provider.Model,
		Temperature: &temperature,
		Timeout:     f.config.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create eino chat model for %s: %w", provider.Name, err)
	}

	f.models[key] = chatModel
	return chatModel, nil
}

// fingerprint 构建服务商配置指纹
func fingerprint(p *entity.Provider) string {
	return fmt.Sprintf("%s|%s|%s|%s", p.ID, p.Endpoint, p.Model, p.Credential)
}
