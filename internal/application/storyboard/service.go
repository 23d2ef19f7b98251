// Package storyboard 实现对话驱动的分镜整理核心
package storyboard

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"storyboard-ai-api/internal/config"
	"storyboard-ai-api/internal/domain/entity"
	"storyboard-ai-api/internal/domain/repository"
	"storyboard-ai-api/pkg/errors"
	"storyboard-ai-api/pkg/logger"
	"storyboard-ai-api/pkg/metrics"
)

var tracer = otel.Tracer("storyboard")

// ProviderGateway 模型调用端口
type ProviderGateway interface {
	Send(ctx context.Context, provider *entity.Provider, systemPrompt string, history []*entity.ConversationTurn, userMessage string) (string, error)
}

// SessionLock 项目会话租约端口，保证单项目同时只有一次调用在途
// Acquire 返回持有者令牌，占用中返回空串；Release 仅删除令牌仍匹配的租约。
type SessionLock interface {
	Acquire(ctx context.Context, projectID string) (string, error)
	Release(ctx context.Context, projectID, token string) error
}

// ProjectCache 项目读缓存端口
type ProjectCache interface {
	GetOrLoadTranscript(ctx context.Context, projectID string, ttl time.Duration, loader func() (interface{}, error)) ([]byte, error)
	InvalidateTranscript(ctx context.Context, projectID string) error
	InvalidateProject(ctx context.Context, projectID string) error
}

// Outcome 一轮对话的结果类型
type Outcome string

const (
	// OutcomeApplied 载荷已整理并落库
	OutcomeApplied Outcome = "applied"
	// OutcomePlain 纯文本回复，工作区未变动
	OutcomePlain Outcome = "plain"
	// OutcomeRequiresConfirmation 整体重做需要用户确认
	OutcomeRequiresConfirmation Outcome = "requires_confirmation"
	// OutcomeAborted 用户拒绝确认，本轮中止
	OutcomeAborted Outcome = "aborted"
	// OutcomeFailed 模型或存储失败，仅用于指标
	OutcomeFailed Outcome = "failed"
)

// ChatInput 一轮对话的输入
type ChatInput struct {
	ProjectID  string
	Message    string
	ProviderID string
	// Confirmed 整体重做确认标记：nil 表示尚未询问，true/false 为用户答复
	Confirmed *bool
}

// ChatResult 一轮对话的输出
type ChatResult struct {
	Outcome        Outcome            `json:"outcome"`
	Intent         Intent             `json:"intent"`
	AssistantReply string             `json:"assistant_reply,omitempty"`
	Entities       *entity.EntitySets `json:"entities,omitempty"`
}

// ChatService 对话编排服务
// 串联意图判定、确认门、模型调用、载荷提取、整理与原子落库。
type ChatService struct {
	projects   repository.ProjectRepository
	store      repository.StoryboardStore
	transcript repository.TranscriptRepository
	providers  repository.ProviderRepository
	txMgr      repository.Transactor
	gateway    ProviderGateway
	lock       SessionLock
	cache      ProjectCache
	extractor  *Extractor
	classifier *Classifier
	engine     *Engine
	config     *config.LLMConfig
	cacheTTL   time.Duration
}

// NewChatService 创建对话编排服务
func NewChatService(
	projects repository.ProjectRepository,
	store repository.StoryboardStore,
	transcript repository.TranscriptRepository,
	providers repository.ProviderRepository,
	txMgr repository.Transactor,
	gateway ProviderGateway,
	lock SessionLock,
	cache ProjectCache,
	cfg *config.Config,
) *ChatService {
	return &ChatService{
		projects:   projects,
		store:      store,
		transcript: transcript,
		providers:  providers,
		txMgr:      txMgr,
		gateway:    gateway,
		lock:       lock,
		cache:      cache,
		extractor:  NewExtractor(),
		classifier: NewClassifier(),
		engine:     NewEngine(),
		config:     &cfg.LLM,
		cacheTTL:   cfg.Cache.TTL,
	}
}

// Chat 处理一轮用户消息
func (s *ChatService) Chat(ctx context.Context, input ChatInput) (*ChatResult, error) {
	ctx, span := tracer.Start(ctx, "storyboard.ChatService.Chat")
	span.SetAttributes(attribute.String("project_id", input.ProjectID))
	defer span.End()

	log := logger.FromContext(ctx)
	start := time.Now()

	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, errors.ErrValidationFailed.WithDetail("message is empty")
	}

	project, err := s.projects.GetByID(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}

	// 同一项目同时只允许一次调用在途，占用中直接拒绝
	lease, err := s.lock.Acquire(ctx, project.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeCacheError, "failed to acquire project session")
	}
	if lease == "" {
		return nil, errors.ErrProjectBusy
	}
	metrics.ActiveProjects.Inc()
	defer func() {
		metrics.ActiveProjects.Dec()
		if err := s.lock.Release(context.WithoutCancel(ctx), project.ID, lease); err != nil {
			log.Warn("failed to release project session", "project_id", project.ID, "error", err)
		}
	}()

	current, err := s.store.LoadEntities(ctx, project.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorageError, "failed to load storyboard")
	}

	intent := s.classifier.Classify(message, len(current.Shots) > 0)
	span.SetAttributes(attribute.String("intent", string(intent)))

	// 整体重做会丢弃现有分镜，必须经过用户确认
	if intent == IntentFullRegenerate && len(current.Shots) > 0 {
		switch {
		case input.Confirmed == nil:
			if err := s.appendTurn(ctx, entity.NewConversationTurn(project.ID, entity.RoleUser, message)); err != nil {
				return nil, errors.Wrap(err, errors.CodeStorageError, "failed to append user turn")
			}
			s.observeTurn(intent, OutcomeRequiresConfirmation, start)
			return &ChatResult{Outcome: OutcomeRequiresConfirmation, Intent: intent, Entities: current}, nil
		case !*input.Confirmed:
			abort := entity.NewConversationTurn(project.ID, entity.RoleAssistant, "已取消整体重做，当前分镜保持不变。")
			if err := s.appendTurn(ctx, abort); err != nil {
				return nil, errors.Wrap(err, errors.CodeStorageError, "failed to append abort turn")
			}
			s.observeTurn(intent, OutcomeAborted, start)
			return &ChatResult{Outcome: OutcomeAborted, Intent: intent, AssistantReply: abort.Content, Entities: current}, nil
		default:
			// 已确认：用户消息通常在询问轮已入库；跳过询问轮直发确认时补记
			recent, err := s.transcript.Recent(ctx, project.ID, 1)
			if err != nil {
				return nil, errors.Wrap(err, errors.CodeStorageError, "failed to load transcript")
			}
			if n := len(recent); n == 0 || recent[n-1].Role != entity.RoleUser || recent[n-1].Content != message {
				if err := s.appendTurn(ctx, entity.NewConversationTurn(project.ID, entity.RoleUser, message)); err != nil {
					return nil, errors.Wrap(err, errors.CodeStorageError, "failed to append user turn")
				}
			}
		}
	} else {
		if err := s.appendTurn(ctx, entity.NewConversationTurn(project.ID, entity.RoleUser, message)); err != nil {
			return nil, errors.Wrap(err, errors.CodeStorageError, "failed to append user turn")
		}
	}

	provider, err := s.resolveProvider(ctx, input.ProviderID)
	if err != nil {
		return nil, err
	}

	// 历史不含本条消息，本条消息与上下文块合并后作为当前输入
	history, err := s.transcript.Recent(ctx, project.ID, s.config.HistoryLimit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorageError, "failed to load transcript")
	}
	history = trimCurrentMessage(history, message)

	rawReply, err := s.gateway.Send(ctx, provider, SystemPrompt(project), history, ComposeUserMessage(*current, message))
	if err != nil {
		// 失败原样入会话，便于用户看到发生了什么
		errTurn := entity.NewConversationTurn(project.ID, entity.RoleAssistant, "模型调用失败："+err.Error())
		if appendErr := s.appendTurn(ctx, errTurn); appendErr != nil {
			log.Error("failed to append provider error turn", "project_id", project.ID, "error", appendErr)
		}
		s.observeTurn(intent, OutcomeFailed, start)
		return nil, errors.ErrProviderFailed.WithError(err)
	}

	payload := s.extractor.Extract(ctx, rawReply)
	if payload.IsEmpty() {
		// 无载荷按普通对话处理，工作区不动
		if intent != IntentPlain {
			log.Warn("expected structured payload missing, degrading to plain turn",
				"intent", string(intent), "error", errors.ErrExtractionMismatch)
		}
		if err := s.appendTurn(ctx, entity.NewConversationTurn(project.ID, entity.RoleAssistant, rawReply)); err != nil {
			return nil, errors.Wrap(err, errors.CodeStorageError, "failed to append assistant turn")
		}
		s.observeTurn(intent, OutcomePlain, start)
		return &ChatResult{Outcome: OutcomePlain, Intent: intent, AssistantReply: rawReply, Entities: current}, nil
	}

	next := s.engine.Apply(intent, payload, *current)

	// 工作区替换与助手回复在同一事务内落库，失败则整体回滚
	err = s.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.store.Commit(txCtx, project.ID, &next); err != nil {
			return err
		}
		return s.transcript.Append(txCtx, entity.NewConversationTurn(project.ID, entity.RoleAssistant, rawReply))
	})
	if err != nil {
		errTurn := entity.NewConversationTurn(project.ID, entity.RoleAssistant, "保存分镜失败，已保留之前的内容："+err.Error())
		if appendErr := s.appendTurn(ctx, errTurn); appendErr != nil {
			log.Error("failed to append storage error turn", "project_id", project.ID, "error", appendErr)
		}
		s.observeTurn(intent, OutcomeFailed, start)
		return nil, errors.ErrStorageFailed.WithDetail("failed to commit storyboard").WithError(err)
	}

	if err := s.cache.InvalidateProject(ctx, project.ID); err != nil {
		log.Warn("failed to invalidate project cache", "project_id", project.ID, "error", err)
	}

	// 落库后重新加载，确保返回的是持久化之后的状态
	applied, err := s.store.LoadEntities(ctx, project.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorageError, "failed to reload storyboard")
	}

	metrics.ShotsReconciled.WithLabelValues(string(intent)).Observe(float64(len(applied.Shots)))
	s.observeTurn(intent, OutcomeApplied, start)
	return &ChatResult{Outcome: OutcomeApplied, Intent: intent, AssistantReply: rawReply, Entities: applied}, nil
}

// History 返回项目最近的会话记录，经读缓存回源
func (s *ChatService) History(ctx context.Context, projectID string) ([]*entity.ConversationTurn, error) {
	ctx, span := tracer.Start(ctx, "storyboard.ChatService.History")
	defer span.End()

	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, err
	}

	raw, err := s.cache.GetOrLoadTranscript(ctx, projectID, s.cacheTTL, func() (interface{}, error) {
		return s.transcript.Recent(ctx, projectID, s.config.TranscriptLimit)
	})
	if err != nil {
		return nil, err
	}

	var turns []*entity.ConversationTurn
	if err := json.Unmarshal(raw, &turns); err != nil {
		return nil, errors.Wrap(err, errors.CodeCacheError, "failed to decode cached transcript")
	}
	return turns, nil
}

// appendTurn 入会话并使会话缓存失效
func (s *ChatService) appendTurn(ctx context.Context, turn *entity.ConversationTurn) error {
	if err := s.transcript.Append(ctx, turn); err != nil {
		return err
	}
	if err := s.cache.InvalidateTranscript(ctx, turn.ProjectID); err != nil {
		logger.FromContext(ctx).Warn("failed to invalidate transcript cache", "project_id", turn.ProjectID, "error", err)
	}
	return nil
}

// resolveProvider 指定 ID 时精确取用，否则取文本类默认服务商
func (s *ChatService) resolveProvider(ctx context.Context, providerID string) (*entity.Provider, error) {
	if providerID != "" {
		return s.providers.GetByID(ctx, providerID)
	}
	provider, err := s.providers.DefaultByKind(ctx, entity.ProviderKindText)
	if err != nil {
		if errors.IsAppError(err) {
			return nil, errors.ErrValidationFailed.WithDetail("no default text provider configured")
		}
		return nil, err
	}
	return provider, nil
}

// trimCurrentMessage 历史中剔除刚入库的当前消息，避免重复发送
func trimCurrentMessage(history []*entity.ConversationTurn, message string) []*entity.ConversationTurn {
	if n := len(history); n > 0 && history[n-1].Role == entity.RoleUser && history[n-1].Content == message {
		return history[:n-1]
	}
	return history
}

// observeTurn 记录一轮对话的指标
func (s *ChatService) observeTurn(intent Intent, outcome Outcome, start time.Time) {
	metrics.ChatTurnsTotal.WithLabelValues(string(intent), string(outcome)).Inc()
	metrics.ChatTurnDuration.WithLabelValues(string(intent)).Observe(time.Since(start).Seconds())
}
