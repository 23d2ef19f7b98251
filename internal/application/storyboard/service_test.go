package storyboard

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyboard-ai-api/internal/config"
	"storyboard-ai-api/internal/domain/entity"
	"storyboard-ai-api/internal/domain/repository"
	"storyboard-ai-api/pkg/errors"
)

type fakeProjectRepo struct {
	project *entity.Project
}

func (f *fakeProjectRepo) Create(ctx context.Context, p *entity.Project) error { return nil }

func (f *fakeProjectRepo) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	if f.project == nil || f.project.ID != id {
		return nil, errors.ErrProjectNotFound
	}
	return f.project, nil
}

func (f *fakeProjectRepo) GetByName(ctx context.Context, name string) (*entity.Project, error) {
	return nil, errors.ErrProjectNotFound
}

func (f *fakeProjectRepo) Update(ctx context.Context, p *entity.Project) error { return nil }

func (f *fakeProjectRepo) Delete(ctx context.Context, id string) error { return nil }

func (f *fakeProjectRepo) List(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.Project], error) {
	return nil, nil
}

type fakeStore struct {
	sets      entity.EntitySets
	commitErr error
	commits   int
}

func (f *fakeStore) LoadEntities(ctx context.Context, projectID string) (*entity.EntitySets, error) {
	clone := f.sets.Clone()
	return &clone, nil
}

func (f *fakeStore) Commit(ctx context.Context, projectID string, sets *entity.EntitySets) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.commits++
	f.sets = sets.Clone()
	return nil
}

func (f *fakeStore) GetShot(ctx context.Context, projectID, mirrorID string) (*entity.Shot, error) {
	return nil, errors.ErrShotNotFound
}

func (f *fakeStore) UpdateShotImage(ctx context.Context, projectID, mirrorID string, firstPath, lastPath string, status entity.ImageStatus) error {
	return nil
}

func (f *fakeStore) UpdateAssetImage(ctx context.Context, projectID string, kind entity.AssetKind, name, imagePath string) error {
	return nil
}

type fakeTranscript struct {
	turns []*entity.ConversationTurn
}

func (f *fakeTranscript) Append(ctx context.Context, turn *entity.ConversationTurn) error {
	f.turns = append(f.turns, turn)
	return nil
}

func (f *fakeTranscript) Recent(ctx context.Context, projectID string, limit int) ([]*entity.ConversationTurn, error) {
	if len(f.turns) > limit {
		return f.turns[len(f.turns)-limit:], nil
	}
	return f.turns, nil
}

func (f *fakeTranscript) DeleteByProject(ctx context.Context, projectID string) error {
	f.turns = nil
	return nil
}

func (f *fakeTranscript) last() *entity.ConversationTurn {
	if len(f.turns) == 0 {
		return nil
	}
	return f.turns[len(f.turns)-1]
}

type fakeProviderRepo struct {
	byID        map[string]*entity.Provider
	defaultText *entity.Provider
}

func (f *fakeProviderRepo) Create(ctx context.Context, p *entity.Provider) error { return nil }

func (f *fakeProviderRepo) GetByID(ctx context.Context, id string) (*entity.Provider, error) {
	if p, ok := f.byID[id]; ok {
		return p, nil
	}
	return nil, errors.ErrProviderNotFound
}

func (f *fakeProviderRepo) Update(ctx context.Context, p *entity.Provider) error { return nil }

func (f *fakeProviderRepo) Delete(ctx context.Context, id string) error { return nil }

func (f *fakeProviderRepo) List(ctx context.Context, kind entity.ProviderKind) ([]*entity.Provider, error) {
	return nil, nil
}

func (f *fakeProviderRepo) DefaultByKind(ctx context.Context, kind entity.ProviderKind) (*entity.Provider, error) {
	if f.defaultText == nil {
		return nil, errors.ErrProviderNotFound
	}
	return f.defaultText, nil
}

func (f *fakeProviderRepo) SetDefault(ctx context.Context, id string) error { return nil }

type fakeTxManager struct{}

func (f *fakeTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeGateway struct {
	reply string
	err   error
	calls int
}

func (f *fakeGateway) Send(ctx context.Context, provider *entity.Provider, systemPrompt string, history []*entity.ConversationTurn, userMessage string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeLock struct {
	busy     bool
	acquired int
	released int
}

func (f *fakeLock) Acquire(ctx context.Context, projectID string) (string, error) {
	if f.busy {
		return "", nil
	}
	f.acquired++
	return fmt.Sprintf("lease-%d", f.acquired), nil
}

func (f *fakeLock) Release(ctx context.Context, projectID, token string) error {
	f.released++
	return nil
}

type fakeCache struct {
	invalidated           int
	transcriptInvalidated int
}

func (f *fakeCache) GetOrLoadTranscript(ctx context.Context, projectID string, ttl time.Duration, loader func() (interface{}, error)) ([]byte, error) {
	data, err := loader()
	if err != nil {
		return nil, err
	}
	return json.Marshal(data)
}

func (f *fakeCache) InvalidateTranscript(ctx context.Context, projectID string) error {
	f.transcriptInvalidated++
	return nil
}

func (f *fakeCache) InvalidateProject(ctx context.Context, projectID string) error {
	f.invalidated++
	return nil
}

type chatFixture struct {
	svc        *ChatService
	store      *fakeStore
	transcript *fakeTranscript
	gateway    *fakeGateway
	lock       *fakeLock
	cache      *fakeCache
}

func newChatFixture(sets entity.EntitySets) *chatFixture {
	cfg := &config.Config{}
	cfg.LLM.HistoryLimit = 10
	cfg.LLM.TranscriptLimit = 20
	cfg.Cache.TTL = time.Minute

	f := &chatFixture{
		store:      &fakeStore{sets: sets},
		transcript: &fakeTranscript{},
		gateway:    &fakeGateway{},
		lock:       &fakeLock{},
		cache:      &fakeCache{},
	}
	f.svc = NewChatService(
		&fakeProjectRepo{project: &entity.Project{ID: "p1", Name: "测试项目"}},
		f.store,
		f.transcript,
		&fakeProviderRepo{defaultText: &entity.Provider{ID: "prov1", Kind: entity.ProviderKindText, Model: "gpt-test"}},
		&fakeTxManager{},
		f.gateway,
		f.lock,
		f.cache,
		cfg,
	)
	return f
}

func existingSets() entity.EntitySets {
	return entity.EntitySets{Shots: []entity.Shot{
		{ProjectID: "p1", MirrorID: "S1", SequenceNumber: 1, Description: "开场"},
		{ProjectID: "p1", MirrorID: "S2", SequenceNumber: 2, Description: "追逐"},
	}}
}

func boolPtr(b bool) *bool { return &b }

func TestChatServiceChat(t *testing.T) {
	ctx := context.Background()

	t.Run("plain reply leaves workspace unchanged", func(t *testing.T) {
		f := newChatFixture(existingSets())
		f.gateway.reply = "这个故事讲的是一次告别。"

		result, err := f.svc.Chat(ctx, ChatInput{ProjectID: "p1", Message: "这个故事的主题是什么"})

		require.NoError(t, err)
		assert.Equal(t, OutcomePlain, result.Outcome)
		assert.Equal(t, IntentPlain, result.Intent)
		assert.Equal(t, f.gateway.reply, result.AssistantReply)
		assert.Len(t, result.Entities.Shots, 2)
		assert.Zero(t, f.store.commits)
		// 用户消息与助手回复都入会话
		require.Len(t, f.transcript.turns, 2)
		assert.Equal(t, entity.RoleUser, f.transcript.turns[0].Role)
		assert.Equal(t, entity.RoleAssistant, f.transcript.turns[1].Role)
	})

	t.Run("partial update is applied and committed", func(t *testing.T) {
		f := newChatFixture(existingSets())
		f.gateway.reply = "```json\n{\"storyboards\":[{\"mirror_id\":\"S2\",\"description\":\"追逐改为夜戏\"}]}\n```"

		result, err := f.svc.Chat(ctx, ChatInput{ProjectID: "p1", Message: "调整 S2 的描述"})

		require.NoError(t, err)
		assert.Equal(t, OutcomeApplied, result.Outcome)
		assert.Equal(t, IntentPartialUpdate, result.Intent)
		require.Len(t, result.Entities.Shots, 2)
		assert.Equal(t, "追逐改为夜戏", result.Entities.Shots[1].Description)
		assert.Equal(t, 1, f.store.commits)
		assert.Equal(t, 1, f.cache.invalidated)
	})

	t.Run("full regenerate asks for confirmation first", func(t *testing.T) {
		f := newChatFixture(existingSets())

		result, err := f.svc.Chat(ctx, ChatInput{ProjectID: "p1", Message: "整体重做一版"})

		require.NoError(t, err)
		assert.Equal(t, OutcomeRequiresConfirmation, result.Outcome)
		assert.Equal(t, IntentFullRegenerate, result.Intent)
		// 确认前不得调用模型
		assert.Zero(t, f.gateway.calls)
		assert.Zero(t, f.store.commits)
		// 用户消息已入会话，等待确认答复
		require.Len(t, f.transcript.turns, 1)
		assert.Equal(t, entity.RoleUser, f.transcript.turns[0].Role)
	})

	t.Run("declined confirmation aborts the turn", func(t *testing.T) {
		f := newChatFixture(existingSets())

		result, err := f.svc.Chat(ctx, ChatInput{ProjectID: "p1", Message: "整体重做一版", Confirmed: boolPtr(false)})

		require.NoError(t, err)
		assert.Equal(t, OutcomeAborted, result.Outcome)
		assert.Zero(t, f.gateway.calls)
		assert.Zero(t, f.store.commits)
		assert.Len(t, result.Entities.Shots, 2)
		require.NotNil(t, f.transcript.last())
		assert.Equal(t, entity.RoleAssistant, f.transcript.last().Role)
	})

	t.Run("confirmed regenerate replaces workspace", func(t *testing.T) {
		f := newChatFixture(existingSets())
		// 询问轮已把用户消息入库
		_ = f.transcript.Append(ctx, entity.NewConversationTurn("p1", entity.RoleUser, "整体重做一版"))
		f.gateway.reply = "```json\n{\"storyboards\":[{\"mirror_id\":\"N1\",\"description\":\"新开场\"}]}\n```"

		result, err := f.svc.Chat(ctx, ChatInput{ProjectID: "p1", Message: "整体重做一版", Confirmed: boolPtr(true)})

		require.NoError(t, err)
		assert.Equal(t, OutcomeApplied, result.Outcome)
		assert.Equal(t, 1, f.gateway.calls)
		require.Len(t, result.Entities.Shots, 1)
		assert.Equal(t, "N1", result.Entities.Shots[0].MirrorID)
		// 确认轮不再重复追加用户消息
		userTurns := 0
		for _, turn := range f.transcript.turns {
			if turn.Role == entity.RoleUser {
				userTurns++
			}
		}
		assert.Equal(t, 1, userTurns)
	})

	t.Run("confirmation without asking round still records the user message", func(t *testing.T) {
		f := newChatFixture(existingSets())
		f.gateway.reply = "```json\n{\"storyboards\":[{\"mirror_id\":\"N1\"}]}\n```"

		// 客户端跳过询问轮直接带确认标记
		result, err := f.svc.Chat(ctx, ChatInput{ProjectID: "p1", Message: "整体重做一版", Confirmed: boolPtr(true)})

		require.NoError(t, err)
		assert.Equal(t, OutcomeApplied, result.Outcome)
		require.NotEmpty(t, f.transcript.turns)
		assert.Equal(t, entity.RoleUser, f.transcript.turns[0].Role)
		assert.Equal(t, "整体重做一版", f.transcript.turns[0].Content)
	})

	t.Run("regenerate without existing shots skips confirmation", func(t *testing.T) {
		f := newChatFixture(entity.EntitySets{})
		f.gateway.reply = "```json\n{\"storyboards\":[{\"mirror_id\":\"S1\"}]}\n```"

		result, err := f.svc.Chat(ctx, ChatInput{ProjectID: "p1", Message: "重新生成分镜"})

		require.NoError(t, err)
		assert.Equal(t, OutcomeApplied, result.Outcome)
		assert.Equal(t, IntentPartialUpdate, result.Intent)
	})

	t.Run("busy project is rejected", func(t *testing.T) {
		f := newChatFixture(existingSets())
		f.lock.busy = true

		_, err := f.svc.Chat(ctx, ChatInput{ProjectID: "p1", Message: "随便聊聊"})

		require.Error(t, err)
		assert.Equal(t, errors.CodeProjectBusy, errors.AsAppError(err).Code)
		assert.Zero(t, f.gateway.calls)
	})

	t.Run("lock is released after the turn", func(t *testing.T) {
		f := newChatFixture(existingSets())
		f.gateway.reply = "好的。"

		_, err := f.svc.Chat(ctx, ChatInput{ProjectID: "p1", Message: "你好"})

		require.NoError(t, err)
		assert.Equal(t, 1, f.lock.acquired)
		assert.Equal(t, 1, f.lock.released)
	})

	t.Run("provider failure keeps workspace and records error turn", func(t *testing.T) {
		f := newChatFixture(existingSets())
		f.gateway.err = fmt.Errorf("connection refused")

		_, err := f.svc.Chat(ctx, ChatInput{ProjectID: "p1", Message: "调整 S1"})

		require.Error(t, err)
		assert.Equal(t, errors.CodeProviderError, errors.AsAppError(err).Code)
		assert.Zero(t, f.store.commits)
		require.NotNil(t, f.transcript.last())
		assert.Equal(t, entity.RoleAssistant, f.transcript.last().Role)
		assert.Contains(t, f.transcript.last().Content, "模型调用失败")
		assert.Equal(t, 1, f.lock.released)
	})

	t.Run("commit failure keeps previous workspace", func(t *testing.T) {
		f := newChatFixture(existingSets())
		f.gateway.reply = "```json\n{\"storyboards\":[{\"mirror_id\":\"S1\",\"description\":\"改写\"}]}\n```"
		f.store.commitErr = fmt.Errorf("deadlock detected")

		_, err := f.svc.Chat(ctx, ChatInput{ProjectID: "p1", Message: "调整 S1"})

		require.Error(t, err)
		assert.Equal(t, errors.CodeStorageError, errors.AsAppError(err).Code)
		assert.Equal(t, "开场", f.store.sets.Shots[0].Description)
		require.NotNil(t, f.transcript.last())
		assert.Contains(t, f.transcript.last().Content, "保存分镜失败")
	})

	t.Run("empty message is rejected", func(t *testing.T) {
		f := newChatFixture(existingSets())

		_, err := f.svc.Chat(ctx, ChatInput{ProjectID: "p1", Message: "   "})

		require.Error(t, err)
		assert.Equal(t, errors.CodeValidationFailed, errors.AsAppError(err).Code)
	})

	t.Run("unknown project is rejected", func(t *testing.T) {
		f := newChatFixture(existingSets())

		_, err := f.svc.Chat(ctx, ChatInput{ProjectID: "missing", Message: "你好"})

		require.Error(t, err)
		assert.Equal(t, errors.CodeProjectNotFound, errors.AsAppError(err).Code)
	})

	t.Run("missing default provider is reported", func(t *testing.T) {
		f := newChatFixture(existingSets())
		f.svc.providers = &fakeProviderRepo{}

		_, err := f.svc.Chat(ctx, ChatInput{ProjectID: "p1", Message: "你好"})

		require.Error(t, err)
		appErr := errors.AsAppError(err)
		assert.Equal(t, errors.CodeValidationFailed, appErr.Code)
		assert.Contains(t, appErr.Detail, "no default text provider")
	})

	t.Run("each append invalidates the transcript cache", func(t *testing.T) {
		f := newChatFixture(existingSets())
		f.gateway.reply = "这一场保持原样就好。"

		_, err := f.svc.Chat(ctx, ChatInput{ProjectID: "p1", Message: "这一场要改吗"})

		require.NoError(t, err)
		// 用户轮与助手轮各失效一次
		assert.Equal(t, 2, f.cache.transcriptInvalidated)
	})
}

func TestChatServiceHistory(t *testing.T) {
	ctx := context.Background()

	f := newChatFixture(existingSets())
	require.NoError(t, f.transcript.Append(ctx, entity.NewConversationTurn("p1", entity.RoleUser, "开场再紧凑些")))
	require.NoError(t, f.transcript.Append(ctx, entity.NewConversationTurn("p1", entity.RoleAssistant, "好的，已压缩节奏。")))

	turns, err := f.svc.History(ctx, "p1")

	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, entity.RoleUser, turns[0].Role)
	assert.Equal(t, "好的，已压缩节奏。", turns[1].Content)
}

func TestTrimCurrentMessage(t *testing.T) {
	turns := []*entity.ConversationTurn{
		{Role: entity.RoleUser, Content: "第一轮"},
		{Role: entity.RoleAssistant, Content: "回复"},
		{Role: entity.RoleUser, Content: "当前消息"},
	}

	trimmed := trimCurrentMessage(turns, "当前消息")
	assert.Len(t, trimmed, 2)

	// 末尾不是当前消息时不剔除
	assert.Len(t, trimCurrentMessage(turns[:2], "当前消息"), 2)
}
