package provider

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyboard-ai-api/internal/domain/entity"
	"storyboard-ai-api/pkg/errors"
)

type memProviderRepo struct {
	providers map[string]*entity.Provider
}

func newMemProviderRepo() *memProviderRepo {
	return &memProviderRepo{providers: make(map[string]*entity.Provider)}
}

func (m *memProviderRepo) Create(ctx context.Context, p *entity.Provider) error {
	// 与数据库默认值一致，入库时补全主键
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	clone := *p
	m.providers[p.ID] = &clone
	return nil
}

func (m *memProviderRepo) GetByID(ctx context.Context, id string) (*entity.Provider, error) {
	p, ok := m.providers[id]
	if !ok {
		return nil, errors.ErrProviderNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *memProviderRepo) Update(ctx context.Context, p *entity.Provider) error {
	if _, ok := m.providers[p.ID]; !ok {
		return errors.ErrProviderNotFound
	}
	clone := *p
	m.providers[p.ID] = &clone
	return nil
}

func (m *memProviderRepo) Delete(ctx context.Context, id string) error {
	delete(m.providers, id)
	return nil
}

func (m *memProviderRepo) List(ctx context.Context, kind entity.ProviderKind) ([]*entity.Provider, error) {
	var out []*entity.Provider
	for _, p := range m.providers {
		if kind == "" || p.Kind == kind {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memProviderRepo) DefaultByKind(ctx context.Context, kind entity.ProviderKind) (*entity.Provider, error) {
	for _, p := range m.providers {
		if p.Kind == kind && p.IsDefault {
			clone := *p
			return &clone, nil
		}
	}
	return nil, errors.ErrProviderNotFound
}

func (m *memProviderRepo) SetDefault(ctx context.Context, id string) error {
	target, ok := m.providers[id]
	if !ok {
		return errors.ErrProviderNotFound
	}
	for _, p := range m.providers {
		if p.Kind == target.Kind {
			p.IsDefault = false
		}
	}
	target.IsDefault = true
	return nil
}

type passthroughTx struct{}

func (passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func textProvider(name string) *entity.Provider {
	return &entity.Provider{
		Name:     name,
		Kind:     entity.ProviderKindText,
		Endpoint: "https://api.example.com/v1",
		Model:    "gpt-test",
	}
}

func TestProviderService(t *testing.T) {
	ctx := context.Background()

	t.Run("first provider of a kind becomes default", func(t *testing.T) {
		repo := newMemProviderRepo()
		svc := NewService(repo, passthroughTx{})

		first, err := svc.Create(ctx, textProvider("openai"))
		require.NoError(t, err)
		assert.True(t, first.IsDefault)

		second, err := svc.Create(ctx, textProvider("deepseek"))
		require.NoError(t, err)
		assert.False(t, second.IsDefault)
	})

	t.Run("defaults are independent per kind", func(t *testing.T) {
		repo := newMemProviderRepo()
		svc := NewService(repo, passthroughTx{})

		text, err := svc.Create(ctx, textProvider("openai"))
		require.NoError(t, err)

		image := textProvider("sd")
		image.Kind = entity.ProviderKindImage
		imageCreated, err := svc.Create(ctx, image)
		require.NoError(t, err)
		assert.True(t, imageCreated.IsDefault)

		other, err := svc.Create(ctx, textProvider("deepseek"))
		require.NoError(t, err)
		require.NoError(t, svc.SetDefault(ctx, other.ID))

		// 文本默认切换后，图片默认不受影响
		got, err := repo.DefaultByKind(ctx, entity.ProviderKindText)
		require.NoError(t, err)
		assert.Equal(t, other.ID, got.ID)

		got, err = repo.DefaultByKind(ctx, entity.ProviderKindImage)
		require.NoError(t, err)
		assert.Equal(t, imageCreated.ID, got.ID)

		demoted, err := repo.GetByID(ctx, text.ID)
		require.NoError(t, err)
		assert.False(t, demoted.IsDefault)
	})

	t.Run("update keeps stored credential when omitted", func(t *testing.T) {
		repo := newMemProviderRepo()
		svc := NewService(repo, passthroughTx{})

		p := textProvider("openai")
		p.Credential = "sk-secret"
		created, err := svc.Create(ctx, p)
		require.NoError(t, err)

		update := textProvider("openai-renamed")
		update.ID = created.ID
		updated, err := svc.Update(ctx, update)
		require.NoError(t, err)
		assert.Equal(t, "openai-renamed", updated.Name)
		assert.Equal(t, "sk-secret", updated.Credential)
	})

	t.Run("validation rejects bad input", func(t *testing.T) {
		svc := NewService(newMemProviderRepo(), passthroughTx{})

		_, err := svc.Create(ctx, &entity.Provider{Kind: entity.ProviderKindText, Endpoint: "x", Model: "m"})
		assert.Error(t, err)

		bad := textProvider("openai")
		bad.Kind = "audio"
		_, err = svc.Create(ctx, bad)
		assert.Error(t, err)
	})
}
