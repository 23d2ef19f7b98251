package project

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyboard-ai-api/internal/domain/entity"
	"storyboard-ai-api/internal/domain/repository"
	"storyboard-ai-api/pkg/errors"
)

type memProjectRepo struct {
	projects map[string]*entity.Project
}

func newMemProjectRepo() *memProjectRepo {
	return &memProjectRepo{projects: make(map[string]*entity.Project)}
}

func (m *memProjectRepo) Create(ctx context.Context, p *entity.Project) error {
	// 与数据库默认值一致，入库时补全主键
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	clone := *p
	m.projects[p.ID] = &clone
	return nil
}

func (m *memProjectRepo) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, errors.ErrProjectNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *memProjectRepo) GetByName(ctx context.Context, name string) (*entity.Project, error) {
	for _, p := range m.projects {
		if p.Name == name {
			clone := *p
			return &clone, nil
		}
	}
	return nil, errors.ErrProjectNotFound
}

func (m *memProjectRepo) Update(ctx context.Context, p *entity.Project) error {
	if _, ok := m.projects[p.ID]; !ok {
		return errors.ErrProjectNotFound
	}
	clone := *p
	m.projects[p.ID] = &clone
	return nil
}

func (m *memProjectRepo) Delete(ctx context.Context, id string) error {
	delete(m.projects, id)
	return nil
}

func (m *memProjectRepo) List(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.Project], error) {
	var items []*entity.Project
	for _, p := range m.projects {
		clone := *p
		items = append(items, &clone)
	}
	return repository.NewPagedResult(items, int64(len(items)), pagination), nil
}

type stubStore struct {
	sets entity.EntitySets
	shot *entity.Shot
}

func (s *stubStore) LoadEntities(ctx context.Context, projectID string) (*entity.EntitySets, error) {
	clone := s.sets.Clone()
	return &clone, nil
}

func (s *stubStore) Commit(ctx context.Context, projectID string, sets *entity.EntitySets) error {
	s.sets = sets.Clone()
	return nil
}

func (s *stubStore) GetShot(ctx context.Context, projectID, mirrorID string) (*entity.Shot, error) {
	if s.shot != nil && s.shot.MirrorID == mirrorID {
		clone := *s.shot
		return &clone, nil
	}
	return nil, errors.ErrShotNotFound
}

func (s *stubStore) UpdateShotImage(ctx context.Context, projectID, mirrorID string, firstPath, lastPath string, status entity.ImageStatus) error {
	if s.shot == nil || s.shot.MirrorID != mirrorID {
		return errors.ErrShotNotFound
	}
	s.shot.ImageFirstPath = firstPath
	s.shot.ImageLastPath = lastPath
	s.shot.ImageStatus = status
	return nil
}

func (s *stubStore) UpdateAssetImage(ctx context.Context, projectID string, kind entity.AssetKind, name, imagePath string) error {
	return nil
}

type noopTx struct{}

func (noopTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// passthroughCache 每次回源，记录失效次数
type passthroughCache struct {
	invalidated int
}

func (c *passthroughCache) GetOrLoadEntities(ctx context.Context, projectID string, ttl time.Duration, loader func() (interface{}, error)) ([]byte, error) {
	data, err := loader()
	if err != nil {
		return nil, err
	}
	return json.Marshal(data)
}

func (c *passthroughCache) InvalidateProject(ctx context.Context, projectID string) error {
	c.invalidated++
	return nil
}

func strPtr(s string) *string { return &s }

func TestProjectService(t *testing.T) {
	ctx := context.Background()

	newService := func() (*Service, *memProjectRepo) {
		repo := newMemProjectRepo()
		return NewService(repo, &stubStore{}, noopTx{}, &passthroughCache{}, time.Minute), repo
	}

	t.Run("create requires a name", func(t *testing.T) {
		svc, _ := newService()
		_, err := svc.Create(ctx, "", "desc")
		require.Error(t, err)
		assert.Equal(t, errors.CodeValidationFailed, errors.AsAppError(err).Code)
	})

	t.Run("create and get round trip", func(t *testing.T) {
		svc, _ := newService()
		created, err := svc.Create(ctx, "毕业短片", "三幕剧")
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)

		got, err := svc.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "毕业短片", got.Name)
		assert.Equal(t, "三幕剧", got.Description)
	})

	t.Run("update settings keeps omitted fields", func(t *testing.T) {
		svc, _ := newService()
		created, err := svc.Create(ctx, "毕业短片", "三幕剧")
		require.NoError(t, err)

		updated, err := svc.UpdateSettings(ctx, created.ID, nil, nil, strPtr("水墨风"), nil)
		require.NoError(t, err)
		assert.Equal(t, "毕业短片", updated.Name)
		assert.Equal(t, "三幕剧", updated.Description)
		assert.Equal(t, "水墨风", updated.StylePrompt)
	})

	t.Run("update settings rejects empty name", func(t *testing.T) {
		svc, _ := newService()
		created, err := svc.Create(ctx, "毕业短片", "")
		require.NoError(t, err)

		_, err = svc.UpdateSettings(ctx, created.ID, strPtr(""), nil, nil, nil)
		require.Error(t, err)
		assert.Equal(t, errors.CodeValidationFailed, errors.AsAppError(err).Code)
	})

	t.Run("import document stores extracted text", func(t *testing.T) {
		svc, repo := newService()
		created, err := svc.Create(ctx, "毕业短片", "")
		require.NoError(t, err)

		updated, err := svc.ImportDocument(ctx, created.ID, "script.txt", []byte("第一场 天台 夜"))
		require.NoError(t, err)
		assert.Equal(t, "第一场 天台 夜", updated.SourceText)

		stored, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "第一场 天台 夜", stored.SourceText)
	})

	t.Run("import document rejects unsupported format", func(t *testing.T) {
		svc, _ := newService()
		created, err := svc.Create(ctx, "毕业短片", "")
		require.NoError(t, err)

		_, err = svc.ImportDocument(ctx, created.ID, "script.pdf", []byte("x"))
		require.Error(t, err)
		assert.Equal(t, errors.CodeUnsupportedFormat, errors.AsAppError(err).Code)
	})

	t.Run("entities requires an existing project", func(t *testing.T) {
		svc, _ := newService()
		_, err := svc.Entities(ctx, "missing")
		require.Error(t, err)
		assert.Equal(t, errors.CodeProjectNotFound, errors.AsAppError(err).Code)
	})

	t.Run("entities round trips through the cache", func(t *testing.T) {
		repo := newMemProjectRepo()
		store := &stubStore{sets: entity.EntitySets{Shots: []entity.Shot{{MirrorID: "S1", SequenceNumber: 1, Description: "开场"}}}}
		svc := NewService(repo, store, noopTx{}, &passthroughCache{}, time.Minute)
		created, err := svc.Create(ctx, "毕业短片", "")
		require.NoError(t, err)

		sets, err := svc.Entities(ctx, created.ID)
		require.NoError(t, err)
		require.Len(t, sets.Shots, 1)
		assert.Equal(t, "S1", sets.Shots[0].MirrorID)
		assert.Equal(t, "开场", sets.Shots[0].Description)
	})

	t.Run("delete invalidates the project cache", func(t *testing.T) {
		repo := newMemProjectRepo()
		cache := &passthroughCache{}
		svc := NewService(repo, &stubStore{}, noopTx{}, cache, time.Minute)
		created, err := svc.Create(ctx, "毕业短片", "")
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, created.ID))
		assert.Equal(t, 1, cache.invalidated)
	})

	t.Run("shot image update invalidates the snapshot cache", func(t *testing.T) {
		repo := newMemProjectRepo()
		store := &stubStore{shot: &entity.Shot{MirrorID: "S1", SequenceNumber: 1}}
		cache := &passthroughCache{}
		svc := NewService(repo, store, noopTx{}, cache, time.Minute)
		created, err := svc.Create(ctx, "毕业短片", "")
		require.NoError(t, err)

		shot, err := svc.UpdateShotImage(ctx, created.ID, "S1", "/img/first.png", "/img/last.png", entity.ImageStatusDone)
		require.NoError(t, err)
		assert.Equal(t, "/img/first.png", shot.ImageFirstPath)
		assert.Equal(t, entity.ImageStatusDone, shot.ImageStatus)
		assert.Equal(t, 1, cache.invalidated)
	})
}
