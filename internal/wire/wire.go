// Package wire 提供依赖装配
package wire

import (
	"context"
	"fmt"

	"storyboard-ai-api/internal/application/project"
	"storyboard-ai-api/internal/application/provider"
	"storyboard-ai-api/internal/application/storyboard"
	"storyboard-ai-api/internal/config"
	"storyboard-ai-api/internal/domain/entity"
	"storyboard-ai-api/internal/infrastructure/llm"
	"storyboard-ai-api/internal/infrastructure/persistence/postgres"
	"storyboard-ai-api/internal/infrastructure/persistence/redis"
	"storyboard-ai-api/internal/interfaces/http/handler"
	"storyboard-ai-api/internal/interfaces/http/middleware"
	"storyboard-ai-api/internal/interfaces/http/router"
)

// App 装配完成的应用
type App struct {
	Config   *config.Config
	Postgres *postgres.Client
	Redis    *redis.Client
	Router   *router.Router

	cleanups []func()
}

// InitializeApp 装配整个应用
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	// 数据层
	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to init postgres: %w", err)
	}
	app.Postgres = pgClient
	app.cleanups = append(app.cleanups, func() { _ = pgClient.Close() })

	if err := autoMigrate(pgClient); err != nil {
		app.Close()
		return nil, err
	}

	redisClient, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to init redis: %w", err)
	}
	app.Redis = redisClient
	app.cleanups = append(app.cleanups, func() { _ = redisClient.Close() })

	// 仓储
	txMgr := postgres.NewTxManager(pgClient)
	projectRepo := postgres.NewProjectRepository(pgClient)
	storyboardRepo := postgres.NewStoryboardRepository(pgClient)
	transcriptRepo := postgres.NewTranscriptRepository(pgClient)
	providerRepo := postgres.NewProviderRepository(pgClient)

	cache := redis.NewCache(redisClient)
	sessionLock := redis.NewSessionLock(redisClient, cfg.LLM.SessionTTL)

	// 模型调用
	factory := llm.NewEinoFactory(cfg)
	gateway := llm.NewGateway(factory, cfg)

	// 应用服务
	projectSvc := project.NewService(projectRepo, storyboardRepo, txMgr, cache, cfg.Cache.TTL)
	providerSvc := provider.NewService(providerRepo, txMgr)
	chatSvc := storyboard.NewChatService(
		projectRepo, storyboardRepo, transcriptRepo, providerRepo,
		txMgr, gateway, sessionLock, cache, cfg,
	)

	// HTTP 层
	handlers := &router.Handlers{
		Health:     handler.NewHealthHandler(pgClient, redisClient),
		Project:    handler.NewProjectHandler(projectSvc, cfg),
		Storyboard: handler.NewStoryboardHandler(projectSvc, storyboardRepo),
		Chat:       handler.NewChatHandler(chatSvc),
		Provider:   handler.NewProviderHandler(providerSvc),
	}

	rateLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:           cfg.Security.RateLimit.Enabled,
		RequestsPerSecond: cfg.Security.RateLimit.RequestsPerSecond,
		Burst:             cfg.Security.RateLimit.Burst,
	}, redis.NewRateLimiter(redisClient))

	app.Router = router.New(cfg, handlers, rateLimit)
	return app, nil
}

// Close 按装配的相反顺序释放资源
func (a *App) Close() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
	a.cleanups = nil
}

// autoMigrate 同步数据库表结构
func autoMigrate(client *postgres.Client) error {
	if err := client.DB().AutoMigrate(
		&entity.Project{},
		&entity.Shot{},
		&entity.Asset{},
		&entity.ConversationTurn{},
		&entity.Provider{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
