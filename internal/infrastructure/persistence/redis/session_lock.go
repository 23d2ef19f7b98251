// Package redis 提供 Redis 会话租约实现
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

// releaseScript 仅当持有者令牌匹配时删除租约，防止过期后误删他人的锁
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// SessionLock 项目会话租约，保证同一项目同时只有一次模型调用在途
type SessionLock struct {
	client *Client
	ttl    time.Duration
}

// NewSessionLock 创建会话租约
func NewSessionLock(client *Client, ttl time.Duration) *SessionLock {
	return &SessionLock{client: client, ttl: ttl}
}

// Acquire 尝试获取项目租约，返回持有者令牌，已被占用时返回空串
func (l *SessionLock) Acquire(ctx context.Context, projectID string) (string, error) {
	ctx, span := tracer.Start(ctx, "sessionlock.Acquire")
	span.SetAttributes(attribute.String("sessionlock.project_id", projectID))
	defer span.End()

	token := uuid.NewString()
	ok, err := l.client.rdb.SetNX(ctx, buildSessionKey(projectID), token, l.ttl).Result()
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to acquire session lock: %w", err)
	}
	span.SetAttributes(attribute.Bool("sessionlock.acquired", ok))
	if !ok {
		return "", nil
	}
	return token, nil
}

// Release 释放项目租约，令牌不匹配时不删除（租约已过期并被他人持有）
func (l *SessionLock) Release(ctx context.Context, projectID, token string) error {
	ctx, span := tracer.Start(ctx, "sessionlock.Release")
	span.SetAttributes(attribute.String("sessionlock.project_id", projectID))
	defer span.End()

	if err := releaseScript.Run(ctx, l.client.rdb, []string{buildSessionKey(projectID)}, token).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to release session lock: %w", err)
	}
	return nil
}

// buildSessionKey 构建租约键
func buildSessionKey(projectID string) string {
	return fmt.Sprintf("session:%s:busy", projectID)
}
