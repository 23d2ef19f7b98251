// Package redis 提供 Redis 缓存实现
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

var cacheTracer = otel.Tracer("redis.cache")

// Cache 缓存服务
type Cache struct {
	client *Client
	group  singleflight.Group
}

// NewCache 创建缓存服务
func NewCache(client *Client) *Cache {
	return &Cache{
		client: client,
	}
}

// BuildEntitiesKey 构建项目工作区快照缓存键
func BuildEntitiesKey(projectID string) string {
	return fmt.Sprintf("storyboard:%s:entities", projectID)
}

// BuildTranscriptKey 构建项目会话记录缓存键
func BuildTranscriptKey(projectID string) string {
	return fmt.Sprintf("transcript:%s:recent", projectID)
}

// GetOrLoadSafe 使用 singleflight 防止缓存击穿
func (c *Cache) GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration, loader func() (interface{}, error)) ([]byte, error) {
	ctx, span := cacheTracer.Start(ctx, "cache.GetOrLoadSafe",
		trace.WithAttributes(attribute.String("cache.key", key)))
	defer span.End()

	// 尝试从缓存获取
	val, err := c.client.rdb.Get(ctx, key).Bytes()
	if err == nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return val, nil
	}

	if err != redis.Nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Bool("cache.hit", false))

	// 使用 singleflight 合并并发请求
	result, err, shared := c.group.Do(key, func() (interface{}, error) {
		// 再次检查缓存（可能已被其他请求填充）
		val, err := c.client.rdb.Get(ctx, key).Bytes()
		if err == nil {
			return val, nil
		}

		data, err := loader()
		if err != nil {
			return nil, err
		}

		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal data: %w", err)
		}

		if err := c.client.rdb.Set(ctx, key, bytes, ttl).Err(); err != nil {
			// 缓存写入失败不影响返回结果
		}

		return bytes, nil
	})

	span.SetAttributes(attribute.Bool("cache.shared", shared))

	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return result.([]byte), nil
}

// GetOrLoadEntities 读取项目工作区快照缓存，未命中时回源
func (c *Cache) GetOrLoadEntities(ctx context.Context, projectID string, ttl time.Duration, loader func() (interface{}, error)) ([]byte, error) {
	return c.GetOrLoadSafe(ctx, BuildEntitiesKey(projectID), ttl, loader)
}

// GetOrLoadTranscript 读取项目会话记录缓存，未命中时回源
func (c *Cache) GetOrLoadTranscript(ctx context.Context, projectID string, ttl time.Duration, loader func() (interface{}, error)) ([]byte, error) {
	return c.GetOrLoadSafe(ctx, BuildTranscriptKey(projectID), ttl, loader)
}

// InvalidatePattern 按模式使缓存失效
func (c *Cache) InvalidatePattern(ctx context.Context, pattern string) error {
	ctx, span := cacheTracer.Start(ctx, "cache.InvalidatePattern",
		trace.WithAttributes(attribute.String("cache.pattern", pattern)))
	defer span.End()

	iter := c.client.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		span.RecordError(err)
		return err
	}

	if len(keys) > 0 {
		span.SetAttributes(attribute.Int("cache.invalidated_count", len(keys)))
		return c.client.rdb.Del(ctx, keys...).Err()
	}

	return nil
}

// InvalidateTranscript 使项目会话记录缓存失效
func (c *Cache) InvalidateTranscript(ctx context.Context, projectID string) error {
	return c.InvalidatePattern(ctx, fmt.Sprintf("transcript:%s:*", projectID))
}

// InvalidateProject 使项目相关缓存失效
func (c *Cache) InvalidateProject(ctx context.Context, projectID string) error {
	patterns := []string{
		fmt.Sprintf("storyboard:%s:*", projectID),
		fmt.Sprintf("transcript:%s:*", projectID),
	}

	for _, pattern := range patterns {
		if err := c.InvalidatePattern(ctx, pattern); err != nil {
			return err
		}
	}

	return nil
}
