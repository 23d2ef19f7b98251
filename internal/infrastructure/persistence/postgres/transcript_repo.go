// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"storyboard-ai-api/internal/domain/entity"
)

// TranscriptRepository 项目会话记录仓储实现
type TranscriptRepository struct {
	client *Client
}

// NewTranscriptRepository 创建会话记录仓储
func NewTranscriptRepository(client *Client) *TranscriptRepository {
	return &TranscriptRepository{client: client}
}

// Append 追加一条消息
func (r *TranscriptRepository) Append(ctx context.Context, turn *entity.ConversationTurn) error {
	ctx, span := tracer.Start(ctx, "postgres.TranscriptRepository.Append")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(turn).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to append conversation turn: %w", err)
	}
	return nil
}

// Recent 按时间正序返回最近 limit 条消息
func (r *TranscriptRepository) Recent(ctx context.Context, projectID string, limit int) ([]*entity.ConversationTurn, error) {
	ctx, span := tracer.Start(ctx, "postgres.TranscriptRepository.Recent")
	defer span.End()

	db := getDB(ctx, r.client.db)

	// 先倒序取最近 limit 条，再翻转为正序
	var turns []*entity.ConversationTurn
	query := db.Where("project_id = ?", projectID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&turns).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list conversation turns: %w", err)
	}

	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// DeleteByProject 清空项目会话
func (r *TranscriptRepository) DeleteByProject(ctx context.Context, projectID string) error {
	ctx, span := tracer.Start(ctx, "postgres.TranscriptRepository.DeleteByProject")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Where("project_id = ?", projectID).Delete(&entity.ConversationTurn{}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete conversation turns: %w", err)
	}
	return nil
}
