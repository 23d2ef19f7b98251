// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"storyboard-ai-api/internal/domain/entity"
)

// TranscriptRepository 项目会话记录接口，只追加不修改
type TranscriptRepository interface {
	// Append 追加一条消息
	Append(ctx context.Context, turn *entity.ConversationTurn) error

	// Recent 按时间正序返回最近 limit 条消息
	Recent(ctx context.Context, projectID string, limit int) ([]*entity.ConversationTurn, error)

	// DeleteByProject 清空项目会话
	DeleteByProject(ctx context.Context, projectID string) error
}
