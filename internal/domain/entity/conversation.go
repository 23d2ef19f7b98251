// Package entity 定义领域实体
package entity

import (
	"time"
)

// ConversationTurn 项目会话中的一条消息，按时间追加，不做修改
type ConversationTurn struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID string    `json:"project_id" gorm:"type:uuid;index;not null"`
	Role      Role      `json:"role" gorm:"type:varchar(16);not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (ConversationTurn) TableName() string {
	return "conversation_turns"
}

// NewConversationTurn 创建新会话消息
func NewConversationTurn(projectID string, role Role, content string) *ConversationTurn {
	return &ConversationTurn{
		ProjectID: projectID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}
