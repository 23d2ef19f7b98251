// Package entity 定义领域实体
package entity

import (
	"time"
)

// Project 分镜项目实体
type Project struct {
	ID            string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name          string    `json:"name" gorm:"type:varchar(255);uniqueIndex;not null"`
	Description   string    `json:"description,omitempty" gorm:"type:text"`
	SourceText    string    `json:"source_text,omitempty" gorm:"type:text"`
	StylePrompt   string    `json:"style_prompt,omitempty" gorm:"type:text"`
	QualityPrompt string    `json:"quality_prompt,omitempty" gorm:"type:text"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Project) TableName() string {
	return "projects"
}

// NewProject 创建新项目
func NewProject(name, description string) *Project {
	now := time.Now()
	return &Project{
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
