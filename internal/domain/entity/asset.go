// Package entity 定义领域实体
package entity

import (
	"time"
)

// AssetKind 资产类型
type AssetKind string

const (
	AssetKindCharacter AssetKind = "character"
	AssetKindScene     AssetKind = "scene"
	AssetKindProp      AssetKind = "prop"
)

// Asset 分镜资产实体（角色/场景/道具），按 Name 在项目内同类型去重
type Asset struct {
	ProjectID     string    `json:"project_id" gorm:"type:uuid;primaryKey"`
	Kind          AssetKind `json:"kind" gorm:"type:varchar(16);primaryKey"`
	Name          string    `json:"name" gorm:"type:varchar(255);primaryKey"`
	Description   string    `json:"description,omitempty" gorm:"type:text"`
	ImagePromptZh string    `json:"image_prompt_zh,omitempty" gorm:"type:text"`
	ImagePromptEn string    `json:"image_prompt_en,omitempty" gorm:"type:text"`
	Notes         string    `json:"notes,omitempty" gorm:"type:text"`
	ImagePath     string    `json:"image_path,omitempty" gorm:"type:text"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Asset) TableName() string {
	return "assets"
}
