// Package entity 定义领域实体
package entity

import (
	"time"
)

// ImageStatus 分镜图片生成状态
type ImageStatus string

const (
	ImageStatusNone       ImageStatus = "none"
	ImageStatusGenerating ImageStatus = "generating"
	ImageStatusDone       ImageStatus = "done"
	ImageStatusFailed     ImageStatus = "failed"
)

// Shot 分镜实体
// MirrorID 是稳定的镜号标识 (如 A8 / A8-1)，在项目内唯一；
// SequenceNumber 是当前排列下的顺序号，整理后保持 1..n 连续。
type Shot struct {
	ProjectID       string      `json:"project_id" gorm:"type:uuid;primaryKey"`
	MirrorID        string      `json:"mirror_id" gorm:"type:varchar(64);primaryKey"`
	SequenceNumber  int         `json:"sequence_number" gorm:"not null;index"`
	ShotType        string      `json:"shot_type,omitempty" gorm:"type:varchar(64)"`
	ShotSize        string      `json:"shot_size,omitempty" gorm:"type:varchar(64)"`
	CameraMovement  string      `json:"camera_movement,omitempty" gorm:"type:varchar(128)"`
	Duration        *float64    `json:"duration,omitempty"`
	Dialogue        string      `json:"dialogue,omitempty" gorm:"type:text"`
	Description     string      `json:"description,omitempty" gorm:"type:text"`
	Notes           string      `json:"notes,omitempty" gorm:"type:text"`
	ImagePromptZh   string      `json:"image_prompt_zh,omitempty" gorm:"type:text"`
	ImagePromptEn   string      `json:"image_prompt_en,omitempty" gorm:"type:text"`
	ImageTailZh     string      `json:"image_tail_zh,omitempty" gorm:"type:text"`
	ImageTailEn     string      `json:"image_tail_en,omitempty" gorm:"type:text"`
	VideoPromptZh   string      `json:"video_prompt_zh,omitempty" gorm:"type:text"`
	VideoPromptEn   string      `json:"video_prompt_en,omitempty" gorm:"type:text"`
	ImageFirstPath  string      `json:"image_first_path,omitempty" gorm:"type:text"`
	ImageLastPath   string      `json:"image_last_path,omitempty" gorm:"type:text"`
	ImageStatus     ImageStatus `json:"image_status" gorm:"type:varchar(16);default:'none'"`
	CreatedAt       time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Shot) TableName() string {
	return "shots"
}
