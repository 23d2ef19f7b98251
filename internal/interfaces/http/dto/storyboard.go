// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"storyboard-ai-api/internal/domain/entity"
)

// ShotResponse 分镜响应
type ShotResponse struct {
	MirrorID       string   `json:"mirror_id"`
	SequenceNumber int      `json:"sequence_number"`
	ShotType       string   `json:"shot_type,omitempty"`
	ShotSize       string   `json:"shot_size,omitempty"`
	CameraMovement string   `json:"camera_movement,omitempty"`
	Duration       *float64 `json:"duration,omitempty"`
	Dialogue       string   `json:"dialogue,omitempty"`
	Description    string   `json:"description,omitempty"`
	Notes          string   `json:"notes,omitempty"`
	ImagePromptZh  string   `json:"image_prompt_zh,omitempty"`
	ImagePromptEn  string   `json:"image_prompt_en,omitempty"`
	ImageTailZh    string   `json:"image_tail_zh,omitempty"`
	ImageTailEn    string   `json:"image_tail_en,omitempty"`
	VideoPromptZh  string   `json:"video_prompt_zh,omitempty"`
	VideoPromptEn  string   `json:"video_prompt_en,omitempty"`
	ImageFirstPath string   `json:"image_first_path,omitempty"`
	ImageLastPath  string   `json:"image_last_path,omitempty"`
	ImageStatus    string   `json:"image_status"`
}

// AssetResponse 资产响应
type AssetResponse struct {
	Kind          string `json:"kind"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Notes         string `json:"notes,omitempty"`
	ImagePromptZh string `json:"image_prompt_zh,omitempty"`
	ImagePromptEn string `json:"image_prompt_en,omitempty"`
	ImagePath     string `json:"image_path,omitempty"`
}

// EntitySetsResponse 工作区快照响应
type EntitySetsResponse struct {
	Shots      []*ShotResponse  `json:"shots"`
	Characters []*AssetResponse `json:"characters"`
	Scenes     []*AssetResponse `json:"scenes"`
	Props      []*AssetResponse `json:"props"`
}

// UpdateShotImageRequest 更新分镜图片请求
type UpdateShotImageRequest struct {
	ImageFirstPath string `json:"image_first_path"`
	ImageLastPath  string `json:"image_last_path"`
	ImageStatus    string `json:"image_status" binding:"required,oneof=none generating done failed"`
}

// ToShotResponse 实体转响应
func ToShotResponse(s *entity.Shot) *ShotResponse {
	return &ShotResponse{
		MirrorID:       s.MirrorID,
		SequenceNumber: s.SequenceNumber,
		ShotType:       s.ShotType,
		ShotSize:       s.ShotSize,
		CameraMovement: s.CameraMovement,
		Duration:       s.Duration,
		Dialogue:       s.Dialogue,
		Description:    s.Description,
		Notes:          s.Notes,
		ImagePromptZh:  s.ImagePromptZh,
		ImagePromptEn:  s.ImagePromptEn,
		ImageTailZh:    s.ImageTailZh,
		ImageTailEn:    s.ImageTailEn,
		VideoPromptZh:  s.VideoPromptZh,
		VideoPromptEn:  s.VideoPromptEn,
		ImageFirstPath: s.ImageFirstPath,
		ImageLastPath:  s.ImageLastPath,
		ImageStatus:    string(s.ImageStatus),
	}
}

// ToAssetResponse 实体转响应
func ToAssetResponse(a *entity.Asset) *AssetResponse {
	return &AssetResponse{
		Kind:          string(a.Kind),
		Name:          a.Name,
		Description:   a.Description,
		Notes:         a.Notes,
		ImagePromptZh: a.ImagePromptZh,
		ImagePromptEn: a.ImagePromptEn,
		ImagePath:     a.ImagePath,
	}
}

// ToEntitySetsResponse 工作区快照转响应
func ToEntitySetsResponse(sets *entity.EntitySets) *EntitySetsResponse {
	resp := &EntitySetsResponse{
		Shots:      make([]*ShotResponse, 0, len(sets.Shots)),
		Characters: make([]*AssetResponse, 0, len(sets.Characters)),
		Scenes:     make([]*AssetResponse, 0, len(sets.Scenes)),
		Props:      make([]*AssetResponse, 0, len(sets.Props)),
	}
	for i := range sets.Shots {
		resp.Shots = append(resp.Shots, ToShotResponse(&sets.Shots[i]))
	}
	for i := range sets.Characters {
		resp.Characters = append(resp.Characters, ToAssetResponse(&sets.Characters[i]))
	}
	for i := range sets.Scenes {
		resp.Scenes = append(resp.Scenes, ToAssetResponse(&sets.Scenes[i]))
	}
	for i := range sets.Props {
		resp.Props = append(resp.Props, ToAssetResponse(&sets.Props[i]))
	}
	return resp
}
