// Package storyboard 实现对话驱动的分镜整理核心
package storyboard

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Payload 模型回复中提取出的未信任结构，字段均为可选，
// 只能经由整理引擎落库，不允许直接持久化。
type Payload struct {
	Storyboards []ShotPayload  `json:"storyboards"`
	Characters  []AssetPayload `json:"characters"`
	Scenes      []AssetPayload `json:"scenes"`
	Props       []AssetPayload `json:"props"`
}

// IsEmpty 是否不含任何实体
func (p *Payload) IsEmpty() bool {
	if p == nil {
		return true
	}
	return len(p.Storyboards) == 0 && len(p.Characters) == 0 &&
		len(p.Scenes) == 0 && len(p.Props) == 0
}

// ShotPayload 未信任的分镜条目，兼容模型输出的多种字段命名
type ShotPayload struct {
	MirrorID       string
	SequenceNumber *int
	ShotType       string
	ShotSize       string
	CameraMovement string
	Duration       *float64
	Dialogue       string
	Description    string
	Notes          string
	ImagePromptZh  string
	ImagePromptEn  string
	ImageTailZh    string
	ImageTailEn    string
	VideoPromptZh  string
	VideoPromptEn  string
}

// UnmarshalJSON 按别名表解析，模型输出的命名并不稳定
func (s *ShotPayload) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.MirrorID = pickString(raw, "mirror_id", "mirrorId", "shot_id", "id")
	s.SequenceNumber = pickInt(raw, "sequence_number", "sequenceNumber", "index", "seq")
	s.ShotType = pickString(raw, "shot_type", "shotType", "type")
	s.ShotSize = pickString(raw, "shot_size", "shotSize", "size")
	s.CameraMovement = pickString(raw, "camera_movement", "cameraMovement", "camera")
	s.Duration = pickFloat(raw, "duration", "duration_seconds", "durationSeconds")
	s.Dialogue = pickString(raw, "dialogue", "lines")
	s.Description = pickString(raw, "description", "content")
	s.Notes = pickString(raw, "notes", "remarks")
	s.ImagePromptZh = pickString(raw, "image_prompt_zh", "imagePromptZh", "prompt_cn")
	s.ImagePromptEn = pickString(raw, "image_prompt_en", "imagePromptEn", "prompt_en")
	s.ImageTailZh = pickString(raw, "image_tail_zh", "imagePromptTailZh", "tail_prompt_cn")
	s.ImageTailEn = pickString(raw, "image_tail_en", "imagePromptTailEn", "tail_prompt_en")
	s.VideoPromptZh = pickString(raw, "video_prompt_zh", "videoPromptZh", "video_prompt_cn")
	s.VideoPromptEn = pickString(raw, "video_prompt_en", "videoPromptEn")
	return nil
}

// AssetPayload 未信任的角色/场景/道具条目
type AssetPayload struct {
	Name          string
	Description   string
	Notes         string
	ImagePromptZh string
	ImagePromptEn string
}

// UnmarshalJSON 按别名表解析
func (a *AssetPayload) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	a.Name = pickString(raw, "name", "title")
	a.Description = pickString(raw, "description", "content")
	a.Notes = pickString(raw, "notes", "remarks")
	a.ImagePromptZh = pickString(raw, "image_prompt_zh", "imagePromptZh", "prompt_cn")
	a.ImagePromptEn = pickString(raw, "image_prompt_en", "imagePromptEn", "prompt_en")
	return nil
}

// pickString 按别名顺序取第一个非空字符串，数字值转为字符串
func pickString(raw map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			if strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
			continue
		}
		var f float64
		if err := json.Unmarshal(v, &f); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	return ""
}

// pickInt 按别名顺序取第一个整数，容忍数字字符串
func pickInt(raw map[string]json.RawMessage, keys ...string) *int {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		var f float64
		if err := json.Unmarshal(v, &f); err == nil {
			n := int(f)
			return &n
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
				return &n
			}
		}
	}
	return nil
}

// pickFloat 按别名顺序取第一个非负数值，容忍 "3.5s" 一类的带单位字符串
func pickFloat(raw map[string]json.RawMessage, keys ...string) *float64 {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		var f float64
		if err := json.Unmarshal(v, &f); err == nil {
			if f >= 0 {
				return &f
			}
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "s"))
			trimmed = strings.TrimSuffix(trimmed, "秒")
			if f, err := strconv.ParseFloat(trimmed, 64); err == nil && f >= 0 {
				return &f
			}
		}
	}
	return nil
}
