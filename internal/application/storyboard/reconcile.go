// Package storyboard 实现对话驱动的分镜整理核心
package storyboard

import (
	"fmt"

	"storyboard-ai-api/internal/domain/entity"
)

// Engine 整理引擎，对四个实体列表做纯变换
// 不访问存储和网络，落库由调用方在事务内完成。
type Engine struct{}

// NewEngine 创建整理引擎
func NewEngine() *Engine {
	return &Engine{}
}

// Apply 按意图把载荷套用到当前工作区，返回新快照
// 无载荷时原样返回；整体重做以载荷为准，局部调整按镜号/名称合并。
// 任何分支结束后顺序号都重排为 1..n。
func (e *Engine) Apply(intent Intent, payload *Payload, current entity.EntitySets) entity.EntitySets {
	if payload.IsEmpty() {
		return current
	}

	if intent == IntentFullRegenerate {
		return e.regenerate(payload)
	}
	return e.merge(payload, current)
}

// regenerate 丢弃当前工作区，以载荷重建
func (e *Engine) regenerate(payload *Payload) entity.EntitySets {
	next := entity.EntitySets{
		Shots:      make([]entity.Shot, 0, len(payload.Storyboards)),
		Characters: assetsFromPayload(payload.Characters, entity.AssetKindCharacter),
		Scenes:     assetsFromPayload(payload.Scenes, entity.AssetKindScene),
		Props:      assetsFromPayload(payload.Props, entity.AssetKindProp),
	}

	// 载荷内部镜号冲突时，先出现者保留原镜号，后来者追加数字后缀
	seen := make(map[string]int, len(payload.Storyboards))
	for _, sp := range payload.Storyboards {
		shot := shotFromPayload(sp)
		shot.MirrorID = dedupeMirrorID(seen, shot.MirrorID)
		next.Shots = append(next.Shots, shot)
	}

	renumber(next.Shots)
	return next
}

// merge 按镜号合并分镜，按名称合并资产
func (e *Engine) merge(payload *Payload, current entity.EntitySets) entity.EntitySets {
	next := current.Clone()

	for _, sp := range payload.Storyboards {
		idx := findShot(next.Shots, sp.MirrorID)
		if idx >= 0 {
			overwriteShot(&next.Shots[idx], sp)
			continue
		}
		shot := shotFromPayload(sp)
		if shot.MirrorID == "" {
			shot.MirrorID = nextFreeMirrorID(next.Shots)
		}
		next.Shots = insertShot(next.Shots, shot, sp.SequenceNumber)
	}

	next.Characters = mergeAssets(next.Characters, payload.Characters, entity.AssetKindCharacter)
	next.Scenes = mergeAssets(next.Scenes, payload.Scenes, entity.AssetKindScene)
	next.Props = mergeAssets(next.Props, payload.Props, entity.AssetKindProp)

	renumber(next.Shots)
	return next
}

// renumber 按列表顺序把顺序号重排为 1..n
func renumber(shots []entity.Shot) {
	for i := range shots {
		shots[i].SequenceNumber = i + 1
	}
}

// dedupeMirrorID 重复镜号追加 -2/-3 后缀，空镜号按位置生成
func dedupeMirrorID(seen map[string]int, mirrorID string) string {
	if mirrorID == "" {
		mirrorID = fmt.Sprintf("S%d", len(seen)+1)
	}
	count := seen[mirrorID]
	seen[mirrorID] = count + 1
	if count == 0 {
		return mirrorID
	}
	// 后缀本身再冲突时继续递增
	for {
		candidate := fmt.Sprintf("%s-%d", mirrorID, count+1)
		if seen[candidate] == 0 {
			seen[candidate] = 1
			return candidate
		}
		count++
	}
}

// nextFreeMirrorID 为缺镜号的新分镜生成未占用的 S 系列镜号
func nextFreeMirrorID(shots []entity.Shot) string {
	for n := len(shots) + 1; ; n++ {
		candidate := fmt.Sprintf("S%d", n)
		if findShot(shots, candidate) < 0 {
			return candidate
		}
	}
}

// findShot 按镜号查找，空镜号视为无匹配
func findShot(shots []entity.Shot, mirrorID string) int {
	if mirrorID == "" {
		return -1
	}
	for i := range shots {
		if shots[i].MirrorID == mirrorID {
			return i
		}
	}
	return -1
}

// insertShot 新分镜按自带顺序号定位，无顺序号或越界时追加到末尾
func insertShot(shots []entity.Shot, shot entity.Shot, seq *int) []entity.Shot {
	if seq == nil || *seq < 1 || *seq > len(shots) {
		return append(shots, shot)
	}
	pos := *seq - 1
	shots = append(shots, entity.Shot{})
	copy(shots[pos+1:], shots[pos:])
	shots[pos] = shot
	return shots
}

// overwriteShot 非空字段覆盖，缺省字段保留现值
func overwriteShot(dst *entity.Shot, src ShotPayload) {
	setString(&dst.ShotType, src.ShotType)
	setString(&dst.ShotSize, src.ShotSize)
	setString(&dst.CameraMovement, src.CameraMovement)
	if src.Duration != nil {
		dst.Duration = src.Duration
	}
	setString(&dst.Dialogue, src.Dialogue)
	setString(&dst.Description, src.Description)
	setString(&dst.Notes, src.Notes)
	setString(&dst.ImagePromptZh, src.ImagePromptZh)
	setString(&dst.ImagePromptEn, src.ImagePromptEn)
	setString(&dst.ImageTailZh, src.ImageTailZh)
	setString(&dst.ImageTailEn, src.ImageTailEn)
	setString(&dst.VideoPromptZh, src.VideoPromptZh)
	setString(&dst.VideoPromptEn, src.VideoPromptEn)
}

// setString 非空时覆盖
func setString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// shotFromPayload 载荷条目转实体，顺序号由 renumber 统一落定
func shotFromPayload(sp ShotPayload) entity.Shot {
	return entity.Shot{
		MirrorID:       sp.MirrorID,
		ShotType:       sp.ShotType,
		ShotSize:       sp.ShotSize,
		CameraMovement: sp.CameraMovement,
		Duration:       sp.Duration,
		Dialogue:       sp.Dialogue,
		Description:    sp.Description,
		Notes:          sp.Notes,
		ImagePromptZh:  sp.ImagePromptZh,
		ImagePromptEn:  sp.ImagePromptEn,
		ImageTailZh:    sp.ImageTailZh,
		ImageTailEn:    sp.ImageTailEn,
		VideoPromptZh:  sp.VideoPromptZh,
		VideoPromptEn:  sp.VideoPromptEn,
		ImageStatus:    entity.ImageStatusNone,
	}
}

// assetFromPayload 载荷条目转资产实体
func assetFromPayload(ap AssetPayload, kind entity.AssetKind) entity.Asset {
	return entity.Asset{
		Kind:          kind,
		Name:          ap.Name,
		Description:   ap.Description,
		Notes:         ap.Notes,
		ImagePromptZh: ap.ImagePromptZh,
		ImagePromptEn: ap.ImagePromptEn,
	}
}

// assetsFromPayload 批量转换，跳过无名与重名条目
func assetsFromPayload(items []AssetPayload, kind entity.AssetKind) []entity.Asset {
	out := make([]entity.Asset, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, ap := range items {
		if ap.Name == "" || seen[ap.Name] {
			continue
		}
		seen[ap.Name] = true
		out = append(out, assetFromPayload(ap, kind))
	}
	return out
}

// mergeAssets 按名称匹配，命中覆盖非空字段，未命中追加
func mergeAssets(current []entity.Asset, incoming []AssetPayload, kind entity.AssetKind) []entity.Asset {
	for _, ap := range incoming {
		if ap.Name == "" {
			continue
		}
		matched := false
		for i := range current {
			if current[i].Name == ap.Name {
				setString(&current[i].Description, ap.Description)
				setString(&current[i].Notes, ap.Notes)
				setString(&current[i].ImagePromptZh, ap.ImagePromptZh)
				setString(&current[i].ImagePromptEn, ap.ImagePromptEn)
				matched = true
				break
			}
		}
		if !matched {
			current = append(current, assetFromPayload(ap, kind))
		}
	}
	return current
}
