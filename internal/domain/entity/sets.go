// Package entity 定义领域实体
package entity

// EntitySets 项目的全量分镜工作区快照，整理操作的输入与输出
type EntitySets struct {
	Shots      []Shot  `json:"shots"`
	Characters []Asset `json:"characters"`
	Scenes     []Asset `json:"scenes"`
	Props      []Asset `json:"props"`
}

// Clone 深拷贝，整理操作不修改输入快照
func (s EntitySets) Clone() EntitySets {
	out := EntitySets{
		Shots:      make([]Shot, len(s.Shots)),
		Characters: make([]Asset, len(s.Characters)),
		Scenes:     make([]Asset, len(s.Scenes)),
		Props:      make([]Asset, len(s.Props)),
	}
	copy(out.Shots, s.Shots)
	copy(out.Characters, s.Characters)
	copy(out.Scenes, s.Scenes)
	copy(out.Props, s.Props)
	return out
}

// IsEmpty 工作区是否为空
func (s EntitySets) IsEmpty() bool {
	return len(s.Shots) == 0 && len(s.Characters) == 0 && len(s.Scenes) == 0 && len(s.Props) == 0
}
