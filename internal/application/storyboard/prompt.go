// Package storyboard 实现对话驱动的分镜整理核心
package storyboard

import (
	"fmt"
	"strings"

	"storyboard-ai-api/internal/domain/entity"
)

// systemPrompt 分镜导演系统提示词
// 要求模型把结构化结果放在 JSON 代码块中，镜号规则与载荷字段
// 与提取器约定保持一致。
const systemPrompt = `你是一位专业的分镜导演。根据用户的剧本或描述输出分镜方案。

输出要求：
1. 对话部分用自然语言回答，结构化结果放在一个 ` + "```json" + ` 代码块中。
2. JSON 顶层字段：storyboards、characters、scenes、props，均为数组，没有内容的字段可以省略。
3. 每个分镜包含 mirror_id、sequence_number、shot_type、shot_size、camera_movement、duration、dialogue、description、notes、image_prompt_zh、image_prompt_en、video_prompt_zh、video_prompt_en。
4. mirror_id 是稳定镜号（如 A1、A2）。在已有分镜之间插入新镜头时，使用子编号（如在 A8 和 A9 之间插入则记为 A8-1），不要改动已有镜号。
5. 局部调整时只输出需要变动的条目，未提及的字段省略，不要输出整套分镜。
6. 角色、场景、道具包含 name、description、image_prompt_zh、image_prompt_en。`

// SystemPrompt 返回本轮使用的系统提示词，附加项目风格设定
func SystemPrompt(project *entity.Project) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	if project.StylePrompt != "" {
		b.WriteString("\n\n画面风格要求：")
		b.WriteString(project.StylePrompt)
	}
	if project.QualityPrompt != "" {
		b.WriteString("\n质量要求：")
		b.WriteString(project.QualityPrompt)
	}
	return b.String()
}

// BuildContextBlock 把当前分镜列表序列化为上下文块拼接到用户消息前，
// 让模型感知当前状态，而不是依赖它逐字记住历史
func BuildContextBlock(sets entity.EntitySets) string {
	if len(sets.Shots) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("当前分镜列表：\n")
	for _, shot := range sets.Shots {
		desc := shot.Description
		if desc == "" {
			desc = shot.Dialogue
		}
		b.WriteString(fmt.Sprintf("%d. %s: %s\n", shot.SequenceNumber, shot.MirrorID, desc))
	}
	return b.String()
}

// ComposeUserMessage 上下文块 + 用户原始消息
func ComposeUserMessage(sets entity.EntitySets, userMessage string) string {
	contextBlock := BuildContextBlock(sets)
	if contextBlock == "" {
		return userMessage
	}
	return contextBlock + "\n" + userMessage
}
