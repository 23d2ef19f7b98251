package storyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storyboard-ai-api/internal/domain/entity"
)

func TestSystemPrompt(t *testing.T) {
	base := SystemPrompt(&entity.Project{})
	assert.Contains(t, base, "storyboards")
	assert.NotContains(t, base, "画面风格要求")

	styled := SystemPrompt(&entity.Project{
		StylePrompt:   "赛博朋克，霓虹色调",
		QualityPrompt: "4k，电影质感",
	})
	assert.Contains(t, styled, "赛博朋克，霓虹色调")
	assert.Contains(t, styled, "4k，电影质感")
}

func TestComposeUserMessage(t *testing.T) {
	t.Run("without shots message passes through", func(t *testing.T) {
		got := ComposeUserMessage(entity.EntitySets{}, "帮我生成分镜")
		assert.Equal(t, "帮我生成分镜", got)
	})

	t.Run("context block lists current shots", func(t *testing.T) {
		sets := entity.EntitySets{Shots: []entity.Shot{
			{MirrorID: "S1", SequenceNumber: 1, Description: "开场"},
			{MirrorID: "S2", SequenceNumber: 2, Dialogue: "别回头。"},
		}}

		got := ComposeUserMessage(sets, "调整 S2")

		assert.Contains(t, got, "1. S1: 开场")
		assert.Contains(t, got, "2. S2: 别回头。")
		assert.Contains(t, got, "调整 S2")
	})
}
