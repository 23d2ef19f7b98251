package storyboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractorExtract(t *testing.T) {
	extractor := NewExtractor()
	ctx := context.Background()

	t.Run("parses fenced json block", func(t *testing.T) {
		text := "好的，分镜如下：\n```json\n{\"storyboards\":[{\"mirror_id\":\"S1\",\"description\":\"开场\"}]}\n```\n如需调整请告诉我。"

		p := extractor.Extract(ctx, text)

		require.NotNil(t, p)
		require.Len(t, p.Storyboards, 1)
		assert.Equal(t, "S1", p.Storyboards[0].MirrorID)
	})

	t.Run("parses fence without language tag", func(t *testing.T) {
		text := "```\n{\"characters\":[{\"name\":\"李雷\"}]}\n```"

		p := extractor.Extract(ctx, text)

		require.NotNil(t, p)
		require.Len(t, p.Characters, 1)
		assert.Equal(t, "李雷", p.Characters[0].Name)
	})

	t.Run("skips broken fence and uses later one", func(t *testing.T) {
		text := "```json\n{\"storyboards\":[broken\n```\n```json\n{\"storyboards\":[{\"mirror_id\":\"S2\"}]}\n```"

		p := extractor.Extract(ctx, text)

		require.NotNil(t, p)
		assert.Equal(t, "S2", p.Storyboards[0].MirrorID)
	})

	t.Run("parses whole text json", func(t *testing.T) {
		text := `  {"storyboards":[{"mirror_id":"S1"}],"scenes":[{"name":"天台"}]}  `

		p := extractor.Extract(ctx, text)

		require.NotNil(t, p)
		assert.Len(t, p.Storyboards, 1)
		assert.Len(t, p.Scenes, 1)
	})

	t.Run("rejects whole text json without payload keys", func(t *testing.T) {
		p := extractor.Extract(ctx, `{"answer":"这不是分镜"}`)
		assert.Nil(t, p)
	})

	t.Run("finds payload inside surrounding prose", func(t *testing.T) {
		text := `根据你的剧本，我整理了方案 {"storyboards":[{"mirror_id":"S1","dialogue":"他说：\"跑！\""}]} 供参考。`

		p := extractor.Extract(ctx, text)

		require.NotNil(t, p)
		require.Len(t, p.Storyboards, 1)
		assert.Equal(t, `他说："跑！"`, p.Storyboards[0].Dialogue)
	})

	t.Run("skips truncated payload and uses later one in prose", func(t *testing.T) {
		text := `初稿 {"storyboards":[{"mirror_id":"S1" 定稿 {"storyboards":[{"mirror_id":"S2"}]} 完`

		p := extractor.Extract(ctx, text)

		require.NotNil(t, p)
		require.Len(t, p.Storyboards, 1)
		assert.Equal(t, "S2", p.Storyboards[0].MirrorID)
	})

	t.Run("expands window past nested braces", func(t *testing.T) {
		text := `前言 {"meta":{"v":1},"storyboards":[{"mirror_id":"S1"}]} 后记`

		p := extractor.Extract(ctx, text)

		require.NotNil(t, p)
		assert.Equal(t, "S1", p.Storyboards[0].MirrorID)
	})

	t.Run("returns nil for plain text", func(t *testing.T) {
		assert.Nil(t, extractor.Extract(ctx, "这一版的节奏已经不错了，不需要改动。"))
	})

	t.Run("returns nil for empty payload object", func(t *testing.T) {
		assert.Nil(t, extractor.Extract(ctx, `{"storyboards":[]}`))
	})

	t.Run("returns nil for unbalanced braces", func(t *testing.T) {
		assert.Nil(t, extractor.Extract(ctx, `出错了 {"storyboards":[{"mirror_id":"S1"`))
	})
}
