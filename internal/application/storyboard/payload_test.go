package storyboard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShotPayloadUnmarshal(t *testing.T) {
	t.Run("accepts snake case names", func(t *testing.T) {
		var sp ShotPayload
		require.NoError(t, json.Unmarshal([]byte(`{
			"mirror_id": "S1",
			"sequence_number": 3,
			"shot_type": "特写",
			"duration": 2.5,
			"image_prompt_zh": "夜色中的天台"
		}`), &sp))

		assert.Equal(t, "S1", sp.MirrorID)
		require.NotNil(t, sp.SequenceNumber)
		assert.Equal(t, 3, *sp.SequenceNumber)
		assert.Equal(t, "特写", sp.ShotType)
		require.NotNil(t, sp.Duration)
		assert.Equal(t, 2.5, *sp.Duration)
		assert.Equal(t, "夜色中的天台", sp.ImagePromptZh)
	})

	t.Run("accepts alias names", func(t *testing.T) {
		var sp ShotPayload
		require.NoError(t, json.Unmarshal([]byte(`{
			"shot_id": "A8-1",
			"index": "5",
			"prompt_cn": "雨夜街道",
			"remarks": "慢动作"
		}`), &sp))

		assert.Equal(t, "A8-1", sp.MirrorID)
		require.NotNil(t, sp.SequenceNumber)
		assert.Equal(t, 5, *sp.SequenceNumber)
		assert.Equal(t, "雨夜街道", sp.ImagePromptZh)
		assert.Equal(t, "慢动作", sp.Notes)
	})

	t.Run("tolerates duration with unit suffix", func(t *testing.T) {
		var sp ShotPayload
		require.NoError(t, json.Unmarshal([]byte(`{"id":"S1","duration":"3.5s"}`), &sp))
		require.NotNil(t, sp.Duration)
		assert.Equal(t, 3.5, *sp.Duration)

		require.NoError(t, json.Unmarshal([]byte(`{"id":"S1","duration":"4秒"}`), &sp))
		require.NotNil(t, sp.Duration)
		assert.Equal(t, 4.0, *sp.Duration)
	})

	t.Run("ignores negative and garbage duration", func(t *testing.T) {
		var sp ShotPayload
		require.NoError(t, json.Unmarshal([]byte(`{"id":"S1","duration":-2}`), &sp))
		assert.Nil(t, sp.Duration)

		require.NoError(t, json.Unmarshal([]byte(`{"id":"S1","duration":"很长"}`), &sp))
		assert.Nil(t, sp.Duration)
	})

	t.Run("numeric mirror id becomes string", func(t *testing.T) {
		var sp ShotPayload
		require.NoError(t, json.Unmarshal([]byte(`{"id":7}`), &sp))
		assert.Equal(t, "7", sp.MirrorID)
	})

	t.Run("missing fields stay zero", func(t *testing.T) {
		var sp ShotPayload
		require.NoError(t, json.Unmarshal([]byte(`{}`), &sp))
		assert.Empty(t, sp.MirrorID)
		assert.Nil(t, sp.SequenceNumber)
		assert.Nil(t, sp.Duration)
	})
}

func TestAssetPayloadUnmarshal(t *testing.T) {
	var ap AssetPayload
	require.NoError(t, json.Unmarshal([]byte(`{
		"title": "李雷",
		"content": "男主角，28 岁",
		"prompt_en": "a young man in a trench coat"
	}`), &ap))

	assert.Equal(t, "李雷", ap.Name)
	assert.Equal(t, "男主角，28 岁", ap.Description)
	assert.Equal(t, "a young man in a trench coat", ap.ImagePromptEn)
}

func TestPayloadIsEmpty(t *testing.T) {
	assert.True(t, (*Payload)(nil).IsEmpty())
	assert.True(t, (&Payload{}).IsEmpty())
	assert.False(t, (&Payload{Props: []AssetPayload{{Name: "怀表"}}}).IsEmpty())
}
