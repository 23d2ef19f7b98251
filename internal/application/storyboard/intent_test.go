package storyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifierClassify(t *testing.T) {
	classifier := NewClassifier()

	tests := []struct {
		name        string
		message     string
		hasExisting bool
		want        Intent
	}{
		{"chinese full regenerate", "整体重做一版，节奏快一点", true, IntentFullRegenerate},
		{"chinese overwrite", "直接覆盖现在的分镜", true, IntentFullRegenerate},
		{"english regenerate", "please regenerate the whole storyboard", true, IntentFullRegenerate},
		{"english start over", "let's start over from scratch", true, IntentFullRegenerate},
		{"chinese insert", "在第 2 镜后面插入一个特写", true, IntentPartialUpdate},
		{"chinese split", "把 S3 拆分成两个镜头", true, IntentPartialUpdate},
		{"english adjust", "adjust the pacing of shot 4", true, IntentPartialUpdate},
		{"plain chat", "这个故事的主题是什么", true, IntentPlain},
		{"plain compliment", "这一版很好", true, IntentPlain},
		{"regenerate downgrades without storyboard", "重新生成分镜", false, IntentPartialUpdate},
		{"english regenerate downgrades without storyboard", "redo everything", false, IntentPartialUpdate},
		{"partial stays partial without storyboard", "帮我新增分镜", false, IntentPartialUpdate},
		{"regenerate rule wins over partial wording", "重做一版，把第三镜拆开", true, IntentFullRegenerate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifier.Classify(tt.message, tt.hasExisting))
		})
	}
}
