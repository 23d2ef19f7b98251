// Package storyboard 实现对话驱动的分镜整理核心
package storyboard

import (
	"regexp"
)

// Intent 用户消息意图
type Intent string

const (
	// IntentFullRegenerate 推倒重来，整体替换当前分镜
	IntentFullRegenerate Intent = "full_regenerate"
	// IntentPartialUpdate 局部调整，按镜号合并
	IntentPartialUpdate Intent = "partial_update"
	// IntentPlain 普通对话，回复含载荷时仍按合并策略处理
	IntentPlain Intent = "plain"
)

// intentRule 意图匹配规则，按表内顺序评估，先命中者生效
type intentRule struct {
	pattern *regexp.Regexp
	intent  Intent
}

// 规则以数据表形式维护，调整措辞或语种不需要改动引擎
var intentRules = []intentRule{
	{regexp.MustCompile(`重做一版|重新生成|重新做|重做|覆盖|全部重来|推倒重来`), IntentFullRegenerate},
	{regexp.MustCompile(`(?i)\b(regenerate|redo|start over|from scratch|overwrite)\b`), IntentFullRegenerate},
	{regexp.MustCompile(`插入|新增分镜|加一个分镜|拆分|拆开|合并|删掉|调整`), IntentPartialUpdate},
	{regexp.MustCompile(`(?i)\b(insert|add a shot|split|merge|adjust)\b`), IntentPartialUpdate},
}

// Classifier 根据用户消息判定本轮意图
type Classifier struct {
	rules []intentRule
}

// NewClassifier 创建意图分类器
func NewClassifier() *Classifier {
	return &Classifier{rules: intentRules}
}

// Classify 匹配规则表判定意图
// 没有现存分镜时整体重做无意义，降级为局部调整。
func (c *Classifier) Classify(userMessage string, hasExistingStoryboard bool) Intent {
	for _, rule := range c.rules {
		if rule.pattern.MatchString(userMessage) {
			if rule.intent == IntentFullRegenerate && !hasExistingStoryboard {
				return IntentPartialUpdate
			}
			return rule.intent
		}
	}
	return IntentPlain
}
