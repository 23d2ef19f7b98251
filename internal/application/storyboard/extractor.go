// Package storyboard 实现对话驱动的分镜整理核心
package storyboard

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"storyboard-ai-api/pkg/logger"
	"storyboard-ai-api/pkg/metrics"
)

// fenceRe 匹配 ```json ... ``` 或未标注语言的代码块
// 捕获整个块体而非首个 '{...}'，避免残缺块吞并相邻的围栏
var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// payloadKeys 判定整段文本是否为载荷的关键字段
var payloadKeys = []string{"storyboards", "characters", "scenes", "props"}

// Extractor 从模型回复文本中提取结构化载荷
// 三个解析器依次尝试，全部失败返回 nil，调用方按纯文本回复处理。
// 不做 JSON 修复，残缺载荷与无载荷在此层不可区分。
type Extractor struct{}

// NewExtractor 创建提取器
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract 依次尝试代码块、整段文本、括号扫描三种解析
func (e *Extractor) Extract(ctx context.Context, rawText string) *Payload {
	log := logger.FromContext(ctx)

	if p := e.fromFence(rawText); p != nil {
		metrics.ExtractionTotal.WithLabelValues("fence", "hit").Inc()
		return p
	}
	metrics.ExtractionTotal.WithLabelValues("fence", "miss").Inc()

	if p := e.fromWholeText(rawText); p != nil {
		metrics.ExtractionTotal.WithLabelValues("whole", "hit").Inc()
		return p
	}
	metrics.ExtractionTotal.WithLabelValues("whole", "miss").Inc()

	if p := e.fromBraceWindow(rawText); p != nil {
		metrics.ExtractionTotal.WithLabelValues("window", "hit").Inc()
		return p
	}
	metrics.ExtractionTotal.WithLabelValues("window", "miss").Inc()

	log.Debug("no structured payload in model reply", "text_len", len(rawText))
	return nil
}

// fromFence 逐个解析代码块，残缺块跳过不影响后续块
func (e *Extractor) fromFence(text string) *Payload {
	for _, match := range fenceRe.FindAllStringSubmatch(text, -1) {
		body := strings.TrimSpace(match[1])
		if !strings.HasPrefix(body, "{") {
			continue
		}
		if p := parsePayload(body); p != nil {
			return p
		}
	}
	return nil
}

// fromWholeText 整段文本即 JSON 且至少包含一个载荷字段
func (e *Extractor) fromWholeText(text string) *Payload {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return nil
	}
	hasKey := false
	for _, key := range payloadKeys {
		if _, ok := raw[key]; ok {
			hasKey = true
			break
		}
	}
	if !hasKey {
		return nil
	}
	return parsePayload(trimmed)
}

// fromBraceWindow 扫描包含 "storyboards" 字面量的括号子串，由小到大尝试
// 每个锚点逐一处理，前一处锚点解析失败不影响后续锚点
func (e *Extractor) fromBraceWindow(text string) *Payload {
	offset := 0
	for {
		idx := strings.Index(text[offset:], `"storyboards"`)
		if idx < 0 {
			return nil
		}
		anchor := offset + idx

		// 候选起点：锚点左侧的每个 '{'，从最近的开始
		for start := strings.LastIndex(text[:anchor], "{"); start >= 0; start = strings.LastIndex(text[:start], "{") {
			if end := matchBrace(text, start); end > anchor {
				if p := parsePayload(text[start : end+1]); p != nil {
					return p
				}
			}
		}
		offset = anchor + len(`"storyboards"`)
	}
}

// matchBrace 返回与 start 处 '{' 配对的 '}' 下标，未配对返回 -1
func matchBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// parsePayload 解析候选 JSON，失败或空载荷返回 nil
func parsePayload(candidate string) *Payload {
	var p Payload
	if err := json.Unmarshal([]byte(candidate), &p); err != nil {
		return nil
	}
	if p.IsEmpty() {
		return nil
	}
	return &p
}
